package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/arklim/workforce-api/internal/core/domain"
)

const usersSheet = "Users"

var userColumns = []string{"ID", "Email", "Active", "Roles", "Created At"}

// UsersXLSX renders the user roster as a spreadsheet with a header row and
// one row per user.
func UsersXLSX(users []domain.User) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(usersSheet)
	if err != nil {
		return nil, fmt.Errorf("render: create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("render: drop default sheet: %w", err)
	}

	for col, title := range userColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("render: header cell: %w", err)
		}
		if err := f.SetCellValue(usersSheet, cell, title); err != nil {
			return nil, fmt.Errorf("render: write header: %w", err)
		}
	}

	for i, user := range users {
		row := []any{
			user.ID,
			user.Email,
			user.Active,
			strings.Join(user.Roles, ", "),
			user.CreatedAt.UTC().Format(time.DateTime),
		}
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("render: data cell: %w", err)
			}
			if err := f.SetCellValue(usersSheet, cell, value); err != nil {
				return nil, fmt.Errorf("render: write row: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("render: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
