package render

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/arklim/workforce-api/internal/core/domain"
)

func rosterFixture() []domain.User {
	created := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return []domain.User{
		{ID: "u-1", Email: "admin@example.com", Active: true, Roles: []string{"admin"}, CreatedAt: created},
		{ID: "u-2", Email: "worker@example.com", Active: false, Roles: []string{"worker", "team-leader"}, CreatedAt: created},
	}
}

func TestUsersXLSX(t *testing.T) {
	data, err := UsersXLSX(rosterFixture())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(usersSheet)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3 (header + 2 users)", len(rows))
	}
	if rows[0][1] != "Email" {
		t.Errorf("header[1] = %q, want Email", rows[0][1])
	}
	if rows[1][1] != "admin@example.com" {
		t.Errorf("row 1 email = %q, want admin@example.com", rows[1][1])
	}
	if rows[2][3] != "worker, team-leader" {
		t.Errorf("row 2 roles = %q, want joined roles", rows[2][3])
	}
}

func TestUsersXLSXEmptyRoster(t *testing.T) {
	data, err := UsersXLSX(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(usersSheet)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want header only", len(rows))
	}
}

func TestUsersDOCX(t *testing.T) {
	data, err := UsersDOCX(rosterFixture())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open package: %v", err)
	}

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml"} {
		if !names[want] {
			t.Errorf("missing package part %s", want)
		}
	}

	doc, err := zr.Open("word/document.xml")
	if err != nil {
		t.Fatalf("open document part: %v", err)
	}
	defer doc.Close()

	content, err := io.ReadAll(doc)
	if err != nil {
		t.Fatalf("read document part: %v", err)
	}

	text := string(content)
	for _, want := range []string{"User Roster", "admin@example.com", "worker, team-leader"} {
		if !strings.Contains(text, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestUsersDOCXEscapesMarkup(t *testing.T) {
	users := []domain.User{{Email: "a<b>@example.com", CreatedAt: time.Now()}}

	data, err := UsersDOCX(users)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open package: %v", err)
	}
	doc, err := zr.Open("word/document.xml")
	if err != nil {
		t.Fatalf("open document part: %v", err)
	}
	defer doc.Close()

	content, err := io.ReadAll(doc)
	if err != nil {
		t.Fatalf("read document part: %v", err)
	}
	if strings.Contains(string(content), "a<b>@example.com") {
		t.Error("raw markup leaked into document part")
	}
	if !strings.Contains(string(content), "a&lt;b&gt;@example.com") {
		t.Error("escaped email missing from document part")
	}
}
