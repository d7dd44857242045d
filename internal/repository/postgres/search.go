package postgres

import (
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/arklim/workforce-api/internal/core/port"
	"github.com/arklim/workforce-api/internal/repository"
)

const defaultPageSize = 20

// applyCriteria translates search criteria into WHERE clauses. fields maps
// exposed field names to column expressions; anything outside the map is
// rejected so callers cannot probe arbitrary columns.
func applyCriteria(query squirrel.SelectBuilder, criteria []port.SearchCriterion, fields map[string]string) (squirrel.SelectBuilder, error) {
	for _, criterion := range criteria {
		column, ok := fields[criterion.FieldName]
		if !ok {
			return query, fmt.Errorf("%w: %s", repository.ErrInvalidField, criterion.FieldName)
		}

		switch criterion.Operator {
		case port.OpEq:
			query = query.Where(squirrel.Eq{column: criterion.Value})
		case port.OpNe:
			query = query.Where(squirrel.NotEq{column: criterion.Value})
		case port.OpLt:
			query = query.Where(squirrel.Lt{column: criterion.Value})
		case port.OpLte:
			query = query.Where(squirrel.LtOrEq{column: criterion.Value})
		case port.OpGt:
			query = query.Where(squirrel.Gt{column: criterion.Value})
		case port.OpGte:
			query = query.Where(squirrel.GtOrEq{column: criterion.Value})
		case port.OpIn:
			query = query.Where(squirrel.Eq{column: criterion.Value})
		case port.OpLike:
			query = query.Where(squirrel.ILike{column: fmt.Sprintf("%%%v%%", criterion.Value)})
		default:
			return query, fmt.Errorf("%w: %s", repository.ErrInvalidOperator, criterion.Operator)
		}
	}

	return query, nil
}

// applyOrder translates sort directives, validating fields the same way.
func applyOrder(query squirrel.SelectBuilder, order []port.SortOrder, fields map[string]string) (squirrel.SelectBuilder, error) {
	for _, sort := range order {
		column, ok := fields[sort.FieldName]
		if !ok {
			return query, fmt.Errorf("%w: %s", repository.ErrInvalidField, sort.FieldName)
		}

		direction := "DESC"
		if sort.Ascending {
			direction = "ASC"
		}
		query = query.OrderBy(fmt.Sprintf("%s %s", column, direction))
	}

	return query, nil
}

// applyPagination clamps and applies page controls.
func applyPagination(query squirrel.SelectBuilder, search port.SearchQuery) squirrel.SelectBuilder {
	perPage := search.ItemsPerPage
	if perPage <= 0 {
		perPage = defaultPageSize
	}

	page := search.PageNumber
	if page < 1 {
		page = 1
	}

	return query.Limit(uint64(perPage)).Offset(uint64((page - 1) * perPage))
}
