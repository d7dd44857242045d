package port

// SearchOperator enumerates the comparison operators the search DSL accepts.
type SearchOperator string

const (
	OpEq   SearchOperator = "eq"
	OpNe   SearchOperator = "ne"
	OpLt   SearchOperator = "lt"
	OpLte  SearchOperator = "lte"
	OpGt   SearchOperator = "gt"
	OpGte  SearchOperator = "gte"
	OpIn   SearchOperator = "in"
	OpLike SearchOperator = "like"
)

// SearchCriterion is one field comparison in a search request.
type SearchCriterion struct {
	FieldName string
	Operator  SearchOperator
	Value     any
}

// SortOrder is one ordering directive in a search request.
type SortOrder struct {
	FieldName string
	Ascending bool
}

// SearchQuery is the repository-level form of the search DSL.
type SearchQuery struct {
	Criteria     []SearchCriterion
	Order        []SortOrder
	ItemsPerPage int
	PageNumber   int
}

// SearchResult carries one page of rows plus the totals the response exposes.
type SearchResult[T any] struct {
	Data            []T
	RecordsTotal    int
	RecordsFiltered int
}
