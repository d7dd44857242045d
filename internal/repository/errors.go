package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a uniqueness constraint rejected the write.
	ErrConflict = errors.New("repository: conflict")
	// ErrInvalidField indicates a search referenced a field that is not
	// exposed for the resource.
	ErrInvalidField = errors.New("repository: unknown search field")
	// ErrInvalidOperator indicates a search used an unsupported operator.
	ErrInvalidOperator = errors.New("repository: unsupported search operator")
)
