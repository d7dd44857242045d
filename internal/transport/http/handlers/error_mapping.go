package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// respondMappedError resolves the provided error against known cases or falls
// back to a generic 500. Infrastructure failures never leak their details.
func respondMappedError(c *gin.Context, err error, cases ...ErrorCase) {
	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, MessageResponse{Message: cs.Message})
			return
		}
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Internal server error"})
}

// respondValidation sends the 422 field-error map:
// {"message": {"<field>": ["<reason>", ...]}}.
func respondValidation(c *gin.Context, fields map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"message": fields})
}

// respondFieldError is the single-field shorthand for respondValidation.
func respondFieldError(c *gin.Context, field, reason string) {
	respondValidation(c, map[string][]string{field: {reason}})
}

// bindJSON binds the request body and, on failure, writes the appropriate
// error response. Validator violations become the 422 field map; anything
// else (malformed JSON, wrong types) is a 400.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			name := snakeCase(fe.Field())
			fields[name] = append(fields[name], validationReason(fe))
		}
		respondValidation(c, fields)
		return false
	}

	c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid request body"})
	return false
}

func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Missing data for required field."
	case "email":
		return "Not a valid email address."
	case "min":
		return fmt.Sprintf("Shorter than minimum length %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("Must be greater than %s.", fe.Param())
	default:
		return "Invalid value."
	}
}

// snakeCase converts an exported Go field name to its JSON spelling.
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
