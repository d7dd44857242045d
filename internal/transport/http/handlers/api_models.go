package handlers

import (
	"fmt"
	"time"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/core/port"
)

// timestampLayout is the wire format for all timestamps: UTC, second
// precision, no zone designator.
const timestampLayout = "2006-01-02 15:04:05"

// Timestamp serialises a time in the API's canonical format.
type Timestamp time.Time

// MarshalJSON renders the timestamp as "YYYY-MM-DD HH:MM:SS" in UTC.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", time.Time(t).UTC().Format(timestampLayout))), nil
}

// UnmarshalJSON parses the canonical format back into a time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// nullableTimestamp maps a possibly-absent time to a pointer, so JSON renders
// null rather than a zero date.
func nullableTimestamp(t *time.Time) *Timestamp {
	if t == nil {
		return nil
	}
	ts := Timestamp(*t)
	return &ts
}

// MessageResponse is a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// DataResponse wraps a single resource.
type DataResponse struct {
	Data any `json:"data"`
}

// UserRef identifies a related user in API payloads.
type UserRef struct {
	ID string `json:"id"`
}

// UserPayload is the API view of a principal.
type UserPayload struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Active    bool       `json:"active"`
	Roles     []string   `json:"roles"`
	CreatedBy *UserRef   `json:"created_by,omitempty"`
	CreatedAt Timestamp  `json:"created_at"`
	UpdatedAt Timestamp  `json:"updated_at"`
	DeletedAt *Timestamp `json:"deleted_at"`
}

func newUserPayload(user domain.User) UserPayload {
	payload := UserPayload{
		ID:        user.ID,
		Email:     user.Email,
		Active:    user.Active,
		Roles:     user.Roles,
		CreatedAt: Timestamp(user.CreatedAt),
		UpdatedAt: Timestamp(user.UpdatedAt),
		DeletedAt: nullableTimestamp(user.DeletedAt),
	}
	if user.Roles == nil {
		payload.Roles = []string{}
	}
	if user.CreatedBy != nil {
		payload.CreatedBy = &UserRef{ID: *user.CreatedBy}
	}
	return payload
}

// RolePayload is the API view of a role.
type RolePayload struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Label       string     `json:"label"`
	Description *string    `json:"description"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   Timestamp  `json:"updated_at"`
	DeletedAt   *Timestamp `json:"deleted_at"`
}

func newRolePayload(role domain.Role) RolePayload {
	return RolePayload{
		ID:          role.ID,
		Name:        role.Name,
		Label:       role.Label,
		Description: role.Description,
		CreatedAt:   Timestamp(role.CreatedAt),
		UpdatedAt:   Timestamp(role.UpdatedAt),
		DeletedAt:   nullableTimestamp(role.DeletedAt),
	}
}

// DocumentPayload is the API view of a stored document.
type DocumentPayload struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	CreatedBy    UserRef   `json:"created_by"`
	CreatedAt    Timestamp `json:"created_at"`
}

func newDocumentPayload(doc domain.Document, baseURL string) DocumentPayload {
	return DocumentPayload{
		ID:           doc.ID,
		URL:          fmt.Sprintf("%s/api/files/%s", baseURL, doc.InternalFilename),
		OriginalName: doc.OriginalName,
		MimeType:     doc.MimeType,
		Size:         doc.SizeBytes,
		CreatedBy:    UserRef{ID: doc.CreatedBy},
		CreatedAt:    Timestamp(doc.CreatedAt),
	}
}

// LoginRequest is the credentials payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token pair.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse carries the re-issued access token.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// ResetRequest starts the forgot-password flow.
type ResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetConfirmRequest commits a new password against a reset token.
type ResetConfirmRequest struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// RoleRequest is the payload for role create and update.
type RoleRequest struct {
	Label       string  `json:"label" binding:"required"`
	Description *string `json:"description"`
}

// UserCreateRequest registers a new principal.
type UserCreateRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required"`
	Roles    []string `json:"roles"`
}

// ExportResponse acknowledges a dispatched export job.
type ExportResponse struct {
	Task string `json:"task"`
	URL  string `json:"url"`
}

// ExportJobPayload is the API view of a tracked export job.
type ExportJobPayload struct {
	Task      string    `json:"task"`
	Status    string    `json:"status"`
	URL       string    `json:"url"`
	Error     string    `json:"error,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

func newExportJobPayload(job domain.ExportJob) ExportJobPayload {
	return ExportJobPayload{
		Task:      job.ID,
		Status:    string(job.Status),
		URL:       job.ArtifactURL,
		Error:     job.Error,
		CreatedAt: Timestamp(job.CreatedAt),
		UpdatedAt: Timestamp(job.UpdatedAt),
	}
}

// SearchCriterionRequest is one comparison in the search DSL.
type SearchCriterionRequest struct {
	FieldName     string `json:"field_name" binding:"required"`
	FieldOperator string `json:"field_operator" binding:"required,oneof=eq ne lt lte gt gte in like"`
	FieldValue    any    `json:"field_value"`
}

// SearchOrderRequest is one ordering directive in the search DSL.
type SearchOrderRequest struct {
	FieldName string `json:"field_name" binding:"required"`
	Sorting   string `json:"sorting" binding:"required,oneof=asc desc"`
}

// SearchRequest is the wire form of the search DSL.
type SearchRequest struct {
	Search       []SearchCriterionRequest `json:"search" binding:"omitempty,dive"`
	Order        []SearchOrderRequest     `json:"order" binding:"omitempty,dive"`
	ItemsPerPage int                      `json:"items_per_page" binding:"omitempty,gt=0"`
	PageNumber   int                      `json:"page_number" binding:"omitempty,gt=0"`
}

func (r SearchRequest) toQuery() port.SearchQuery {
	query := port.SearchQuery{
		ItemsPerPage: r.ItemsPerPage,
		PageNumber:   r.PageNumber,
	}
	for _, criterion := range r.Search {
		query.Criteria = append(query.Criteria, port.SearchCriterion{
			FieldName: criterion.FieldName,
			Operator:  port.SearchOperator(criterion.FieldOperator),
			Value:     criterion.FieldValue,
		})
	}
	for _, order := range r.Order {
		query.Order = append(query.Order, port.SortOrder{
			FieldName: order.FieldName,
			Ascending: order.Sorting == "asc",
		})
	}
	return query
}

// SearchResponse is the paged search result envelope.
type SearchResponse[T any] struct {
	Data            []T `json:"data"`
	RecordsTotal    int `json:"records_total"`
	RecordsFiltered int `json:"records_filtered"`
}
