package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/arklim/workforce-api/internal/core/domain"
	"github.com/arklim/workforce-api/internal/core/port"
)

func TestTimestampSerialization(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	ts := Timestamp(time.Date(2024, 5, 17, 15, 4, 5, 0, loc))

	raw, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// Always rendered in UTC regardless of the source zone.
	if string(raw) != `"2024-05-17 12:04:05"` {
		t.Errorf("timestamp = %s, want \"2024-05-17 12:04:05\"", raw)
	}

	var parsed Timestamp
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !time.Time(parsed).Equal(time.Time(ts)) {
		t.Errorf("round trip = %v, want %v", time.Time(parsed), time.Time(ts))
	}
}

func TestNullTimestampRendersAsNull(t *testing.T) {
	user := domain.User{ID: "user-1", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}

	raw, err := json.Marshal(newUserPayload(user))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["deleted_at"] != nil {
		t.Errorf("deleted_at = %v, want null", decoded["deleted_at"])
	}
}

func TestSearchRequestToQuery(t *testing.T) {
	req := SearchRequest{
		Search: []SearchCriterionRequest{
			{FieldName: "email", FieldOperator: "like", FieldValue: "example"},
		},
		Order: []SearchOrderRequest{
			{FieldName: "created_at", Sorting: "desc"},
			{FieldName: "email", Sorting: "asc"},
		},
		ItemsPerPage: 50,
		PageNumber:   2,
	}

	query := req.toQuery()
	if len(query.Criteria) != 1 || query.Criteria[0].Operator != port.OpLike {
		t.Fatalf("criteria = %+v, want one like criterion", query.Criteria)
	}
	if len(query.Order) != 2 || query.Order[0].Ascending || !query.Order[1].Ascending {
		t.Errorf("order = %+v, want desc then asc", query.Order)
	}
	if query.ItemsPerPage != 50 || query.PageNumber != 2 {
		t.Errorf("paging = %d/%d, want 50/2", query.ItemsPerPage, query.PageNumber)
	}
}

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Email":           "email",
		"ConfirmPassword": "confirm_password",
		"ItemsPerPage":    "items_per_page",
		"Label":           "label",
	}
	for in, want := range cases {
		if got := snakeCase(in); got != want {
			t.Errorf("snakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
