package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/workforce-api/internal/core/port"
	"github.com/arklim/workforce-api/internal/repository"
)

func TestUserRepository_GetByID_CohortScopeMiss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	// A row outside the leader's cohort matches nothing and surfaces as
	// not-found.
	mock.ExpectQuery(`SELECT .+ FROM users WHERE deleted_at IS NULL AND \(created_by = \$1 OR id = \$2\) AND id = \$3`).
		WithArgs("leader-1", "leader-1", "stranger-1").
		WillReturnRows(pgxmock.NewRows(userColumns))

	_, err = repo.GetByID(context.Background(), port.CohortScope("leader-1"), "stranger-1")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("GetByID = %v, want ErrNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE deleted_at IS NULL AND email = \$1`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(
			"user-1", "user@example.com", "hash", "fsu-1", true, nil, now, now, nil,
		))

	mock.ExpectQuery(`SELECT ur\.user_id, r\.name`).
		WithArgs([]string{"user-1"}).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "name"}).
			AddRow("user-1", "admin").
			AddRow("user-1", "worker"))

	user, err := repo.GetByEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.ID != "user-1" || !user.Active {
		t.Errorf("unexpected user: %+v", user)
	}
	if len(user.Roles) != 2 || user.Roles[0] != "admin" {
		t.Errorf("roles = %v, want [admin worker]", user.Roles)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users SET password_hash = \$1, fs_uniquifier = \$2`).
		WithArgs("new-hash", "new-fsu", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdatePassword(context.Background(), "user-1", "new-hash", "new-fsu"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_SoftDeleteMissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users SET deleted_at = NOW\(\)`).
		WithArgs("user-gone").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.SoftDelete(context.Background(), port.UnrestrictedScope(), "user-gone"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("SoftDelete = %v, want ErrNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_SearchRejectsUnknownField(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	_, err = repo.Search(context.Background(), port.UnrestrictedScope(), port.SearchQuery{
		Criteria: []port.SearchCriterion{{FieldName: "password_hash", Operator: port.OpEq, Value: "x"}},
	})
	if !errors.Is(err, repository.ErrInvalidField) {
		t.Fatalf("Search = %v, want ErrInvalidField", err)
	}
}
