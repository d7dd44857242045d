package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arklim/workforce-api/internal/core/domain"
)

func TestRoleCreateDerivesName(t *testing.T) {
	svc := NewRoleService(newStubRoleRepo())

	desc := "supervises a crew"
	role, err := svc.Create(context.Background(), "Team Leader", &desc)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if role.Name != "team-leader" {
		t.Errorf("name = %q, want team-leader", role.Name)
	}
	if role.Label != "Team Leader" {
		t.Errorf("label = %q, want Team Leader", role.Label)
	}
}

func TestRoleCreateCollision(t *testing.T) {
	existing := &domain.Role{ID: "role-1", Name: "team-leader", Label: "Team Leader"}
	svc := NewRoleService(newStubRoleRepo(existing))

	if _, err := svc.Create(context.Background(), "team LEADER", nil); !errors.Is(err, ErrRoleNameTaken) {
		t.Fatalf("create = %v, want ErrRoleNameTaken", err)
	}
}

func TestRoleCreateCollisionWithDeletedRole(t *testing.T) {
	now := time.Now().UTC()
	deleted := &domain.Role{ID: "role-1", Name: "team-leader", Label: "Team Leader", DeletedAt: &now}
	svc := NewRoleService(newStubRoleRepo(deleted))

	// A soft-deleted role keeps its name reserved.
	if _, err := svc.Create(context.Background(), "Team Leader", nil); !errors.Is(err, ErrRoleNameTaken) {
		t.Fatalf("create = %v, want ErrRoleNameTaken", err)
	}
}

func TestRoleCreateEmptyLabel(t *testing.T) {
	svc := NewRoleService(newStubRoleRepo())

	if _, err := svc.Create(context.Background(), "   ", nil); !errors.Is(err, ErrRoleLabelRequired) {
		t.Fatalf("create = %v, want ErrRoleLabelRequired", err)
	}
}

func TestRoleUpdateRenames(t *testing.T) {
	existing := &domain.Role{ID: "role-1", Name: "worker", Label: "Worker"}
	svc := NewRoleService(newStubRoleRepo(existing))

	role, err := svc.Update(context.Background(), "role-1", "Field Worker", nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if role.Name != "field-worker" {
		t.Errorf("name = %q, want field-worker", role.Name)
	}
}

func TestRoleUpdateKeepingOwnNameIsNotACollision(t *testing.T) {
	existing := &domain.Role{ID: "role-1", Name: "worker", Label: "Worker"}
	svc := NewRoleService(newStubRoleRepo(existing))

	desc := "updated description"
	if _, err := svc.Update(context.Background(), "role-1", "Worker", &desc); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestRoleDeleteThenGetReportsNotFound(t *testing.T) {
	existing := &domain.Role{ID: "role-1", Name: "worker", Label: "Worker"}
	svc := NewRoleService(newStubRoleRepo(existing))

	if err := svc.Delete(context.Background(), "role-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), "role-1"); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("get after delete = %v, want ErrRoleNotFound", err)
	}
}
