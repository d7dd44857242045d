package security

import (
	"errors"
	"testing"
	"time"
)

func newTestTokenManager() *TokenManager {
	return NewTokenManager("unit-test-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestTokenManagerAccessRoundTrip(t *testing.T) {
	mgr := newTestTokenManager()

	signed, jti, err := mgr.IssueAccess("user-1", "fsu-1", []string{"admin"})
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	if jti == "" {
		t.Fatal("jti must be set")
	}

	claims, err := mgr.Parse(signed, TokenTypeAccess)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if claims.Subject != "user-1" {
		t.Errorf("subject = %q, want user-1", claims.Subject)
	}
	if claims.FSUniquifier != "fsu-1" {
		t.Errorf("fsu = %q, want fsu-1", claims.FSUniquifier)
	}
	if claims.ID != jti {
		t.Errorf("jti = %q, want %q", claims.ID, jti)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "admin" {
		t.Errorf("roles = %v, want [admin]", claims.Roles)
	}
}

func TestTokenManagerRejectsWrongType(t *testing.T) {
	mgr := newTestTokenManager()

	refresh, _, err := mgr.IssueRefresh("user-1", "fsu-1")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	if _, err := mgr.Parse(refresh, TokenTypeAccess); !errors.Is(err, ErrTokenTypeInvalid) {
		t.Fatalf("refresh as access = %v, want ErrTokenTypeInvalid", err)
	}

	access, _, err := mgr.IssueAccess("user-1", "fsu-1", nil)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	if _, err := mgr.Parse(access, TokenTypeRefresh); !errors.Is(err, ErrTokenTypeInvalid) {
		t.Fatalf("access as refresh = %v, want ErrTokenTypeInvalid", err)
	}
}

func TestTokenManagerRejectsExpired(t *testing.T) {
	mgr := newTestTokenManager()

	signed, _, err := mgr.IssueAccess("user-1", "fsu-1", nil)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	mgr.now = func() time.Time { return time.Now().Add(time.Hour) }

	if _, err := mgr.Parse(signed, TokenTypeAccess); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("parse expired = %v, want ErrJWTExpired", err)
	}
}

func TestTokenManagerRejectsForeignSignature(t *testing.T) {
	mgr := newTestTokenManager()
	other := NewTokenManager("different-secret", 15*time.Minute, 7*24*time.Hour)

	signed, _, err := other.IssueAccess("user-1", "fsu-1", nil)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	if _, err := mgr.Parse(signed, TokenTypeAccess); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("parse foreign token = %v, want ErrTokenMalformed", err)
	}
}

func TestTokenManagerRemainingTTL(t *testing.T) {
	mgr := newTestTokenManager()

	signed, _, err := mgr.IssueAccess("user-1", "fsu-1", nil)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	claims, err := mgr.Parse(signed, TokenTypeAccess)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	ttl := mgr.RemainingTTL(claims)
	if ttl <= 0 || ttl > 15*time.Minute {
		t.Fatalf("remaining ttl = %v, want within (0, 15m]", ttl)
	}
}
