package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := red.NewClient(&red.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestTokenDenylistRevokeAndContains(t *testing.T) {
	client, mr := newTestClient(t)
	repo := NewTokenDenylistRepository(client, "test:denylist")
	ctx := context.Background()

	ok, err := repo.Contains(ctx, "jti-1")
	if err != nil {
		t.Fatalf("contains: %v", err)
	}
	if ok {
		t.Fatal("fresh jti must not be denylisted")
	}

	if err := repo.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	ok, err = repo.Contains(ctx, "jti-1")
	if err != nil {
		t.Fatalf("contains after revoke: %v", err)
	}
	if !ok {
		t.Fatal("revoked jti must be denylisted")
	}

	// Entry dies with the token it blocks.
	mr.FastForward(2 * time.Minute)

	ok, err = repo.Contains(ctx, "jti-1")
	if err != nil {
		t.Fatalf("contains after expiry: %v", err)
	}
	if ok {
		t.Fatal("expired denylist entry must be gone")
	}
}

func TestTokenDenylistRevokeExpiredTokenIsNoop(t *testing.T) {
	client, _ := newTestClient(t)
	repo := NewTokenDenylistRepository(client, "test:denylist")
	ctx := context.Background()

	if err := repo.Revoke(ctx, "jti-old", 0); err != nil {
		t.Fatalf("revoke with zero ttl: %v", err)
	}

	ok, err := repo.Contains(ctx, "jti-old")
	if err != nil {
		t.Fatalf("contains: %v", err)
	}
	if ok {
		t.Fatal("already expired token needs no denylist entry")
	}
}

func TestRateLimitSlidingWindow(t *testing.T) {
	client, _ := newTestClient(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "test:rl", TTL: time.Minute})
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 3; i++ {
		if err := repo.RecordAttempt(ctx, "login:1.2.3.4", now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("record attempt: %v", err)
		}
	}

	count, err := repo.CountAttempts(ctx, "login:1.2.3.4", time.Minute, now.Add(3*time.Second))
	if err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}

	// Attempts that slid out of the window no longer count.
	count, err = repo.CountAttempts(ctx, "login:1.2.3.4", 2*time.Second, now.Add(10*time.Second))
	if err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if count != 0 {
		t.Fatalf("count outside window = %d, want 0", count)
	}

	if err := repo.TrimWindow(ctx, "login:1.2.3.4", time.Second, now.Add(time.Minute)); err != nil {
		t.Fatalf("trim window: %v", err)
	}
	count, err = repo.CountAttempts(ctx, "login:1.2.3.4", time.Hour, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("count after trim: %v", err)
	}
	if count != 0 {
		t.Fatalf("count after trim = %d, want 0", count)
	}
}
