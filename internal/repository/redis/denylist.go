package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/arklim/workforce-api/internal/core/port"
)

const defaultDenylistPrefix = "wf:denylist"

// TokenDenylistRepository records revoked token identifiers. Entries expire
// with the token they block, so the set never needs sweeping.
type TokenDenylistRepository struct {
	client *red.Client
	prefix string
}

// NewTokenDenylistRepository wires Redis storage for revoked jti values.
func NewTokenDenylistRepository(client *red.Client, prefix string) *TokenDenylistRepository {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		trimmed = defaultDenylistPrefix
	}
	return &TokenDenylistRepository{client: client, prefix: trimmed}
}

// Revoke marks a jti as unusable for at least ttl.
func (r *TokenDenylistRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if strings.TrimSpace(jti) == "" {
		return errors.New("jti required")
	}
	if ttl <= 0 {
		// Token already expired; nothing to block.
		return nil
	}

	if err := r.client.Set(ctx, r.key(jti), "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("redis set denylist entry: %w", err)
	}
	return nil
}

// Contains reports whether a jti has been revoked.
func (r *TokenDenylistRepository) Contains(ctx context.Context, jti string) (bool, error) {
	count, err := r.client.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check denylist entry: %w", err)
	}
	return count > 0, nil
}

func (r *TokenDenylistRepository) key(jti string) string {
	return fmt.Sprintf("%s:%s", r.prefix, jti)
}

var _ port.TokenDenylist = (*TokenDenylistRepository)(nil)
