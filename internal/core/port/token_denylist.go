package port

import (
	"context"
	"time"
)

// TokenDenylist tracks revoked token identifiers until their natural expiry.
// It is read on every authenticated request and must be cheap.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	Contains(ctx context.Context, jti string) (bool, error)
}
