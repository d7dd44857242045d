package port

import "context"

// Mailer delivers outbound mail. Implementations must not leak whether the
// recipient exists to the caller beyond transport errors.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}
