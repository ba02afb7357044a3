package domain

import (
	"context"
	"time"
)

// TokenRevoker records session tokens invalidated before their natural
// expiry. An entry never outlives the token it blocks: the registry
// ignores expired entries on lookup and purges them over time.
type TokenRevoker interface {
	// Revoke blocks the token until expiresAt. A no-op when expiresAt
	// is already in the past. Idempotent.
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	// IsRevoked reports whether a non-expired revocation entry exists
	// for the token.
	IsRevoked(ctx context.Context, token string) (bool, error)
	// PurgeExpired deletes entries past their expiry and returns the
	// number removed.
	PurgeExpired(ctx context.Context) (int64, error)
}
