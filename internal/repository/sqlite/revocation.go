package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"
)

// RevocationRegistry implements domain.TokenRevoker using SQLite.
//
// SQLite has no native per-key TTL, so each entry carries an expires_at
// column: lookups ignore expired rows and PurgeExpired deletes them.
// Tokens are keyed by their SHA-256 digest so the registry never stores
// a usable credential.
type RevocationRegistry struct {
	db *sql.DB
}

// NewRevocationRegistry creates a new SQLite-backed RevocationRegistry.
func NewRevocationRegistry(db *DB) *RevocationRegistry {
	return &RevocationRegistry{db: db.SqlDB}
}

func (r *RevocationRegistry) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	// An already-expired token cannot be used anyway.
	if !expiresAt.After(time.Now()) {
		return nil
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (token_hash, expires_at) VALUES (?, ?)
		 ON CONFLICT(token_hash) DO NOTHING`,
		tokenDigest(token), expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert revocation: %w", err)
	}
	return nil
}

func (r *RevocationRegistry) IsRevoked(ctx context.Context, token string) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE token_hash = ? AND expires_at > ?`,
		tokenDigest(token), time.Now().UTC(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query revocation: %w", err)
	}
	return exists > 0, nil
}

func (r *RevocationRegistry) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge revocations: %w", err)
	}
	return result.RowsAffected()
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
