package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/shopcart/internal/domain"
)

// CartRepository implements domain.CartRepository using SQLite.
type CartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new SQLite-backed CartRepository.
func NewCartRepository(db *DB) *CartRepository {
	return &CartRepository{db: db.SqlDB}
}

func (r *CartRepository) GetByUser(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart := &domain.Cart{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, total, created_at, updated_at
		 FROM carts WHERE user_id = ?`, userID,
	).Scan(&cart.ID, &cart.UserID, &cart.Total, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT item_id, quantity FROM cart_lines
		 WHERE cart_id = ? ORDER BY position`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ItemID, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		cart.Lines = append(cart.Lines, line)
	}
	return cart, rows.Err()
}

// Save upserts the cart row and replaces all lines in one transaction,
// preserving line order via the position column.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO carts (user_id, total, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET total = excluded.total, updated_at = excluded.updated_at`,
		cart.UserID, cart.Total, now, now,
	); err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	var createdAt time.Time
	if err := tx.QueryRowContext(ctx,
		`SELECT id, created_at FROM carts WHERE user_id = ?`, cart.UserID,
	).Scan(&cart.ID, &createdAt); err != nil {
		return fmt.Errorf("query cart id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE cart_id = ?`, cart.ID); err != nil {
		return fmt.Errorf("clear cart lines: %w", err)
	}

	for i, line := range cart.Lines {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cart_lines (cart_id, item_id, quantity, position)
			 VALUES (?, ?, ?, ?)`,
			cart.ID, line.ItemID, line.Quantity, i,
		); err != nil {
			return fmt.Errorf("insert cart line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	cart.CreatedAt = createdAt
	cart.UpdatedAt = now
	return nil
}
