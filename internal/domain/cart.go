package domain

import (
	"context"
	"time"
)

// Cart is a user's shopping cart. There is at most one cart per user.
// Total is derived at save time from current catalog prices; it is
// never mutated independently of the lines it summarizes.
type Cart struct {
	ID        int64
	UserID    int64
	Lines     []CartLine
	Total     float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartLine is one (item, quantity) pair within a cart. No two lines in
// a cart reference the same item.
type CartLine struct {
	ItemID   int64
	Quantity int
}

// LineFor returns the index of the line referencing itemID, or -1.
func (c *Cart) LineFor(itemID int64) int {
	for i, l := range c.Lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}

// CartRepository defines persistence operations for carts.
type CartRepository interface {
	// GetByUser returns the user's cart, or ErrNotFound if none has
	// been persisted yet.
	GetByUser(ctx context.Context, userID int64) (*Cart, error)
	// Save upserts the cart and replaces its lines atomically.
	Save(ctx context.Context, cart *Cart) error
}
