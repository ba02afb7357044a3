package domain

import (
	"context"
	"time"
)

// Item is a purchasable catalog entry.
type Item struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	Category    string
	ImageKey    string // storage key of the uploaded image, empty when none
	ImageType   string // content type of the uploaded image
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Categories is the fixed set of valid item categories.
var Categories = []string{"Electronics", "Clothing", "Books", "Home", "Sports", "Other"}

// ValidCategory reports whether c is one of the allowed categories.
func ValidCategory(c string) bool {
	for _, cat := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// ItemFilter narrows catalog listings. Zero values mean "no constraint";
// a Category of "All" is treated the same as empty.
type ItemFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Search   string // case-insensitive substring match on name
}

// ItemRepository defines persistence operations for catalog items.
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id int64) (*Item, error)
	GetByName(ctx context.Context, name string) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ItemFilter, limit, offset int) ([]Item, error)
	Count(ctx context.Context, filter ItemFilter) (int, error)
}
