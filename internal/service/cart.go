package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/msomdec/shopcart/internal/domain"
)

// CartService handles cart mutations with stock-aware quantity
// reconciliation and a derived total.
//
// Every mutation re-reads the referenced items from the catalog, so
// quantities are bounded by current stock and the total is recomputed
// from current prices at each save. Price-at-add-time is deliberately
// not locked: a price change between saves changes the next total.
type CartService struct {
	carts   domain.CartRepository
	catalog domain.ItemRepository

	// userLocks serializes the load-mutate-save cycle per user.
	// Without it two concurrent mutations could read the same prior
	// state and one update would be lost.
	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

// NewCartService creates a new CartService.
func NewCartService(carts domain.CartRepository, catalog domain.ItemRepository) *CartService {
	return &CartService{
		carts:     carts,
		catalog:   catalog,
		userLocks: make(map[int64]*sync.Mutex),
	}
}

// CartView is a cart with each line resolved to current catalog details.
type CartView struct {
	Lines []CartLineView
	Total float64
}

// CartLineView is one resolved cart line.
type CartLineView struct {
	Item     domain.Item
	Quantity int
	Subtotal float64
}

// AddItem adds quantity of an item to the user's cart, creating the
// cart on first use and merging with an existing line for the same
// item. The merged quantity must not exceed the item's current stock.
func (s *CartService) AddItem(ctx context.Context, userID, itemID int64, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
	}

	item, err := s.catalog.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockUser(userID)
	defer unlock()

	cart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := quantity
	if i := cart.LineFor(itemID); i >= 0 {
		merged += cart.Lines[i].Quantity
	}
	if merged > item.Stock {
		return nil, fmt.Errorf("%w: %d requested, %d in stock", domain.ErrInsufficientStock, merged, item.Stock)
	}

	if i := cart.LineFor(itemID); i >= 0 {
		cart.Lines[i].Quantity = merged
	} else {
		cart.Lines = append(cart.Lines, domain.CartLine{ItemID: itemID, Quantity: quantity})
	}

	return s.saveAndResolve(ctx, cart)
}

// UpdateQuantity overwrites the quantity of an existing line. A
// quantity of zero removes the line, equivalent to RemoveItem.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID int64, quantity int) (*CartView, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidInput)
	}

	unlock := s.lockUser(userID)
	defer unlock()

	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	i := cart.LineFor(itemID)
	if i < 0 {
		return nil, fmt.Errorf("%w: item not in cart", domain.ErrNotFound)
	}

	// Re-fetch: the item may have been deleted or restocked since the
	// line was added.
	item, err := s.catalog.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if quantity == 0 {
		cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	} else {
		if quantity > item.Stock {
			return nil, fmt.Errorf("%w: %d requested, %d in stock", domain.ErrInsufficientStock, quantity, item.Stock)
		}
		cart.Lines[i].Quantity = quantity
	}

	return s.saveAndResolve(ctx, cart)
}

// RemoveItem removes the line referencing itemID from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID int64) (*CartView, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	i := cart.LineFor(itemID)
	if i < 0 {
		return nil, fmt.Errorf("%w: item not in cart", domain.ErrNotFound)
	}
	cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)

	return s.saveAndResolve(ctx, cart)
}

// Clear empties the user's cart and resets the total to zero.
func (s *CartService) Clear(ctx context.Context, userID int64) (*CartView, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Lines = nil
	return s.saveAndResolve(ctx, cart)
}

// GetCart returns the user's cart with lines resolved to current
// catalog details. A user with no persisted cart gets an empty view,
// not an error: the empty cart is a read-time default.
func (s *CartService) GetCart(ctx context.Context, userID int64) (*CartView, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &CartView{Lines: []CartLineView{}}, nil
		}
		return nil, err
	}

	lines, _, err := s.resolveLines(ctx, cart)
	if err != nil {
		return nil, err
	}
	return &CartView{Lines: lines, Total: cart.Total}, nil
}

func (s *CartService) loadOrCreate(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.Cart{UserID: userID}, nil
		}
		return nil, err
	}
	return cart, nil
}

// saveAndResolve recomputes the total from current catalog prices,
// persists the cart, and returns the resolved view. Lines whose item
// has vanished from the catalog are dropped.
func (s *CartService) saveAndResolve(ctx context.Context, cart *domain.Cart) (*CartView, error) {
	lines, kept, err := s.resolveLines(ctx, cart)
	if err != nil {
		return nil, err
	}
	cart.Lines = kept

	total := 0.0
	for _, l := range lines {
		total += l.Subtotal
	}
	cart.Total = total

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	return &CartView{Lines: lines, Total: total}, nil
}

// resolveLines fetches current item details for each line. It returns
// the resolved views and the surviving domain lines.
func (s *CartService) resolveLines(ctx context.Context, cart *domain.Cart) ([]CartLineView, []domain.CartLine, error) {
	views := make([]CartLineView, 0, len(cart.Lines))
	kept := make([]domain.CartLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		item, err := s.catalog.GetByID(ctx, line.ItemID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, nil, fmt.Errorf("resolve cart line: %w", err)
		}
		views = append(views, CartLineView{
			Item:     *item,
			Quantity: line.Quantity,
			Subtotal: item.Price * float64(line.Quantity),
		})
		kept = append(kept, line)
	}
	return views, kept, nil
}

// lockUser acquires the per-user mutex and returns its release func.
func (s *CartService) lockUser(userID int64) func() {
	s.mu.Lock()
	m, ok := s.userLocks[userID]
	if !ok {
		m = &sync.Mutex{}
		s.userLocks[userID] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}
