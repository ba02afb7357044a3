package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/msomdec/shopcart/internal/domain"
)

const (
	maxImageSize    = 5 * 1024 * 1024 // 5MB
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// CatalogService handles item CRUD, filtered listing, and image upload.
type CatalogService struct {
	items domain.ItemRepository
	files domain.FileStore
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(items domain.ItemRepository, files domain.FileStore) *CatalogService {
	return &CatalogService{items: items, files: files}
}

// NewItem carries the fields for item creation.
type NewItem struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int
}

// ItemUpdate carries a partial item update; nil fields are left unchanged.
type ItemUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Stock       *int
}

// ItemPage is one page of a filtered catalog listing.
type ItemPage struct {
	Items        []domain.Item
	CurrentPage  int
	TotalPages   int
	TotalItems   int
	ItemsPerPage int
}

// CreateItem validates and creates a catalog item. Names are globally
// unique; price and stock must not be negative.
func (s *CatalogService) CreateItem(ctx context.Context, input NewItem) (*domain.Item, error) {
	if input.Name == "" || input.Description == "" {
		return nil, fmt.Errorf("%w: name and description are required", domain.ErrInvalidInput)
	}
	if input.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	if input.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidInput)
	}
	if !domain.ValidCategory(input.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, input.Category)
	}

	item := &domain.Item{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Stock:       input.Stock,
	}

	if err := s.items.Create(ctx, item); err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			return nil, err
		}
		return nil, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

// GetItem returns a single item by ID.
func (s *CatalogService) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	return s.items.GetByID(ctx, id)
}

// UpdateItem applies a partial update to an item.
func (s *CatalogService) UpdateItem(ctx context.Context, id int64, update ItemUpdate) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		if *update.Name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
		}
		item.Name = *update.Name
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.Price != nil {
		if *update.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
		}
		item.Price = *update.Price
	}
	if update.Category != nil {
		if !domain.ValidCategory(*update.Category) {
			return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, *update.Category)
		}
		item.Category = *update.Category
	}
	if update.Stock != nil {
		if *update.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidInput)
		}
		item.Stock = *update.Stock
	}

	if err := s.items.Update(ctx, item); err != nil {
		if errors.Is(err, domain.ErrDuplicateName) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// DeleteItem deletes an item. Its image blob is cleaned up best-effort:
// a blob-deletion failure is logged and never blocks the delete.
func (s *CatalogService) DeleteItem(ctx context.Context, id int64) error {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}

	if item.ImageKey != "" {
		if err := s.files.Delete(ctx, item.ImageKey); err != nil {
			slog.Error("delete item image blob", "item_id", id, "key", item.ImageKey, "error", err)
		}
	}
	return nil
}

// ListItems returns a filtered, paginated catalog page. Page and limit
// are clamped to sane bounds.
func (s *CatalogService) ListItems(ctx context.Context, filter domain.ItemFilter, page, limit int) (*ItemPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	total, err := s.items.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}

	items, err := s.items.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	totalPages := (total + limit - 1) / limit
	return &ItemPage{
		Items:        items,
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
	}, nil
}

// UploadImage validates and stores an item image, replacing any
// previous one. The old blob is removed best-effort.
func (s *CatalogService) UploadImage(ctx context.Context, itemID int64, contentType string, data []byte) (*domain.Item, error) {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return nil, fmt.Errorf("%w: only JPEG and PNG images are accepted", domain.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("%w: image exceeds 5MB limit", domain.ErrInvalidInput)
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	key := uuid.NewString()
	if err := s.files.Save(ctx, key, data); err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}

	oldKey := item.ImageKey
	item.ImageKey = key
	item.ImageType = contentType
	if err := s.items.Update(ctx, item); err != nil {
		// Best-effort cleanup of the stored blob.
		s.files.Delete(ctx, key)
		return nil, fmt.Errorf("update item image: %w", err)
	}

	if oldKey != "" {
		if err := s.files.Delete(ctx, oldKey); err != nil {
			slog.Error("delete replaced image blob", "item_id", itemID, "key", oldKey, "error", err)
		}
	}
	return item, nil
}

// GetImage returns the image bytes and content type for an item.
func (s *CatalogService) GetImage(ctx context.Context, itemID int64) ([]byte, string, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, "", err
	}
	if item.ImageKey == "" {
		return nil, "", domain.ErrNotFound
	}

	data, err := s.files.Get(ctx, item.ImageKey)
	if err != nil {
		return nil, "", fmt.Errorf("get image blob: %w", err)
	}
	return data, item.ImageType, nil
}
