package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/msomdec/shopcart/internal/domain"
	"github.com/msomdec/shopcart/internal/repository/sqlite"
	"github.com/msomdec/shopcart/internal/service"
)

func newTestCatalogService(t *testing.T) (*service.CatalogService, *sqlite.DB) {
	t.Helper()
	db := newTestDB(t)
	return service.NewCatalogService(db.Items(), db.Files()), db
}

func TestCatalogService_CreateItem_Success(t *testing.T) {
	catalog, _ := newTestCatalogService(t)

	item, err := catalog.CreateItem(context.Background(), service.NewItem{
		Name:        "Widget",
		Description: "A fine widget",
		Price:       9.99,
		Category:    "Electronics",
		Stock:       5,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected item ID to be set")
	}
}

func TestCatalogService_CreateItem_Validation(t *testing.T) {
	catalog, _ := newTestCatalogService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input service.NewItem
	}{
		{"empty name", service.NewItem{Description: "d", Price: 1, Category: "Other", Stock: 1}},
		{"empty description", service.NewItem{Name: "X", Price: 1, Category: "Other", Stock: 1}},
		{"negative price", service.NewItem{Name: "X", Description: "d", Price: -1, Category: "Other", Stock: 1}},
		{"negative stock", service.NewItem{Name: "X", Description: "d", Price: 1, Category: "Other", Stock: -1}},
		{"bad category", service.NewItem{Name: "X", Description: "d", Price: 1, Category: "Gizmos", Stock: 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := catalog.CreateItem(ctx, tc.input); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCatalogService_CreateItem_DuplicateName(t *testing.T) {
	catalog, _ := newTestCatalogService(t)
	ctx := context.Background()

	input := service.NewItem{Name: "Widget", Description: "d", Price: 1, Category: "Other", Stock: 1}
	if _, err := catalog.CreateItem(ctx, input); err != nil {
		t.Fatalf("first CreateItem: %v", err)
	}
	if _, err := catalog.CreateItem(ctx, input); !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestCatalogService_UpdateItem_Partial(t *testing.T) {
	catalog, _ := newTestCatalogService(t)
	ctx := context.Background()

	item, err := catalog.CreateItem(ctx, service.NewItem{
		Name: "Widget", Description: "d", Price: 10, Category: "Other", Stock: 5,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	price := 12.5
	stock := 8
	updated, err := catalog.UpdateItem(ctx, item.ID, service.ItemUpdate{Price: &price, Stock: &stock})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Price != 12.5 || updated.Stock != 8 {
		t.Fatalf("unexpected item after update: %+v", updated)
	}
	if updated.Name != "Widget" {
		t.Fatalf("untouched field changed: %s", updated.Name)
	}

	bad := -3.0
	if _, err := catalog.UpdateItem(ctx, item.ID, service.ItemUpdate{Price: &bad}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	if _, err := catalog.UpdateItem(ctx, 99999, service.ItemUpdate{Price: &price}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogService_UpdateItem_NameConflict(t *testing.T) {
	catalog, _ := newTestCatalogService(t)
	ctx := context.Background()

	if _, err := catalog.CreateItem(ctx, service.NewItem{Name: "A", Description: "d", Price: 1, Category: "Other", Stock: 1}); err != nil {
		t.Fatalf("CreateItem A: %v", err)
	}
	b, err := catalog.CreateItem(ctx, service.NewItem{Name: "B", Description: "d", Price: 1, Category: "Other", Stock: 1})
	if err != nil {
		t.Fatalf("CreateItem B: %v", err)
	}

	name := "A"
	if _, err := catalog.UpdateItem(ctx, b.ID, service.ItemUpdate{Name: &name}); !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestCatalogService_ListItems_Pagination(t *testing.T) {
	catalog, _ := newTestCatalogService(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C", "D", "E"} {
		if _, err := catalog.CreateItem(ctx, service.NewItem{
			Name: name, Description: "d", Price: 1, Category: "Other", Stock: 1,
		}); err != nil {
			t.Fatalf("CreateItem %s: %v", name, err)
		}
	}

	page, err := catalog.ListItems(ctx, domain.ItemFilter{}, 1, 2)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(page.Items) != 2 || page.TotalItems != 5 || page.TotalPages != 3 {
		t.Fatalf("unexpected page: %+v", page)
	}

	last, err := catalog.ListItems(ctx, domain.ItemFilter{}, 3, 2)
	if err != nil {
		t.Fatalf("ListItems last: %v", err)
	}
	if len(last.Items) != 1 {
		t.Fatalf("expected 1 item on last page, got %d", len(last.Items))
	}

	// Out-of-range page and limit are clamped, not errors.
	clamped, err := catalog.ListItems(ctx, domain.ItemFilter{}, 0, 0)
	if err != nil {
		t.Fatalf("ListItems clamped: %v", err)
	}
	if clamped.CurrentPage != 1 || clamped.ItemsPerPage != service.DefaultPageSize {
		t.Fatalf("expected clamped defaults, got %+v", clamped)
	}
}

func TestCatalogService_UploadImage(t *testing.T) {
	catalog, db := newTestCatalogService(t)
	ctx := context.Background()

	item, err := catalog.CreateItem(ctx, service.NewItem{
		Name: "Widget", Description: "d", Price: 1, Category: "Other", Stock: 1,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	png := []byte{0x89, 0x50, 0x4E, 0x47}
	updated, err := catalog.UploadImage(ctx, item.ID, "image/png", png)
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if updated.ImageKey == "" || updated.ImageType != "image/png" {
		t.Fatalf("unexpected item after upload: %+v", updated)
	}

	data, contentType, err := catalog.GetImage(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if !bytes.Equal(data, png) || contentType != "image/png" {
		t.Fatalf("unexpected image: %v %s", data, contentType)
	}

	// Replacing the image removes the old blob.
	oldKey := updated.ImageKey
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	replaced, err := catalog.UploadImage(ctx, item.ID, "image/jpeg", jpeg)
	if err != nil {
		t.Fatalf("second UploadImage: %v", err)
	}
	if replaced.ImageKey == oldKey {
		t.Fatal("expected a fresh storage key")
	}
	if _, err := db.Files().Get(ctx, oldKey); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected old blob gone, got %v", err)
	}
}

func TestCatalogService_UploadImage_Validation(t *testing.T) {
	catalog, _ := newTestCatalogService(t)
	ctx := context.Background()

	item, err := catalog.CreateItem(ctx, service.NewItem{
		Name: "Widget", Description: "d", Price: 1, Category: "Other", Stock: 1,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if _, err := catalog.UploadImage(ctx, item.ID, "image/gif", []byte{1}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for gif, got %v", err)
	}
	if _, err := catalog.UploadImage(ctx, item.ID, "image/png", nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty data, got %v", err)
	}
	if _, err := catalog.UploadImage(ctx, 99999, "image/png", []byte{1}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := catalog.GetImage(ctx, item.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for item without image, got %v", err)
	}
}

func TestCatalogService_DeleteItem_CleansUpImage(t *testing.T) {
	catalog, db := newTestCatalogService(t)
	ctx := context.Background()

	item, err := catalog.CreateItem(ctx, service.NewItem{
		Name: "Widget", Description: "d", Price: 1, Category: "Other", Stock: 1,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	uploaded, err := catalog.UploadImage(ctx, item.ID, "image/png", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}

	if err := catalog.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	if _, err := catalog.GetItem(ctx, item.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected item gone, got %v", err)
	}
	if _, err := db.Files().Get(ctx, uploaded.ImageKey); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected image blob gone, got %v", err)
	}
}
