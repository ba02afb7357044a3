package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/shopcart/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: "hash",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createTestItem(t *testing.T, db *DB, name string, price float64, stock int) *domain.Item {
	t.Helper()
	item := &domain.Item{
		Name:        name,
		Description: "A test item",
		Price:       price,
		Category:    "Other",
		Stock:       stock,
	}
	if err := db.Items().Create(context.Background(), item); err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}

func TestNew_AppliesPragmas(t *testing.T) {
	db := newTestDB(t)

	if err := db.SqlDB.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	var fkEnabled int
	if err := db.SqlDB.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		t.Fatalf("query foreign_keys pragma: %v", err)
	}
	if fkEnabled != 1 {
		t.Fatal("expected foreign keys to be enabled")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	// Running migrations again must be a no-op.
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var count int
	err := db.SqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	if err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count == 0 {
		t.Fatal("expected at least one applied migration")
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestUser(t, db, "dup@example.com")

	err := db.Users().Create(ctx, &domain.User{
		Email:        "dup@example.com",
		Name:         "Other",
		PasswordHash: "hash",
	})
	if err != domain.ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserRepository_SetRole(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "admin@example.com")
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %s", user.Role)
	}

	if err := db.Users().SetRole(ctx, "admin@example.com", domain.RoleAdmin); err != nil {
		t.Fatalf("SetRole: %v", err)
	}

	got, err := db.Users().GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Role != domain.RoleAdmin {
		t.Fatalf("expected role admin, got %s", got.Role)
	}

	if err := db.Users().SetRole(ctx, "nobody@example.com", domain.RoleAdmin); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown email, got %v", err)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	files := db.Files()

	data := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	if err := files.Save(ctx, "key-1", data); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := files.Get(ctx, "key-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("expected %v, got %v", data, got)
	}

	if err := files.Delete(ctx, "key-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := files.Get(ctx, "key-1"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTimestamps_UTC(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "ts@example.com")
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
	if time.Since(user.CreatedAt) > time.Minute {
		t.Fatalf("created_at looks wrong: %v", user.CreatedAt)
	}
}
