package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/msomdec/shopcart/internal/domain"
	"github.com/msomdec/shopcart/internal/handler"
	"github.com/msomdec/shopcart/internal/repository/sqlite"
	"github.com/msomdec/shopcart/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests"

type testEnv struct {
	db      *sqlite.DB
	auth    *service.AuthService
	catalog *service.CatalogService
	cart    *service.CartService
	mux     *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:      db,
		auth:    service.NewAuthService(db.Users(), db.Revocations(), testJWTSecret, 4),
		catalog: service.NewCatalogService(db.Items(), db.Files()),
		cart:    service.NewCartService(db.Carts(), db.Items()),
		mux:     http.NewServeMux(),
	}
	handler.RegisterRoutes(env.mux, env.auth, env.catalog, env.cart, false)
	return env
}

// registerAndLogin creates a user and returns a valid session token.
func (env *testEnv) registerAndLogin(t *testing.T, email string) string {
	t.Helper()
	ctx := context.Background()
	if _, err := env.auth.Register(ctx, email, "Test User", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, token, err := env.auth.Login(ctx, email, "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return token
}

func (env *testEnv) adminToken(t *testing.T, email string) string {
	t.Helper()
	token := env.registerAndLogin(t, email)
	if err := env.db.Users().SetRole(context.Background(), email, domain.RoleAdmin); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	return token
}

func TestRequireAuth_ValidToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "valid@example.com")

	var gotUser string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := handler.UserFromContext(r.Context())
		if user != nil {
			gotUser = user.Name
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	w := httptest.NewRecorder()

	handler.RequireAuth(env.auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotUser != "Test User" {
		t.Fatalf("expected user 'Test User', got %q", gotUser)
	}
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	env := newTestEnv(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	handler.RequireAuth(env.auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	env := newTestEnv(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "invalid.jwt.token"})
	w := httptest.NewRecorder()

	handler.RequireAuth(env.auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_TamperedToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "tamper@example.com")
	tampered := token[:len(token)-1] + "X"

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: tampered})
	w := httptest.NewRecorder()

	handler.RequireAuth(env.auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

// A token revoked by logout no longer authorizes any request.
func TestRequireAuth_RevokedToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "revoked@example.com")

	if err := env.auth.Logout(context.Background(), token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	w := httptest.NewRecorder()

	handler.RequireAuth(env.auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked token, got %d", w.Code)
	}
}

// When the revocation registry is broken, requests are denied, not
// waved through.
func TestRequireAuth_RegistryFailureFailsClosed(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "closed@example.com")

	if _, err := env.db.SqlDB.Exec("DROP TABLE revoked_tokens"); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	w := httptest.NewRecorder()

	handler.RequireAuth(env.auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestRequireAdmin_ForbidsRegularUser(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "user@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	w := httptest.NewRecorder()

	env.mux.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}
}
