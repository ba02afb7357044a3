package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/shopcart/internal/domain"
	"github.com/msomdec/shopcart/internal/service"
)

type contextKey string

const userContextKey contextKey = "user"

// authCookieName is the session cookie carrying the JWT.
const authCookieName = "auth_token"

// UserFromContext extracts the authenticated user from the request context.
// Returns nil if no user is authenticated.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// RequireAuth is middleware that protects routes requiring authentication.
// It reads the auth_token cookie, verifies the JWT, checks the revocation
// registry, loads the user, and injects it into the request context.
// A revocation-registry failure denies the request (fail closed) with 503.
func RequireAuth(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookieName)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication required.")
			return
		}

		user, err := auth.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			if errors.Is(err, domain.ErrUnavailable) {
				slog.Error("authenticate request", "error", err)
				writeError(w, http.StatusServiceUnavailable, "Authentication is temporarily unavailable.")
				return
			}
			writeError(w, http.StatusUnauthorized, "Invalid or expired session.")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin is middleware that allows only admin users through. It
// must be nested inside RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required.")
			return
		}
		if user.Role != domain.RoleAdmin {
			writeError(w, http.StatusForbidden, "Admin access required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
