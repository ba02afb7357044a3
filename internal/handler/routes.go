package handler

import (
	"net/http"

	"github.com/msomdec/shopcart/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, catalog *service.CatalogService, cart *service.CartService, cookieSecure bool) {
	authH := NewAuthHandler(auth, cookieSecure)
	itemH := NewItemHandler(catalog)
	cartH := NewCartHandler(cart)

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("POST /api/auth/register", authH.HandleRegister)
	mux.HandleFunc("POST /api/auth/login", authH.HandleLogin)
	mux.HandleFunc("POST /api/auth/logout", authH.HandleLogout)
	mux.Handle("GET /api/auth/me", RequireAuth(auth, http.HandlerFunc(authH.HandleMe)))

	mux.HandleFunc("GET /api/items", itemH.HandleList)
	mux.HandleFunc("GET /api/items/{id}", itemH.HandleGet)
	mux.HandleFunc("GET /api/items/{id}/image", itemH.HandleGetImage)
	mux.Handle("POST /api/items", RequireAuth(auth, RequireAdmin(http.HandlerFunc(itemH.HandleCreate))))
	mux.Handle("PUT /api/items/{id}", RequireAuth(auth, RequireAdmin(http.HandlerFunc(itemH.HandleUpdate))))
	mux.Handle("DELETE /api/items/{id}", RequireAuth(auth, RequireAdmin(http.HandlerFunc(itemH.HandleDelete))))
	mux.Handle("POST /api/items/{id}/image", RequireAuth(auth, RequireAdmin(http.HandlerFunc(itemH.HandleUploadImage))))

	mux.Handle("GET /api/cart", RequireAuth(auth, http.HandlerFunc(cartH.HandleGet)))
	mux.Handle("POST /api/cart/add", RequireAuth(auth, http.HandlerFunc(cartH.HandleAdd)))
	mux.Handle("PUT /api/cart/update/{itemID}", RequireAuth(auth, http.HandlerFunc(cartH.HandleUpdate)))
	mux.Handle("DELETE /api/cart/remove/{itemID}", RequireAuth(auth, http.HandlerFunc(cartH.HandleRemove)))
	mux.Handle("DELETE /api/cart/clear", RequireAuth(auth, http.HandlerFunc(cartH.HandleClear)))
}
