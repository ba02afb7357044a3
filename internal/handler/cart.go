package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/shopcart/internal/domain"
	"github.com/msomdec/shopcart/internal/service"
)

// CartHandler handles shopping-cart HTTP requests. All routes require
// an authenticated, non-revoked session.
type CartHandler struct {
	cart *service.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cart *service.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// HandleGet returns the user's cart; an empty cart for users who have
// never added anything, never a 404.
// GET /api/cart
func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	view, err := h.cart.GetCart(r.Context(), user.ID)
	if err != nil {
		slog.Error("get cart", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Server error fetching cart.")
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{"cart": toCartDTO(view)})
}

// HandleAdd adds an item to the cart, merging with an existing line.
// POST /api/cart/add
// Request: {"itemId": 1, "quantity": 2}  (quantity defaults to 1)
func (h *CartHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		ItemID   int64 `json:"itemId"`
		Quantity *int  `json:"quantity"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.ItemID == 0 {
		writeError(w, http.StatusBadRequest, "Item ID is required.")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, err := h.cart.AddItem(r.Context(), user.ID, req.ItemID, quantity)
	if err != nil {
		h.respondCartError(w, user.ID, "add to cart", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Item added to cart.", map[string]any{"cart": toCartDTO(view)})
}

// HandleUpdate overwrites a line's quantity; zero removes the line.
// PUT /api/cart/update/{itemID}
// Request: {"quantity": 3}
func (h *CartHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	itemID, err := strconv.ParseInt(r.PathValue("itemID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID.")
		return
	}

	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := readJSON(r, &req); err != nil || req.Quantity == nil {
		writeError(w, http.StatusBadRequest, "Valid quantity is required.")
		return
	}

	view, err := h.cart.UpdateQuantity(r.Context(), user.ID, itemID, *req.Quantity)
	if err != nil {
		h.respondCartError(w, user.ID, "update cart", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Cart updated successfully.", map[string]any{"cart": toCartDTO(view)})
}

// HandleRemove removes a line from the cart.
// DELETE /api/cart/remove/{itemID}
func (h *CartHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	itemID, err := strconv.ParseInt(r.PathValue("itemID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID.")
		return
	}

	view, err := h.cart.RemoveItem(r.Context(), user.ID, itemID)
	if err != nil {
		h.respondCartError(w, user.ID, "remove from cart", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Item removed from cart.", map[string]any{"cart": toCartDTO(view)})
}

// HandleClear empties the cart.
// DELETE /api/cart/clear
func (h *CartHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	view, err := h.cart.Clear(r.Context(), user.ID)
	if err != nil {
		h.respondCartError(w, user.ID, "clear cart", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Cart cleared successfully.", map[string]any{"cart": toCartDTO(view)})
}

func (h *CartHandler) respondCartError(w http.ResponseWriter, userID int64, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		writeError(w, http.StatusBadRequest, "Insufficient stock.")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Item not found.")
	default:
		slog.Error(op, "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}
