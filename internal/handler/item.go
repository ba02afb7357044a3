package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/shopcart/internal/domain"
	"github.com/msomdec/shopcart/internal/service"
)

// ItemHandler handles catalog HTTP requests. Reads are public; writes
// require an admin session.
type ItemHandler struct {
	catalog *service.CatalogService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(catalog *service.CatalogService) *ItemHandler {
	return &ItemHandler{catalog: catalog}
}

// HandleList returns a filtered, paginated item listing.
// GET /api/items?category=&minPrice=&maxPrice=&search=&page=&limit=
func (h *ItemHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.ItemFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	if v := q.Get("minPrice"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid minPrice.")
			return
		}
		filter.MinPrice = &p
	}
	if v := q.Get("maxPrice"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid maxPrice.")
			return
		}
		filter.MaxPrice = &p
	}

	page := intQuery(q.Get("page"), 1)
	limit := intQuery(q.Get("limit"), service.DefaultPageSize)

	result, err := h.catalog.ListItems(r.Context(), filter, page, limit)
	if err != nil {
		slog.Error("list items", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error fetching items.")
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"items":      toItemDTOs(result.Items),
		"pagination": toPaginationDTO(result),
	})
}

// HandleGet returns a single item.
// GET /api/items/{id}
func (h *ItemHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID format.")
		return
	}

	item, err := h.catalog.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Item not found.")
			return
		}
		slog.Error("get item", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Server error fetching item.")
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{"item": toItemDTO(item)})
}

// HandleCreate creates a catalog item.
// POST /api/items  (admin)
func (h *ItemHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Category    string  `json:"category"`
		Stock       int     `json:"stock"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	item, err := h.catalog.CreateItem(r.Context(), service.NewItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	})
	if err != nil {
		h.respondItemError(w, "create item", err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Item created successfully.", map[string]any{"item": toItemDTO(item)})
}

// HandleUpdate applies a partial update to an item.
// PUT /api/items/{id}  (admin)
func (h *ItemHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID format.")
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Category    *string  `json:"category"`
		Stock       *int     `json:"stock"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	item, err := h.catalog.UpdateItem(r.Context(), id, service.ItemUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	})
	if err != nil {
		h.respondItemError(w, "update item", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Item updated successfully.", map[string]any{"item": toItemDTO(item)})
}

// HandleDelete deletes an item.
// DELETE /api/items/{id}  (admin)
func (h *ItemHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID format.")
		return
	}

	if err := h.catalog.DeleteItem(r.Context(), id); err != nil {
		h.respondItemError(w, "delete item", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Item deleted successfully.", nil)
}

// HandleUploadImage stores an item image from a multipart form field
// named "image", replacing any previous image.
// POST /api/items/{id}/image  (admin)
func (h *ItemHandler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID format.")
		return
	}

	// Bound the whole request body; the service enforces the exact
	// per-image limit.
	r.Body = http.MaxBytesReader(w, r.Body, 6*1024*1024)
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Image file is required.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read image file.")
		return
	}

	item, err := h.catalog.UploadImage(r.Context(), id, header.Header.Get("Content-Type"), data)
	if err != nil {
		h.respondItemError(w, "upload item image", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Image uploaded successfully.", map[string]any{"item": toItemDTO(item)})
}

// HandleGetImage serves an item's image bytes.
// GET /api/items/{id}/image
func (h *ItemHandler) HandleGetImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID format.")
		return
	}

	data, contentType, err := h.catalog.GetImage(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Image not found.")
			return
		}
		slog.Error("get item image", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Server error fetching image.")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *ItemHandler) respondItemError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateName):
		writeError(w, http.StatusConflict, "An item with this name already exists.")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Item not found.")
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}

func intQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
