package handler

import (
	"fmt"
	"time"

	"github.com/msomdec/shopcart/internal/domain"
	"github.com/msomdec/shopcart/internal/service"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// ItemDTO is the JSON representation of a catalog item. ImageURL points
// at the image-serving route when an image has been uploaded.
type ItemDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
	Stock       int     `json:"stock"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toItemDTO(item *domain.Item) ItemDTO {
	imageURL := ""
	if item.ImageKey != "" {
		imageURL = fmt.Sprintf("/api/items/%d/image", item.ID)
	}
	return ItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Category:    item.Category,
		ImageURL:    imageURL,
		Stock:       item.Stock,
		CreatedAt:   item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.Format(time.RFC3339),
	}
}

func toItemDTOs(items []domain.Item) []ItemDTO {
	dtos := make([]ItemDTO, len(items))
	for i := range items {
		dtos[i] = toItemDTO(&items[i])
	}
	return dtos
}

// CartLineDTO is the JSON representation of one resolved cart line.
type CartLineDTO struct {
	Item     ItemDTO `json:"item"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

// CartDTO is the JSON representation of a cart.
type CartDTO struct {
	Items []CartLineDTO `json:"items"`
	Total float64       `json:"total"`
}

func toCartDTO(view *service.CartView) CartDTO {
	lines := make([]CartLineDTO, len(view.Lines))
	for i, l := range view.Lines {
		item := l.Item
		lines[i] = CartLineDTO{
			Item:     toItemDTO(&item),
			Quantity: l.Quantity,
			Subtotal: l.Subtotal,
		}
	}
	return CartDTO{Items: lines, Total: view.Total}
}

// PaginationDTO is the JSON representation of listing pagination.
type PaginationDTO struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNext      bool `json:"hasNext"`
	HasPrev      bool `json:"hasPrev"`
}

func toPaginationDTO(page *service.ItemPage) PaginationDTO {
	return PaginationDTO{
		CurrentPage:  page.CurrentPage,
		TotalPages:   page.TotalPages,
		TotalItems:   page.TotalItems,
		ItemsPerPage: page.ItemsPerPage,
		HasNext:      page.CurrentPage < page.TotalPages,
		HasPrev:      page.CurrentPage > 1,
	}
}
