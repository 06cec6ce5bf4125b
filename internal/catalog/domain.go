package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog row annotated with lifetime sales statistics.
type Product struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	SKU          string    `json:"sku"`
	Stock        int       `json:"stock"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	TotalSold    int64     `json:"total_sold"`
	TotalRevenue float64   `json:"total_revenue"`
}

// Filters narrows product listings.
type Filters struct {
	Search   string
	IsActive *bool
	InStock  bool
	SortBy   string
	SortDir  string
	Page     int
	Limit    int
}

// CreateProductRequest is the payload for creating a product.
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	SKU         string  `json:"sku" validate:"required,max=100"`
	Stock       int     `json:"stock" validate:"gte=0"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// UpdateProductRequest is the payload for updating a product. Nil fields are
// left unchanged.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	SKU         *string  `json:"sku,omitempty" validate:"omitempty,max=100"`
	Stock       *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
	IsActive    *bool    `json:"is_active,omitempty"`
}
