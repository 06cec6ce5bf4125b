package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service coordinates catalog operations.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns products matching the filters plus the unfiltered total.
func (s *Service) List(ctx context.Context, filters Filters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one product with its sales statistics.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	if id == uuid.Nil {
		return Product{}, errors.New("catalog: product id required")
	}
	return s.repo.Get(ctx, id)
}

// Create inserts a new product. SKUs are stored upper-cased and must be unique.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Product{}, fmt.Errorf("catalog: generate product id: %w", err)
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	product := Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		SKU:         strings.ToUpper(strings.TrimSpace(req.SKU)),
		Stock:       req.Stock,
		IsActive:    active,
	}
	if err := validate(product); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, product)
}

// Update applies the non-nil fields of req to an existing product.
//
// A stock edit here is a plain catalog correction; only CreateSale in the
// ledger package carries the no-oversell guarantee.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (Product, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.Price != nil {
		current.Price = *req.Price
	}
	if req.SKU != nil {
		current.SKU = strings.ToUpper(strings.TrimSpace(*req.SKU))
	}
	if req.Stock != nil {
		current.Stock = *req.Stock
	}
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}
	if err := validate(current); err != nil {
		return Product{}, err
	}
	if err := s.repo.Update(ctx, id, current); err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a product and, through the cascade, its sale items.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New("catalog: product id required")
	}
	return s.repo.Delete(ctx, id)
}

func validate(p Product) error {
	if p.Name == "" {
		return errors.New("catalog: name required")
	}
	if p.SKU == "" {
		return errors.New("catalog: sku required")
	}
	if p.Price <= 0 {
		return errors.New("catalog: price must be greater than zero")
	}
	if p.Stock < 0 {
		return errors.New("catalog: stock must not be negative")
	}
	return nil
}
