package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

type memoryRepo struct {
	products map[uuid.UUID]Product
	bySKU    map[string]uuid.UUID
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products: make(map[uuid.UUID]Product),
		bySKU:    make(map[string]uuid.UUID),
	}
}

func (r *memoryRepo) List(ctx context.Context, filters Filters) ([]Product, int, error) {
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		if filters.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filters.Search)) {
			continue
		}
		if filters.IsActive != nil && p.IsActive != *filters.IsActive {
			continue
		}
		if filters.InStock && p.Stock <= 0 {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) Create(ctx context.Context, product Product) (Product, error) {
	if _, exists := r.bySKU[product.SKU]; exists {
		return Product{}, shared.ErrDuplicate
	}
	r.products[product.ID] = product
	r.bySKU[product.SKU] = product.ID
	return product, nil
}

func (r *memoryRepo) Update(ctx context.Context, id uuid.UUID, product Product) error {
	current, ok := r.products[id]
	if !ok {
		return shared.ErrNotFound
	}
	if owner, exists := r.bySKU[product.SKU]; exists && owner != id {
		return shared.ErrDuplicate
	}
	delete(r.bySKU, current.SKU)
	product.ID = id
	r.products[id] = product
	r.bySKU[product.SKU] = id
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return shared.ErrNotFound
	}
	delete(r.bySKU, p.SKU)
	delete(r.products, id)
	return nil
}

func boolPtr(b bool) *bool       { return &b }
func strPtr(s string) *string    { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int          { return &i }

func TestCreateProductNormalisesSKU(t *testing.T) {
	svc := NewService(newMemoryRepo())

	created, err := svc.Create(context.Background(), CreateProductRequest{
		Name:  "Classic Mug",
		Price: 9.50,
		SKU:   "  mug-001 ",
		Stock: 10,
	})
	require.NoError(t, err)
	require.Equal(t, "MUG-001", created.SKU)
	require.True(t, created.IsActive)
	require.NotEqual(t, uuid.Nil, created.ID)
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), CreateProductRequest{Name: "A", Price: 1, SKU: "DUP-1", Stock: 1})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateProductRequest{Name: "B", Price: 2, SKU: "dup-1", Stock: 1})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())

	cases := []CreateProductRequest{
		{Name: "", Price: 1, SKU: "X-1"},
		{Name: "X", Price: 0, SKU: "X-1"},
		{Name: "X", Price: -4, SKU: "X-1"},
		{Name: "X", Price: 1, SKU: ""},
		{Name: "X", Price: 1, SKU: "X-1", Stock: -1},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), req)
		require.Error(t, err, "request: %+v", req)
	}
}

func TestUpdateProductMergesFields(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateProductRequest{
		Name:        "Classic Mug",
		Description: "ceramic",
		Price:       9.50,
		SKU:         "MUG-001",
		Stock:       10,
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateProductRequest{
		Price: floatPtr(11.00),
		Stock: intPtr(25),
	})
	require.NoError(t, err)
	require.Equal(t, "Classic Mug", updated.Name)
	require.Equal(t, "ceramic", updated.Description)
	require.InDelta(t, 11.00, updated.Price, 0.0001)
	require.Equal(t, 25, updated.Stock)
	require.Equal(t, "MUG-001", updated.SKU)

	deactivated, err := svc.Update(context.Background(), created.ID, UpdateProductRequest{
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)
}

func TestUpdateProductRejectsInvalidValues(t *testing.T) {
	svc := NewService(newMemoryRepo())
	created, err := svc.Create(context.Background(), CreateProductRequest{Name: "X", Price: 1, SKU: "X-1", Stock: 1})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, UpdateProductRequest{Price: floatPtr(0)})
	require.Error(t, err)

	_, err = svc.Update(context.Background(), created.ID, UpdateProductRequest{Stock: intPtr(-5)})
	require.Error(t, err)

	_, err = svc.Update(context.Background(), created.ID, UpdateProductRequest{Name: strPtr("")})
	require.Error(t, err)
}

func TestUpdateProductNotFound(t *testing.T) {
	svc := NewService(newMemoryRepo())
	id, err := uuid.NewV7()
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), id, UpdateProductRequest{Price: floatPtr(2)})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteProduct(t *testing.T) {
	svc := NewService(newMemoryRepo())
	created, err := svc.Create(context.Background(), CreateProductRequest{Name: "X", Price: 1, SKU: "X-1", Stock: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	require.ErrorIs(t, svc.Delete(context.Background(), created.ID), shared.ErrNotFound)
}

func TestListProductsFilters(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), CreateProductRequest{Name: "Desk Lamp", Price: 24, SKU: "LAMP-1", Stock: 5})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateProductRequest{Name: "Floor Lamp", Price: 60, SKU: "LAMP-2", Stock: 0})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateProductRequest{Name: "Mug", Price: 9, SKU: "MUG-1", Stock: 9, IsActive: boolPtr(false)})
	require.NoError(t, err)

	all, total, err := svc.List(context.Background(), Filters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, 3, total)

	lamps, _, err := svc.List(context.Background(), Filters{Search: "lamp"})
	require.NoError(t, err)
	require.Len(t, lamps, 2)

	inStock, _, err := svc.List(context.Background(), Filters{Search: "lamp", InStock: true})
	require.NoError(t, err)
	require.Len(t, inStock, 1)

	active, _, err := svc.List(context.Background(), Filters{IsActive: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, active, 2)
}
