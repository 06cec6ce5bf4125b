package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Repository defines persistence operations for the catalog.
type Repository interface {
	List(ctx context.Context, filters Filters) ([]Product, int, error)
	Get(ctx context.Context, id uuid.UUID) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id uuid.UUID, product Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.sku, p.stock, p.is_active, p.created_at, p.updated_at,
	       COALESCE(SUM(si.quantity), 0) AS total_sold,
	       COALESCE(SUM(si.quantity * si.unit_price), 0) AS total_revenue
	FROM products p
	LEFT JOIN sale_items si ON si.product_id = p.id`

func (r *repository) List(ctx context.Context, filters Filters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (p.name ILIKE $` + n + ` OR p.sku ILIKE $` + n + `)`
	}
	if filters.IsActive != nil {
		args = append(args, *filters.IsActive)
		where += ` AND p.is_active = $` + strconv.Itoa(len(args))
	}
	if filters.InStock {
		where += ` AND p.stock > 0`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := productSelect + where + ` GROUP BY p.id ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)

	limit := filters.Limit
	if limit > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		args = append(args, limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, (page-1)*limit)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.SKU, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.TotalSold, &p.TotalRevenue); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, productSelect+` WHERE p.id = $1 GROUP BY p.id`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.SKU, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.TotalSold, &p.TotalRevenue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO products (id, name, description, price, sku, stock, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		product.ID, product.Name, product.Description, product.Price, product.SKU, product.Stock, product.IsActive, now, now)
	if err != nil {
		return Product{}, mapUniqueViolation(err)
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, product Product) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET name = $1, description = $2, price = $3, sku = $4, stock = $5, is_active = $6, updated_at = $7 WHERE id = $8`,
		product.Name, product.Description, product.Price, product.SKU, product.Stock, product.IsActive, time.Now().UTC(), id)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the product; sale_items referencing it go with it via the
// ON DELETE CASCADE constraint.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// mapUniqueViolation converts a SQLSTATE 23505 (duplicate SKU) into the
// shared duplicate sentinel.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "sku":
		return "p.sku " + dir
	case "price":
		return "p.price " + dir
	case "stock":
		return "p.stock " + dir
	case "created_at":
		return "p.created_at " + dir
	case "total_sold":
		return "total_sold " + dir
	case "total_revenue":
		return "total_revenue " + dir
	default:
		return "p.name " + dir
	}
}
