package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/platform/db"
	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Repository persists sales in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations available inside one sale transaction.
// GetProductForUpdate takes a row-level exclusive lock that serializes
// concurrent sales touching the same product until commit or rollback.
type TxRepository interface {
	InsertSale(ctx context.Context, sale Sale) error
	InsertSaleItem(ctx context.Context, item SaleItem) error
	GetProductForUpdate(ctx context.Context, productID uuid.UUID) (Product, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps fn in a repeatable-read transaction. fn's error aborts and
// rolls back the whole unit of work; begin and commit failures surface to
// the caller as infrastructure errors.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (r *txRepo) InsertSale(ctx context.Context, sale Sale) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO sales (id, user_id, sale_date) VALUES ($1, $2, $3)`,
		sale.ID, sale.UserID, sale.SaleDate)
	return err
}

func (r *txRepo) InsertSaleItem(ctx context.Context, item SaleItem) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.SaleID, item.ProductID, item.Quantity, item.UnitPrice)
	return err
}

func (r *txRepo) GetProductForUpdate(ctx context.Context, productID uuid.UUID) (Product, error) {
	var p Product
	err := r.tx.QueryRow(ctx,
		`SELECT id, name, price, stock FROM products WHERE id = $1 FOR UPDATE`,
		productID).Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, &UnknownProductError{ProductID: productID}
		}
		return Product{}, err
	}
	return p, nil
}

func (r *txRepo) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = $3 WHERE id = $1`,
		productID, qty, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return &UnknownProductError{ProductID: productID}
	}
	return nil
}

const saleItemColumns = `si.id, si.sale_id, si.product_id, p.name, si.quantity, si.unit_price`

// GetSale loads one sale with its items.
func (r *Repository) GetSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	var sale Sale
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, sale_date FROM sales WHERE id = $1`, id).
		Scan(&sale.ID, &sale.UserID, &sale.SaleDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+saleItemColumns+`
		 FROM sale_items si JOIN products p ON p.id = si.product_id
		 WHERE si.sale_id = $1 ORDER BY si.id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListSales returns sales ordered by sale_date descending, with items.
func (r *Repository) ListSales(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.UserID > 0 {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(` AND user_id = $%d`, len(args))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		where += fmt.Sprintf(` AND sale_date >= $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	query := `SELECT id, user_id, sale_date FROM sales` + where +
		fmt.Sprintf(` ORDER BY sale_date DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sales []Sale
	index := make(map[uuid.UUID]int)
	var ids []uuid.UUID
	for rows.Next() {
		var sale Sale
		if err := rows.Scan(&sale.ID, &sale.UserID, &sale.SaleDate); err != nil {
			return nil, 0, err
		}
		index[sale.ID] = len(sales)
		ids = append(ids, sale.ID)
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(sales) == 0 {
		return sales, total, nil
	}

	itemRows, err := r.pool.Query(ctx,
		`SELECT `+saleItemColumns+`
		 FROM sale_items si JOIN products p ON p.id = si.product_id
		 WHERE si.sale_id = ANY($1) ORDER BY si.id`, ids)
	if err != nil {
		return nil, 0, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var item SaleItem
		if err := itemRows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, 0, err
		}
		if i, ok := index[item.SaleID]; ok {
			sales[i].Items = append(sales[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}
