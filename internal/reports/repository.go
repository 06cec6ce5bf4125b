package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SalesSince returns one row per sale with its computed total, newest
// first so the service can group without re-sorting sales.
func (r *Repository) SalesSince(ctx context.Context, since time.Time) ([]saleRow, error) {
	const query = `
		SELECT s.id, s.user_id, u.username, s.sale_date,
		       COALESCE(SUM(si.quantity * si.unit_price), 0) AS total
		FROM sales s
		JOIN users u ON u.id = s.user_id
		LEFT JOIN sale_items si ON si.sale_id = s.id
		WHERE s.sale_date >= $1
		GROUP BY s.id, s.user_id, u.username, s.sale_date
		ORDER BY u.username ASC, s.sale_date DESC`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("query sales since %s: %w", since.Format(time.RFC3339), err)
	}
	defer rows.Close()

	var out []saleRow
	for rows.Next() {
		var row saleRow
		if err := rows.Scan(&row.SaleID, &row.UserID, &row.Username, &row.SaleDate, &row.Total); err != nil {
			return nil, fmt.Errorf("scan sale row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
