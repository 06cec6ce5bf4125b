package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/meridian-pos/meridian-pos/internal/jobs"
)

// NewLowStockScanHandler returns the handler flagging active products at
// or below the configured threshold. defaultThreshold applies when the
// payload does not carry one.
func NewLowStockScanHandler(pool *pgxpool.Pool, logger *slog.Logger, defaultThreshold int, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload LowStockScanPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track("low_stock_scan")
		threshold := payload.Threshold
		if threshold <= 0 {
			threshold = defaultThreshold
		}

		rows, err := pool.Query(ctx, `
			SELECT id, name, sku, stock
			FROM products
			WHERE is_active AND stock <= $1
			ORDER BY stock ASC`, threshold)
		if err != nil {
			return tracker.End(fmt.Errorf("low stock query: %w", err))
		}
		defer rows.Close()

		count := 0
		for rows.Next() {
			var (
				id    uuid.UUID
				name  string
				sku   string
				stock int
			)
			if err := rows.Scan(&id, &name, &sku, &stock); err != nil {
				return tracker.End(fmt.Errorf("scan low stock row: %w", err))
			}
			count++
			logger.Warn("low stock",
				slog.String("product_id", id.String()),
				slog.String("name", name),
				slog.String("sku", sku),
				slog.Int("stock", stock),
			)
		}
		if err := rows.Err(); err != nil {
			return tracker.End(err)
		}
		metrics.SetLowStock(count)
		logger.Info("low stock scan finished", slog.Int("threshold", threshold), slog.Int("flagged", count))
		return tracker.End(nil)
	}
}
