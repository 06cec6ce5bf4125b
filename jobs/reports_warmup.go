package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/meridian-pos/meridian-pos/internal/jobs"
	"github.com/meridian-pos/meridian-pos/internal/reports"
)

var defaultWarmupWindows = []int{30, 90, 365}

// NewReportsWarmupHandler returns the handler that pre-computes sales
// report caches so the first dashboard hit after an invalidation stays
// fast. Windows are warmed concurrently.
func NewReportsWarmupHandler(service *reports.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ReportsWarmupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track("reports_warmup")
		windows := payload.WindowsDays
		if len(windows) == 0 {
			windows = defaultWarmupWindows
		}

		now := time.Now().UTC()
		g, ctx := errgroup.WithContext(ctx)
		for _, days := range windows {
			days := days
			g.Go(func() error {
				_, err := service.SalesByUserMonth(ctx, now.AddDate(0, 0, -days))
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return tracker.End(err)
		}
		logger.Info("report warmup finished", slog.Int("windows", len(windows)))
		return tracker.End(nil)
	}
}
