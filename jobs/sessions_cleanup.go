package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/meridian-pos/meridian-pos/internal/jobs"
)

// SessionPurger removes expired auth sessions from storage.
type SessionPurger interface {
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// NewSessionsCleanupHandler returns the handler purging expired sessions.
func NewSessionsCleanupHandler(purger SessionPurger, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SessionsCleanupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track("sessions_cleanup")
		purged, err := purger.DeleteExpiredSessions(ctx)
		if err != nil {
			return tracker.End(fmt.Errorf("purge sessions: %w", err))
		}
		logger.Info("session cleanup finished", slog.Int64("purged", purged))
		return tracker.End(nil)
	}
}
