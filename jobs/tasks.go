package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan flags products running low on stock.
	TaskLowStockScan = "stock:low_scan"
	// TaskReportsWarmup pre-computes the sales report caches.
	TaskReportsWarmup = "reports:warmup"
	// TaskSessionsCleanup purges expired auth sessions.
	TaskSessionsCleanup = "sessions:cleanup"
)

// LowStockScanPayload carries the threshold for a scan run.
type LowStockScanPayload struct {
	Threshold int `json:"threshold"`
}

// NewLowStockScanTask constructs an Asynq task for a low stock scan.
func NewLowStockScanTask(threshold int) (*asynq.Task, error) {
	body, err := json.Marshal(LowStockScanPayload{Threshold: threshold})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body, asynq.Queue(QueueDefault)), nil
}

// ReportsWarmupPayload carries the report windows to warm, in days.
type ReportsWarmupPayload struct {
	WindowsDays []int `json:"windows_days"`
}

// NewReportsWarmupTask constructs an Asynq task warming the given windows.
func NewReportsWarmupTask(windowsDays []int) (*asynq.Task, error) {
	body, err := json.Marshal(ReportsWarmupPayload{WindowsDays: windowsDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, body, asynq.Queue(QueueDefault)), nil
}

// SessionsCleanupPayload carries scheduling metadata.
type SessionsCleanupPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewSessionsCleanupTask constructs an Asynq task purging expired sessions.
func NewSessionsCleanupTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(SessionsCleanupPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionsCleanup, body, asynq.Queue(QueueDefault)), nil
}
