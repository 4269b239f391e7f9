package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup refreshes the cached record snapshot.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskOverdueScan recomputes overdue invoices and publishes gauges.
	TaskOverdueScan = "invoices:overdue_scan"
)

// Cron specs for the scheduled tasks.
const (
	DashboardWarmupCron = "*/10 * * * *"
	OverdueScanCron     = "0 * * * *"
)

// DashboardWarmupPayload configures a warmup run.
type DashboardWarmupPayload struct {
	Reason string `json:"reason"`
}

// OverdueScanPayload configures an overdue scan. LogLimit caps the number of
// invoices logged individually.
type OverdueScanPayload struct {
	LogLimit int `json:"log_limit"`
}

// NewDashboardWarmupTask constructs the warmup task.
func NewDashboardWarmupTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(DashboardWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// NewOverdueScanTask constructs the overdue scan task.
func NewOverdueScanTask(logLimit int) (*asynq.Task, error) {
	data, err := json.Marshal(OverdueScanPayload{LogLimit: logLimit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, data), nil
}
