package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/bizzportal/bizzportal/internal/jobs"
	"github.com/bizzportal/bizzportal/internal/records"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Loader reads one snapshot of all record collections.
type Loader interface {
	Fetch(ctx context.Context) (records.Collections, error)
}

// DashboardWarmupJob pre-populates the record cache so the first dashboard
// request after an invalidation does not pay for the four reads.
type DashboardWarmupJob struct {
	Loader  Loader
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(loader Loader, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{Loader: loader, Logger: logger, Metrics: metrics, Timeout: 20 * time.Second}
}

// Handle processes warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Loader == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Reason == "" {
		payload.Reason = "schedule"
	}

	tracker := jobMetrics(j.Metrics).Track(TaskDashboardWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := jobLogger(j.Logger, TaskDashboardWarmup).With(slog.String("reason", payload.Reason))
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	start := time.Now()
	c, err := j.Loader.Fetch(ctx)
	if err != nil {
		logger.Error("warm record cache", slog.Any("error", err))
		return err
	}
	logger.Info("record cache warmed",
		slog.Int("suppliers", len(c.Suppliers)),
		slog.Int("budgets", len(c.Budgets)),
		slog.Int("invoices", len(c.Invoices)),
		slog.Int("documents", len(c.Documents)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func jobLogger(logger *slog.Logger, job string) *slog.Logger {
	if logger != nil {
		return logger.With(slog.String("job", job))
	}
	return slog.Default().With(slog.String("job", job))
}

func jobMetrics(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}
