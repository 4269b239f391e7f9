package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bizzportal/bizzportal/internal/dashboard"
	jobmetrics "github.com/bizzportal/bizzportal/internal/jobs"
)

const defaultOverdueLogLimit = 50

// OverdueScanJob recomputes which invoices are overdue as of the run time.
// The stored invoice status is never consulted.
type OverdueScanJob struct {
	Loader  Loader
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewOverdueScanJob initialises the overdue scan handler.
func NewOverdueScanJob(loader Loader, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueScanJob {
	return &OverdueScanJob{
		Loader:  loader,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithClock overrides the scan clock for tests.
func (j *OverdueScanJob) WithClock(fn func() time.Time) *OverdueScanJob {
	if fn != nil {
		j.clock = fn
	}
	return j
}

// ScanResult summarises one overdue scan.
type ScanResult struct {
	Count  int
	Amount float64
	At     time.Time
}

// Handle executes the scan.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Loader == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.LogLimit <= 0 {
		payload.LogLimit = defaultOverdueLogLimit
	}

	tracker := jobMetrics(j.Metrics).Track(TaskOverdueScan)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	_, err := j.Scan(ctx, payload.LogLimit)
	return err
}

// Scan loads invoices, logs up to logLimit overdue ones and publishes gauges.
func (j *OverdueScanJob) Scan(ctx context.Context, logLimit int) (ScanResult, error) {
	logger := jobLogger(j.Logger, TaskOverdueScan)
	c, err := j.Loader.Fetch(ctx)
	if err != nil {
		logger.Error("load invoices", slog.Any("error", err))
		return ScanResult{}, err
	}

	now := j.clock()
	overdue := dashboard.OverdueInvoices(c.Invoices, now)
	result := ScanResult{Count: len(overdue), Amount: dashboard.TotalRevenue(overdue), At: now}
	for i, inv := range overdue {
		if i >= logLimit {
			logger.Warn("overdue invoices truncated", slog.Int("omitted", len(overdue)-logLimit))
			break
		}
		logger.Warn("invoice overdue",
			slog.Int64("invoice_id", inv.ID),
			slog.Int64("supplier_id", inv.SupplierID),
			slog.String("amount", inv.Amount.String()),
			slog.String("due_date", inv.DueDate.String()),
		)
	}
	jobMetrics(j.Metrics).SetOverdue(result.Count, result.Amount, now)
	logger.Info("overdue scan completed", slog.Int("overdue", result.Count), slog.Float64("amount", result.Amount))
	return result, nil
}
