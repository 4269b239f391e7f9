package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/bizzportal/bizzportal/internal/jobs"
	"github.com/bizzportal/bizzportal/internal/records"
)

type stubLoader struct {
	collections records.Collections
	err         error
	calls       int
}

func (s *stubLoader) Fetch(ctx context.Context) (records.Collections, error) {
	s.calls++
	return s.collections, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDashboardWarmupFetchesOnce(t *testing.T) {
	loader := &stubLoader{collections: records.Collections{Suppliers: []records.Supplier{{ID: 1}}}}
	job := NewDashboardWarmupJob(loader, quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := NewDashboardWarmupTask("test")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 1, loader.calls)
}

func TestDashboardWarmupPropagatesFailure(t *testing.T) {
	loader := &stubLoader{err: errors.New("db down")}
	job := NewDashboardWarmupJob(loader, quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	err := job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, nil))
	require.EqualError(t, err, "db down")
}

func TestMalformedPayloadSkipsRetry(t *testing.T) {
	job := NewOverdueScanJob(&stubLoader{}, quietLogger(), nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskOverdueScan, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestOverdueScanRecomputesFromDueDates(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	loader := &stubLoader{collections: records.Collections{Invoices: []records.Invoice{
		{ID: 1, Amount: records.ParseAmount("150.50"), Status: records.InvoiceUnpaid, DueDate: records.ParseDate("2025-06-14")},
		{ID: 2, Amount: records.ParseAmount("99.50"), Status: records.InvoiceOverdue, DueDate: records.ParseDate("2025-06-01")},
		{ID: 3, Amount: records.ParseAmount("500"), Status: records.InvoicePaid, DueDate: records.ParseDate("2025-01-01")},
		{ID: 4, Amount: records.ParseAmount("70"), Status: records.InvoiceOverdue, DueDate: records.ParseDate("2025-07-01")},
	}}}
	job := NewOverdueScanJob(loader, quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry())).
		WithClock(func() time.Time { return now })

	res, err := job.Scan(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)
	require.Equal(t, 250.0, res.Amount)
	require.Equal(t, now, res.At)

	task, err := NewOverdueScanTask(10)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
}

func TestUnconfiguredJobsFail(t *testing.T) {
	var warm *DashboardWarmupJob
	require.Error(t, warm.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, nil)))
	require.Error(t, (&OverdueScanJob{}).Handle(context.Background(), asynq.NewTask(TaskOverdueScan, nil)))
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func serveHealth(h *Handler) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	return rr
}

func TestJobsHealth(t *testing.T) {
	rr := serveHealth(NewHandler(nil, quietLogger()))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"queue":"default","pending":0,"active":0,"scheduled":0,"retry":0,"failed":0,"paused":false}`, rr.Body.String())

	rr = serveHealth(NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 3, Archived: 1}}, quietLogger()))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"pending":3`)
	require.Contains(t, rr.Body.String(), `"failed":1`)

	rr = serveHealth(NewHandler(stubInspector{err: errors.New("redis down")}, quietLogger()))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestNilClientBumpIsNoop(t *testing.T) {
	var c *Client
	require.NoError(t, c.Bump(context.Background()))
}
