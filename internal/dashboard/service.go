package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bizzportal/bizzportal/internal/records"
)

// NoticeFetchFailed is the single user-facing message for a failed fetch.
const NoticeFetchFailed = "Failed to load dashboard data"

// Notice is a one-off message for the presentation layer.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Result is one evaluation of the pipeline.
type Result struct {
	GeneratedAt time.Time
	Collections records.Collections
	Aggregates  Aggregates
	Insights    []Insight
	KPIs        []KPI
	Overdue     []records.Invoice
	Notice      *Notice
}

// Failed reports whether the fetch failed and the result carries defaults.
func (r Result) Failed() bool {
	return r.Notice != nil && r.Notice.Kind == "error"
}

// Loader fetches one snapshot of the record collections.
type Loader interface {
	Fetch(ctx context.Context) (records.Collections, error)
}

// Service runs fetch, aggregate and classify for every request.
type Service struct {
	loader     Loader
	thresholds Thresholds
	logger     *slog.Logger
	now        func() time.Time
	onFailure  func()
}

// NewService constructs the dashboard service.
func NewService(loader Loader, thresholds Thresholds, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		loader:     loader,
		thresholds: thresholds.withDefaults(),
		logger:     logger,
		now:        time.Now,
	}
}

// WithNow overrides the clock, primarily for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WithFailureObserver registers a callback invoked once per degraded evaluation.
func (s *Service) WithFailureObserver(fn func()) *Service {
	s.onFailure = fn
	return s
}

// Thresholds returns the classifier configuration in use.
func (s *Service) Thresholds() Thresholds {
	return s.thresholds
}

// Load evaluates the dashboard. A failed fetch is logged once and replaced
// by empty collections plus an error notice. The only error returned is the
// caller's context being done, in which case nothing should be rendered.
func (s *Service) Load(ctx context.Context) (Result, error) {
	collections, err := s.loader.Fetch(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		if errors.Is(err, context.Canceled) {
			return Result{}, err
		}
		s.logger.Error("dashboard fetch failed", slog.Any("error", err))
		if s.onFailure != nil {
			s.onFailure()
		}
		res := s.Evaluate(records.Collections{})
		res.Notice = &Notice{Kind: "error", Message: NoticeFetchFailed}
		return res, nil
	}
	return s.Evaluate(collections), nil
}

// Evaluate derives every value from an already-fetched snapshot.
func (s *Service) Evaluate(c records.Collections) Result {
	now := s.now()
	c = normalize(c)
	agg := Aggregate(c, now)
	return Result{
		GeneratedAt: now,
		Collections: c,
		Aggregates:  agg,
		Insights:    BuildInsights(agg, s.thresholds),
		KPIs:        BuildKPIs(agg, s.thresholds),
		Overdue:     OverdueInvoices(c.Invoices, now),
	}
}
