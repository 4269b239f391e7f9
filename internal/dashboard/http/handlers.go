package dashboardhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/bizzportal/bizzportal/internal/dashboard"
	"github.com/bizzportal/bizzportal/internal/dashboard/export"
	"github.com/bizzportal/bizzportal/internal/dashboard/ui"
	"github.com/bizzportal/bizzportal/internal/platform/httpx"
)

// DashboardService is the pipeline contract used by the handler.
type DashboardService interface {
	Load(ctx context.Context) (dashboard.Result, error)
}

// Handler serves the dashboard and analytics view models.
type Handler struct {
	logger  *slog.Logger
	service DashboardService
	csvPool sync.Pool
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{logger: logger, service: service}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	res, ok := h.load(r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": ui.BuildDashboard(res)})
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	res, ok := h.load(r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": ui.BuildAnalytics(res)})
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	res, ok := h.load(r)
	if !ok {
		return
	}
	if res.Failed() {
		httpx.RespondError(w, fmt.Errorf("%s: %w", res.Notice.Message, httpx.ErrUnavailable))
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteDashboardCSV(buf, res); err != nil {
		h.handleServerError(w, "write dashboard csv", err)
		return
	}

	filename := fmt.Sprintf("dashboard-%s.csv", res.GeneratedAt.UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

// load runs the pipeline. It reports false when nothing should be written
// because the request went away.
func (h *Handler) load(r *http.Request) (dashboard.Result, bool) {
	res, err := h.service.Load(r.Context())
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			h.logError("load dashboard", err)
		}
		return dashboard.Result{}, false
	}
	return res, true
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
