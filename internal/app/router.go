package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bizzportal/bizzportal/internal/auth"
	dashboardhttp "github.com/bizzportal/bizzportal/internal/dashboard/http"
	"github.com/bizzportal/bizzportal/internal/observability"
	"github.com/bizzportal/bizzportal/internal/platform/httpx"
	recordhttp "github.com/bizzportal/bizzportal/internal/records/http"
	"github.com/bizzportal/bizzportal/internal/shared"
	"github.com/bizzportal/bizzportal/jobs"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping implements Pinger.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	AuthHandler      *auth.Handler
	RecordsHandler   *recordhttp.Handler
	DashboardHandler *dashboardhttp.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
	Health           map[string]Pinger
}

// NewRouter constructs the chi.Router with the portal defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", healthHandler(params.Health))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if params.AuthHandler != nil {
			api.Route("/auth", params.AuthHandler.MountRoutes)
		}
		api.Group(func(private chi.Router) {
			private.Use(auth.RequireUser)
			if params.RecordsHandler != nil {
				params.RecordsHandler.MountRoutes(private)
			}
			if params.DashboardHandler != nil {
				params.DashboardHandler.MountRoutes(private)
			}
		})
	})

	if params.JobHandler != nil {
		r.With(auth.RequireUser).Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondError(w, httpx.ErrNotFound)
	})
	return r
}

func healthHandler(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		status := "ok"
		code := http.StatusOK
		details := make(map[string]string, len(checks))
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Ping(ctx); err != nil {
				details[name] = err.Error()
				status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			details[name] = "ok"
		}
		httpx.JSON(w, code, map[string]any{"status": status, "checks": details})
	}
}
