package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bizzportal/bizzportal/internal/auth"
	"github.com/bizzportal/bizzportal/internal/dashboard"
	dashboardhttp "github.com/bizzportal/bizzportal/internal/dashboard/http"
	"github.com/bizzportal/bizzportal/internal/observability"
	"github.com/bizzportal/bizzportal/internal/records"
	recordhttp "github.com/bizzportal/bizzportal/internal/records/http"
	"github.com/bizzportal/bizzportal/internal/shared"
)

type testApp struct {
	router http.Handler
	redis  *miniredis.Miniredis
}

func newTestApp(t *testing.T, health map[string]Pinger) testApp {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hashed, err := bcrypt.GenerateFromPassword([]byte("portalpass"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second}

	cache := dashboard.NewCache(client, time.Minute)
	repo := records.NewMemoryRepository()
	recordService := records.NewService(repo, records.Invalidators{cache}, logger)
	dashboardService := dashboard.NewService(dashboard.NewFetcher(repo, cache, time.Second), dashboard.DefaultThresholds(), logger)
	sessions := shared.NewSessionManager(client, "bizzportal_session", "secret", time.Hour, false)

	router := NewRouter(RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessions,
		AuthHandler:      auth.NewHandler(logger, auth.NewService(auth.Credentials{Username: "admin", PasswordHash: string(hashed)}), sessions),
		RecordsHandler:   recordhttp.NewHandler(logger, recordService),
		DashboardHandler: dashboardhttp.NewHandler(logger, dashboardService),
		Metrics:          observability.NewMetrics(),
		Health:           health,
	})
	return testApp{router: router, redis: mr}
}

func (a testApp) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a testApp) login(t *testing.T) *http.Cookie {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"portalpass"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	for _, c := range rr.Result().Cookies() {
		if c.Name == "bizzportal_session" {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func TestRouterRequiresLogin(t *testing.T) {
	app := newTestApp(t, nil)

	for _, path := range []string{"/api/dashboard", "/api/analytics", "/api/suppliers", "/api/dashboard/export.csv"} {
		rr := app.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rr.Code, path)
		require.Contains(t, rr.Body.String(), `"status":401`, path)
	}
}

func TestRouterDashboardReflectsWrites(t *testing.T) {
	app := newTestApp(t, nil)
	cookie := app.login(t)

	rr := app.do(t, http.MethodGet, "/api/dashboard", "", cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"value":"0 / 0"`)
	require.NotEmpty(t, rr.Header().Get("X-Frame-Options"))

	rr = app.do(t, http.MethodPost, "/api/suppliers", `{"name":"Acme","status":"active","category":"hardware"}`, cookie)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = app.do(t, http.MethodGet, "/api/dashboard", "", cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"value":"1 / 1"`)

	rr = app.do(t, http.MethodGet, "/api/analytics", "", cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"kpis"`)
}

func TestRouterHealth(t *testing.T) {
	app := newTestApp(t, map[string]Pinger{
		"records": PingFunc(func(context.Context) error { return nil }),
	})
	rr := app.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok","checks":{"records":"ok"}}`, rr.Body.String())

	app = newTestApp(t, map[string]Pinger{
		"records": PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	rr = app.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Contains(t, rr.Body.String(), "connection refused")
}

func TestRouterMetricsAndNotFound(t *testing.T) {
	app := newTestApp(t, nil)
	app.do(t, http.MethodGet, "/healthz", "", nil)

	rr := app.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "bizzportal_http_requests_total")

	rr = app.do(t, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}
