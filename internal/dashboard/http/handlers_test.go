package dashboardhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/bizzportal/bizzportal/internal/dashboard"
	"github.com/bizzportal/bizzportal/internal/records"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type stubLoader struct {
	collections records.Collections
	err         error
}

func (s stubLoader) Fetch(ctx context.Context) (records.Collections, error) {
	return s.collections, s.err
}

func newTestRouter(loader dashboard.Loader) http.Handler {
	svc := dashboard.NewService(loader, dashboard.DefaultThresholds(), nil).WithNow(func() time.Time { return testNow })
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)
	return r
}

func sampleCollections() records.Collections {
	return records.Collections{
		Suppliers: []records.Supplier{{ID: 1, Name: "Acme", Status: records.SupplierActive}},
		Budgets:   []records.Budget{{Name: "Ops", Department: "IT", TotalAmount: records.ParseAmount("1000"), SpentAmount: records.ParseAmount("950")}},
		Invoices: []records.Invoice{{
			ID: 1, SupplierID: 1, SupplierName: "Acme", Amount: records.ParseAmount("150.50"),
			Status: records.InvoiceUnpaid, IssueDate: records.ParseDate("2025-06-01"), DueDate: records.ParseDate("2025-06-14"),
		}},
	}
}

func TestDashboardReturnsViewModel(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(stubLoader{collections: sampleCollections()}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data struct {
			Notice   *dashboard.Notice `json:"notice"`
			Cards    []map[string]any  `json:"cards"`
			Insights []struct {
				Description string `json:"description"`
			} `json:"insights"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Nil(t, body.Data.Notice)
	require.Equal(t, "$1,000", body.Data.Cards[0]["value"])
	require.Contains(t, body.Data.Insights[0].Description, "95.0%")
}

func TestAnalyticsFallsBackWithNotice(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(stubLoader{err: context.DeadlineExceeded}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/analytics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), dashboard.NoticeFetchFailed)
	require.Contains(t, rr.Body.String(), `"kpis"`)
}

func TestCancelledRequestWritesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	newTestRouter(stubLoader{err: context.Canceled}).ServeHTTP(rr, req)
	require.Zero(t, rr.Body.Len())
}

func TestExportCSV(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(stubLoader{collections: sampleCollections()}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/export.csv", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Header().Get("Content-Disposition"), "dashboard-2025-06-15.csv")
	require.True(t, strings.HasPrefix(rr.Body.String(), "Metric,Value"))
}

func TestExportCSVUnavailableOnFetchFailure(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(stubLoader{err: context.DeadlineExceeded}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/export.csv", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestExportCSVRateLimited(t *testing.T) {
	router := newTestRouter(stubLoader{collections: sampleCollections()})
	var last int
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest(http.MethodGet, "/dashboard/export.csv", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		last = rr.Code
	}
	require.Equal(t, http.StatusTooManyRequests, last)
}
