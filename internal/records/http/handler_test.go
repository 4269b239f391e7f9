package recordhttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/bizzportal/bizzportal/internal/records"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := records.NewService(records.NewMemoryRepository(), nil, nil)
	h := NewHandler(nil, svc)
	r := chi.NewRouter()
	r.Route("/api", h.MountRoutes)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSupplierCRUD(t *testing.T) {
	router := newTestRouter(t)

	rr := do(t, router, http.MethodPost, "/api/suppliers", `{"name":"Acme","status":"active","category":"Hardware"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created struct {
		Data records.Supplier `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, int64(1), created.Data.ID)

	rr = do(t, router, http.MethodPut, "/api/suppliers/1", `{"name":"Acme Ltd","status":"inactive"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Acme Ltd")

	rr = do(t, router, http.MethodGet, "/api/suppliers", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var listed struct {
		Data []records.Supplier `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 1)
	require.Equal(t, records.SupplierInactive, listed.Data[0].Status)

	rr = do(t, router, http.MethodDelete, "/api/suppliers/1", "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, router, http.MethodGet, "/api/suppliers/1", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Contains(t, rr.Body.String(), `"title":"Not Found"`)
}

func TestCreateBudgetNormalizesStringAmounts(t *testing.T) {
	router := newTestRouter(t)
	rr := do(t, router, http.MethodPost, "/api/budgets", `{"name":"Cloud","department":"IT","total_amount":"$1,000","spent_amount":"950"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Contains(t, rr.Body.String(), `"total_amount":1000`)
	require.Contains(t, rr.Body.String(), `"spent_amount":950`)
}

func TestValidationProblems(t *testing.T) {
	router := newTestRouter(t)

	rr := do(t, router, http.MethodPost, "/api/invoices", `{"supplier_id":0,"amount":"1","status":"unpaid"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "supplier_id")

	rr = do(t, router, http.MethodPost, "/api/documents", `{not json`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodGet, "/api/budgets/abc", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
