package dashboard

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/bizzportal/bizzportal/internal/records"
)

type stubSource struct {
	suppliers []records.Supplier
	budgets   []records.Budget
	invoices  []records.Invoice
	documents []records.Document

	invoiceErr error
	block      chan struct{}
	calls      atomic.Int32
}

func (s *stubSource) wait(ctx context.Context) error {
	s.calls.Add(1)
	if s.block == nil {
		return nil
	}
	select {
	case <-s.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *stubSource) ListSuppliers(ctx context.Context) ([]records.Supplier, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.suppliers, nil
}

func (s *stubSource) ListBudgets(ctx context.Context) ([]records.Budget, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.budgets, nil
}

func (s *stubSource) ListInvoices(ctx context.Context) ([]records.Invoice, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if s.invoiceErr != nil {
		return nil, s.invoiceErr
	}
	return s.invoices, nil
}

func (s *stubSource) ListDocuments(ctx context.Context) ([]records.Document, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.documents, nil
}

func sampleSource() *stubSource {
	return &stubSource{
		suppliers: []records.Supplier{{ID: 1, Name: "Acme", Status: records.SupplierActive}},
		budgets:   []records.Budget{{ID: 1, Name: "Ops", Department: "IT", TotalAmount: records.ParseAmount("1000"), SpentAmount: records.ParseAmount("950")}},
		invoices:  []records.Invoice{{ID: 1, SupplierID: 1, Amount: records.ParseAmount("150.50"), Status: records.InvoiceUnpaid}},
		documents: []records.Document{{ID: 1, Name: "w9.pdf"}},
	}
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestFetchReturnsAllCollections(t *testing.T) {
	src := sampleSource()
	f := NewFetcher(src, nil, time.Second)

	got, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Suppliers) != 1 || len(got.Budgets) != 1 || len(got.Invoices) != 1 || len(got.Documents) != 1 {
		t.Fatalf("unexpected collections %#v", got)
	}
	if src.calls.Load() != 4 {
		t.Fatalf("expected 4 reads, got %d", src.calls.Load())
	}
}

func TestFetchFailsAsUnit(t *testing.T) {
	src := sampleSource()
	src.invoiceErr = errors.New("connection reset")
	f := NewFetcher(src, nil, 0)

	got, err := f.Fetch(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if got.Suppliers != nil || got.Budgets != nil || got.Documents != nil {
		t.Fatalf("expected no partial results, got %#v", got)
	}
}

func TestFetchHonoursCancellation(t *testing.T) {
	src := sampleSource()
	src.block = make(chan struct{})
	f := NewFetcher(src, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.Fetch(ctx)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("fetch did not return after cancel")
	}
}

func TestFetchTimesOut(t *testing.T) {
	src := sampleSource()
	src.block = make(chan struct{})
	f := NewFetcher(src, nil, 20*time.Millisecond)

	_, err := f.Fetch(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestFetchCachesRawCollections(t *testing.T) {
	cache, _ := newTestCache(t)
	src := sampleSource()
	f := NewFetcher(src, cache, 0)
	ctx := context.Background()

	if _, err := f.Fetch(ctx); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	got, err := f.Fetch(ctx)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if src.calls.Load() != 4 {
		t.Fatalf("expected cached snapshot, source called %d times", src.calls.Load())
	}
	if got.Invoices[0].Amount.Float64() != 150.5 {
		t.Fatalf("expected cached amount 150.5, got %v", got.Invoices[0].Amount)
	}

	if err := cache.Bump(ctx); err != nil {
		t.Fatalf("bump failed: %v", err)
	}
	src.budgets = nil
	got, err = f.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch after bump: %v", err)
	}
	if src.calls.Load() != 8 {
		t.Fatalf("expected refresh after bump, calls %d", src.calls.Load())
	}
	if got.Budgets == nil || len(got.Budgets) != 0 {
		t.Fatalf("expected empty non-nil budgets, got %#v", got.Budgets)
	}
}

func TestCachedFetchAggregatesLikeDirectFetch(t *testing.T) {
	newSource := func() *stubSource {
		return &stubSource{
			suppliers: []records.Supplier{{ID: 1, Name: "Acme", Status: records.SupplierActive}},
			budgets: []records.Budget{
				{ID: 1, Name: "Ops", Department: "IT", TotalAmount: records.ParseAmount("0.005"), SpentAmount: records.ParseAmount("0.004")},
				{ID: 2, Name: "Cloud", Department: "IT", TotalAmount: records.ParseAmount("1234.567"), SpentAmount: records.ParseAmount("n/a")},
			},
			invoices: []records.Invoice{{
				ID: 1, SupplierID: 1, Amount: records.ParseAmount("1234.567"), Status: records.InvoiceUnpaid,
				IssueDate: records.ParseDate("2025-05-20"), DueDate: records.ParseDate("2025-06-01"),
			}},
		}
	}
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	direct, err := NewFetcher(newSource(), nil, 0).Fetch(ctx)
	if err != nil {
		t.Fatalf("direct fetch: %v", err)
	}

	cache, _ := newTestCache(t)
	src := newSource()
	cached := NewFetcher(src, cache, 0)
	if _, err := cached.Fetch(ctx); err != nil {
		t.Fatalf("warm fetch: %v", err)
	}
	hit, err := cached.Fetch(ctx)
	if err != nil {
		t.Fatalf("cached fetch: %v", err)
	}
	if src.calls.Load() != 4 {
		t.Fatalf("expected second fetch from cache, source called %d times", src.calls.Load())
	}
	if hit.Budgets[1].SpentAmount.Valid() {
		t.Fatalf("invalid amount became valid after caching")
	}

	want := Aggregate(direct, now)
	got := Aggregate(hit, now)
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("cached aggregates differ:\nwant %+v\ngot  %+v", want, got)
	}
	if want.TotalBudget != 1234.572 {
		t.Fatalf("expected full precision total, got %v", want.TotalBudget)
	}
}

func TestCacheVersionInitialises(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, keyRecords()...)
	if err != nil {
		t.Fatalf("build key: %v", err)
	}
	if key != "dashboard:records:1" {
		t.Fatalf("unexpected key %q", key)
	}
	if err := cache.Bump(ctx); err != nil {
		t.Fatalf("bump: %v", err)
	}
	if v, _ := mr.Get(cacheVersionKey); v != "2" {
		t.Fatalf("expected version 2, got %q", v)
	}

	var nilCache *Cache
	key, err = nilCache.BuildKey(ctx, "a", "b")
	if err != nil || key != "a:b" {
		t.Fatalf("nil cache key %q err %v", key, err)
	}
	if err := nilCache.Bump(ctx); err != nil {
		t.Fatalf("nil cache bump: %v", err)
	}
}
