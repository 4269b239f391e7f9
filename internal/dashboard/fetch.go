package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bizzportal/bizzportal/internal/records"
)

// Source is the read side of the record store.
type Source interface {
	ListSuppliers(ctx context.Context) ([]records.Supplier, error)
	ListBudgets(ctx context.Context) ([]records.Budget, error)
	ListInvoices(ctx context.Context) ([]records.Invoice, error)
	ListDocuments(ctx context.Context) ([]records.Document, error)
}

// Fetcher loads all four collections as one unit.
type Fetcher struct {
	source  Source
	cache   *Cache
	timeout time.Duration
}

// NewFetcher builds a fetcher. cache may be nil; timeout <= 0 disables the
// per-fetch deadline.
func NewFetcher(source Source, cache *Cache, timeout time.Duration) *Fetcher {
	return &Fetcher{source: source, cache: cache, timeout: timeout}
}

// Fetch issues the four reads concurrently. Any failure fails the whole
// fetch and no partial collections are returned. A cancelled context is
// reported as ctx.Err() even when every read already finished.
func (f *Fetcher) Fetch(ctx context.Context) (records.Collections, error) {
	if err := ctx.Err(); err != nil {
		return records.Collections{}, err
	}
	loader := func(ctx context.Context) (any, error) {
		return f.fetchAll(ctx)
	}

	var out records.Collections
	if f.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return records.Collections{}, err
		}
		out = value.(records.Collections)
	} else {
		key, err := f.cache.BuildKey(ctx, keyRecords()...)
		if err != nil {
			return records.Collections{}, fmt.Errorf("dashboard: cache key: %w", err)
		}
		if err := f.cache.FetchJSON(ctx, key, &out, loader); err != nil {
			return records.Collections{}, err
		}
	}

	if err := ctx.Err(); err != nil {
		return records.Collections{}, err
	}
	return normalize(out), nil
}

func (f *Fetcher) fetchAll(ctx context.Context) (records.Collections, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	var (
		suppliers []records.Supplier
		budgets   []records.Budget
		invoices  []records.Invoice
		documents []records.Document
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		suppliers, err = f.source.ListSuppliers(gctx)
		if err != nil {
			return fmt.Errorf("suppliers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		budgets, err = f.source.ListBudgets(gctx)
		if err != nil {
			return fmt.Errorf("budgets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		invoices, err = f.source.ListInvoices(gctx)
		if err != nil {
			return fmt.Errorf("invoices: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		documents, err = f.source.ListDocuments(gctx)
		if err != nil {
			return fmt.Errorf("documents: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return records.Collections{}, err
	}
	if err := ctx.Err(); err != nil {
		return records.Collections{}, err
	}
	return records.Collections{
		Suppliers: suppliers,
		Budgets:   budgets,
		Invoices:  invoices,
		Documents: documents,
	}, nil
}

// normalize replaces nil slices so callers always see empty collections.
func normalize(c records.Collections) records.Collections {
	if c.Suppliers == nil {
		c.Suppliers = []records.Supplier{}
	}
	if c.Budgets == nil {
		c.Budgets = []records.Budget{}
	}
	if c.Invoices == nil {
		c.Invoices = []records.Invoice{}
	}
	if c.Documents == nil {
		c.Documents = []records.Document{}
	}
	return c
}
