package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bizzportal/bizzportal/internal/dashboard"
	"github.com/bizzportal/bizzportal/internal/platform/db"
	"github.com/bizzportal/bizzportal/internal/records"
	"github.com/bizzportal/bizzportal/internal/records/remote"
)

// RecordStore is the record backend selected by RECORDS_SOURCE.
type RecordStore struct {
	// Source feeds the dashboard fetcher.
	Source dashboard.Source
	// Repository backs the CRUD API. Nil for the read-only remote source.
	Repository records.Repository
	// Health is nil when the backend has nothing to ping.
	Health Pinger

	close func()
}

// Close releases pooled connections.
func (s *RecordStore) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// OpenRecords connects to the configured record backend. Postgres runs the
// table migrations before returning.
func OpenRecords(ctx context.Context, cfg *Config, logger *slog.Logger) (*RecordStore, error) {
	switch cfg.RecordsSource {
	case SourcePostgres:
		pool, err := db.Open(ctx, db.Options{DSN: cfg.PGDSN, MaxConns: cfg.PGMaxConns})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := records.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate records: %w", err)
		}
		repo := records.NewRepository(pool)
		return &RecordStore{
			Source:     repo,
			Repository: repo,
			Health:     PingFunc(pool.Ping),
			close:      pool.Close,
		}, nil
	case SourceRemote:
		client := remote.NewClient(remote.Config{
			BaseURL: cfg.RecordsRemoteURL,
			Token:   cfg.RecordsRemoteToken,
			Timeout: cfg.DashboardFetchTimeout,
		})
		return &RecordStore{Source: client}, nil
	case SourceMemory:
		repo := records.NewMemoryRepository()
		return &RecordStore{Source: repo, Repository: repo}, nil
	default:
		return nil, fmt.Errorf("unknown records source %q", cfg.RecordsSource)
	}
}
