package records

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/bizzportal/bizzportal/internal/platform/db"
)

// Migrate creates the record tables in one transaction. Safe to run on
// every start.
func Migrate(ctx context.Context, conn db.Beginner, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("running record migrations")
	err := db.WithTx(ctx, conn, func(tx pgx.Tx) error {
		for _, stmt := range migrations {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("records: migrate: %w\nstatement: %s", err, stmt)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("record migrations complete")
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS suppliers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
		category TEXT NOT NULL DEFAULT '',
		contact TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS budgets (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		department TEXT NOT NULL,
		total_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		spent_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS invoices (
		id BIGSERIAL PRIMARY KEY,
		supplier_id BIGINT NOT NULL REFERENCES suppliers(id) ON DELETE CASCADE,
		amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'unpaid' CHECK (status IN ('paid', 'unpaid', 'overdue')),
		issue_date DATE,
		due_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		uploaded_by TEXT NOT NULL,
		type TEXT NOT NULL,
		size BIGINT NOT NULL DEFAULT 0,
		related_supplier_id BIGINT REFERENCES suppliers(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_invoices_supplier ON invoices(supplier_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_due_date ON invoices(due_date)`,
	`CREATE INDEX IF NOT EXISTS idx_budgets_department ON budgets(department)`,
}
