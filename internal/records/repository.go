package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizzportal/bizzportal/internal/platform/httpx"
)

// Repository defines record data access.
type Repository interface {
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	GetSupplier(ctx context.Context, id int64) (Supplier, error)
	CreateSupplier(ctx context.Context, in SupplierInput) (Supplier, error)
	UpdateSupplier(ctx context.Context, id int64, in SupplierInput) (Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) error

	ListBudgets(ctx context.Context) ([]Budget, error)
	GetBudget(ctx context.Context, id int64) (Budget, error)
	CreateBudget(ctx context.Context, in BudgetInput) (Budget, error)
	UpdateBudget(ctx context.Context, id int64, in BudgetInput) (Budget, error)
	DeleteBudget(ctx context.Context, id int64) error

	ListInvoices(ctx context.Context) ([]Invoice, error)
	GetInvoice(ctx context.Context, id int64) (Invoice, error)
	CreateInvoice(ctx context.Context, in InvoiceInput) (Invoice, error)
	UpdateInvoice(ctx context.Context, id int64, in InvoiceInput) (Invoice, error)
	DeleteInvoice(ctx context.Context, id int64) error

	ListDocuments(ctx context.Context) ([]Document, error)
	GetDocument(ctx context.Context, id int64) (Document, error)
	CreateDocument(ctx context.Context, in DocumentInput) (Document, error)
	UpdateDocument(ctx context.Context, id int64, in DocumentInput) (Document, error)
	DeleteDocument(ctx context.Context, id int64) error
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const (
	supplierColumns = `id, name, status, category, contact, created_at, updated_at`
	budgetColumns   = `id, name, department, total_amount::text, spent_amount::text, created_at, updated_at`
	invoiceSelect   = `SELECT i.id, i.supplier_id, COALESCE(s.name, ''), i.amount::text, i.status, i.issue_date, i.due_date, i.created_at, i.updated_at
FROM invoices i LEFT JOIN suppliers s ON s.id = i.supplier_id`
	documentColumns = `id, name, uploaded_by, type, size, related_supplier_id, created_at, updated_at`
)

func (r *pgRepository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("records: list suppliers: %w", err)
	}
	return collect(rows, scanSupplier)
}

func (r *pgRepository) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id=$1`, id)
	s, err := scanSupplier(row)
	return s, mapError("supplier", id, err)
}

func (r *pgRepository) CreateSupplier(ctx context.Context, in SupplierInput) (Supplier, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO suppliers (name, status, category, contact)
VALUES ($1, $2, $3, $4) RETURNING `+supplierColumns, in.Name, string(in.Status), in.Category, in.Contact)
	s, err := scanSupplier(row)
	return s, mapError("supplier", 0, err)
}

func (r *pgRepository) UpdateSupplier(ctx context.Context, id int64, in SupplierInput) (Supplier, error) {
	row := r.pool.QueryRow(ctx, `UPDATE suppliers SET name=$2, status=$3, category=$4, contact=$5, updated_at=NOW()
WHERE id=$1 RETURNING `+supplierColumns, id, in.Name, string(in.Status), in.Category, in.Contact)
	s, err := scanSupplier(row)
	return s, mapError("supplier", id, err)
}

func (r *pgRepository) DeleteSupplier(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "suppliers", "supplier", id)
}

func (r *pgRepository) ListBudgets(ctx context.Context) ([]Budget, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+budgetColumns+` FROM budgets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("records: list budgets: %w", err)
	}
	return collect(rows, scanBudget)
}

func (r *pgRepository) GetBudget(ctx context.Context, id int64) (Budget, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id=$1`, id)
	b, err := scanBudget(row)
	return b, mapError("budget", id, err)
}

func (r *pgRepository) CreateBudget(ctx context.Context, in BudgetInput) (Budget, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO budgets (name, department, total_amount, spent_amount)
VALUES ($1, $2, $3, $4) RETURNING `+budgetColumns, in.Name, in.Department, in.TotalAmount.Decimal(), in.SpentAmount.Decimal())
	b, err := scanBudget(row)
	return b, mapError("budget", 0, err)
}

func (r *pgRepository) UpdateBudget(ctx context.Context, id int64, in BudgetInput) (Budget, error) {
	row := r.pool.QueryRow(ctx, `UPDATE budgets SET name=$2, department=$3, total_amount=$4, spent_amount=$5, updated_at=NOW()
WHERE id=$1 RETURNING `+budgetColumns, id, in.Name, in.Department, in.TotalAmount.Decimal(), in.SpentAmount.Decimal())
	b, err := scanBudget(row)
	return b, mapError("budget", id, err)
}

func (r *pgRepository) DeleteBudget(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "budgets", "budget", id)
}

func (r *pgRepository) ListInvoices(ctx context.Context) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, invoiceSelect+` ORDER BY i.id`)
	if err != nil {
		return nil, fmt.Errorf("records: list invoices: %w", err)
	}
	return collect(rows, scanInvoice)
}

func (r *pgRepository) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	row := r.pool.QueryRow(ctx, invoiceSelect+` WHERE i.id=$1`, id)
	inv, err := scanInvoice(row)
	return inv, mapError("invoice", id, err)
}

func (r *pgRepository) CreateInvoice(ctx context.Context, in InvoiceInput) (Invoice, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO invoices (supplier_id, amount, status, issue_date, due_date)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		in.SupplierID, in.Amount.Decimal(), string(in.Status), toPGDate(in.IssueDate), toPGDate(in.DueDate)).Scan(&id)
	if err != nil {
		return Invoice{}, mapError("invoice", 0, err)
	}
	return r.GetInvoice(ctx, id)
}

func (r *pgRepository) UpdateInvoice(ctx context.Context, id int64, in InvoiceInput) (Invoice, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE invoices SET supplier_id=$2, amount=$3, status=$4, issue_date=$5, due_date=$6, updated_at=NOW()
WHERE id=$1`, id, in.SupplierID, in.Amount.Decimal(), string(in.Status), toPGDate(in.IssueDate), toPGDate(in.DueDate))
	if err != nil {
		return Invoice{}, mapError("invoice", id, err)
	}
	if tag.RowsAffected() == 0 {
		return Invoice{}, fmt.Errorf("invoice %d: %w", id, httpx.ErrNotFound)
	}
	return r.GetInvoice(ctx, id)
}

func (r *pgRepository) DeleteInvoice(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "invoices", "invoice", id)
}

func (r *pgRepository) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("records: list documents: %w", err)
	}
	return collect(rows, scanDocument)
}

func (r *pgRepository) GetDocument(ctx context.Context, id int64) (Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id=$1`, id)
	d, err := scanDocument(row)
	return d, mapError("document", id, err)
}

func (r *pgRepository) CreateDocument(ctx context.Context, in DocumentInput) (Document, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO documents (name, uploaded_by, type, size, related_supplier_id)
VALUES ($1, $2, $3, $4, $5) RETURNING `+documentColumns, in.Name, in.UploadedBy, in.Type, in.Size, in.RelatedSupplierID)
	d, err := scanDocument(row)
	return d, mapError("document", 0, err)
}

func (r *pgRepository) UpdateDocument(ctx context.Context, id int64, in DocumentInput) (Document, error) {
	row := r.pool.QueryRow(ctx, `UPDATE documents SET name=$2, uploaded_by=$3, type=$4, size=$5, related_supplier_id=$6, updated_at=NOW()
WHERE id=$1 RETURNING `+documentColumns, id, in.Name, in.UploadedBy, in.Type, in.Size, in.RelatedSupplierID)
	d, err := scanDocument(row)
	return d, mapError("document", id, err)
}

func (r *pgRepository) DeleteDocument(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "documents", "document", id)
}

func (r *pgRepository) deleteByID(ctx context.Context, table, entity string, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id=$1`, id)
	if err != nil {
		return mapError(entity, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, httpx.ErrNotFound)
	}
	return nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	var status string
	if err := row.Scan(&s.ID, &s.Name, &status, &s.Category, &s.Contact, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return Supplier{}, err
	}
	s.Status = SupplierStatus(status)
	return s, nil
}

func scanBudget(row pgx.Row) (Budget, error) {
	var b Budget
	var total, spent string
	if err := row.Scan(&b.ID, &b.Name, &b.Department, &total, &spent, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return Budget{}, err
	}
	b.TotalAmount = ParseAmount(total)
	b.SpentAmount = ParseAmount(spent)
	return b, nil
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	var amount, status string
	var issue, due pgtype.Date
	if err := row.Scan(&inv.ID, &inv.SupplierID, &inv.SupplierName, &amount, &status, &issue, &due, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return Invoice{}, err
	}
	inv.Amount = ParseAmount(amount)
	inv.Status = InvoiceStatus(status)
	inv.IssueDate = fromPGDate(issue)
	inv.DueDate = fromPGDate(due)
	return inv, nil
}

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	if err := row.Scan(&d.ID, &d.Name, &d.UploadedBy, &d.Type, &d.Size, &d.RelatedSupplierID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return Document{}, err
	}
	return d, nil
}

func toPGDate(d Date) pgtype.Date {
	if d.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time, Valid: true}
}

func fromPGDate(d pgtype.Date) Date {
	if !d.Valid {
		return Date{}
	}
	return NewDate(d.Time)
}

func mapError(entity string, id int64, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", entity, id, httpx.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return fmt.Errorf("%s: referenced record does not exist: %w", entity, httpx.ErrValidation)
		case "23505":
			return fmt.Errorf("%s: %w", entity, httpx.ErrDuplicate)
		case "23514":
			return fmt.Errorf("%s: %s: %w", entity, pgErr.ConstraintName, httpx.ErrValidation)
		}
	}
	return fmt.Errorf("records: %s: %w", entity, err)
}
