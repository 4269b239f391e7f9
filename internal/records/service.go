package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bizzportal/bizzportal/internal/platform/httpx"
)

// Invalidator is notified after every successful write so cached
// snapshots of the record collections are discarded.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Invalidators fans a bump out to several invalidators in order and returns
// the first error after trying all of them.
type Invalidators []Invalidator

// Bump implements Invalidator.
func (list Invalidators) Bump(ctx context.Context) error {
	var first error
	for _, inv := range list {
		if inv == nil {
			continue
		}
		if err := inv.Bump(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Service applies validation on top of the repository.
type Service struct {
	repo        Repository
	invalidator Invalidator
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewService constructs a records service. invalidator may be nil.
func NewService(repo Repository, invalidator Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, invalidator: invalidator, validate: newValidator(), logger: logger}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Repository exposes the underlying store for read-only consumers.
func (s *Service) Repository() Repository {
	return s.repo
}

func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

func (s *Service) CreateSupplier(ctx context.Context, in SupplierInput) (Supplier, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return Supplier{}, err
	}
	out, err := s.repo.CreateSupplier(ctx, in)
	return out, s.afterWrite(ctx, err)
}

func (s *Service) UpdateSupplier(ctx context.Context, id int64, in SupplierInput) (Supplier, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return Supplier{}, err
	}
	out, err := s.repo.UpdateSupplier(ctx, id, in)
	return out, s.afterWrite(ctx, err)
}

func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	return s.afterWrite(ctx, s.repo.DeleteSupplier(ctx, id))
}

func (s *Service) ListBudgets(ctx context.Context) ([]Budget, error) {
	return s.repo.ListBudgets(ctx)
}

func (s *Service) GetBudget(ctx context.Context, id int64) (Budget, error) {
	return s.repo.GetBudget(ctx, id)
}

func (s *Service) CreateBudget(ctx context.Context, in BudgetInput) (Budget, error) {
	if err := s.checkBudget(in); err != nil {
		return Budget{}, err
	}
	out, err := s.repo.CreateBudget(ctx, in)
	return out, s.afterWrite(ctx, err)
}

func (s *Service) UpdateBudget(ctx context.Context, id int64, in BudgetInput) (Budget, error) {
	if err := s.checkBudget(in); err != nil {
		return Budget{}, err
	}
	out, err := s.repo.UpdateBudget(ctx, id, in)
	return out, s.afterWrite(ctx, err)
}

func (s *Service) DeleteBudget(ctx context.Context, id int64) error {
	return s.afterWrite(ctx, s.repo.DeleteBudget(ctx, id))
}

func (s *Service) ListInvoices(ctx context.Context) ([]Invoice, error) {
	return s.repo.ListInvoices(ctx)
}

func (s *Service) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) CreateInvoice(ctx context.Context, in InvoiceInput) (Invoice, error) {
	if err := s.checkInvoice(in); err != nil {
		return Invoice{}, err
	}
	out, err := s.repo.CreateInvoice(ctx, in)
	return out, s.afterWrite(ctx, err)
}

func (s *Service) UpdateInvoice(ctx context.Context, id int64, in InvoiceInput) (Invoice, error) {
	if err := s.checkInvoice(in); err != nil {
		return Invoice{}, err
	}
	out, err := s.repo.UpdateInvoice(ctx, id, in)
	return out, s.afterWrite(ctx, err)
}

func (s *Service) DeleteInvoice(ctx context.Context, id int64) error {
	return s.afterWrite(ctx, s.repo.DeleteInvoice(ctx, id))
}

func (s *Service) ListDocuments(ctx context.Context) ([]Document, error) {
	return s.repo.ListDocuments(ctx)
}

func (s *Service) GetDocument(ctx context.Context, id int64) (Document, error) {
	return s.repo.GetDocument(ctx, id)
}

func (s *Service) CreateDocument(ctx context.Context, in DocumentInput) (Document, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return Document{}, err
	}
	out, err := s.repo.CreateDocument(ctx, in)
	return out, s.afterWrite(ctx, err)
}

func (s *Service) UpdateDocument(ctx context.Context, id int64, in DocumentInput) (Document, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return Document{}, err
	}
	out, err := s.repo.UpdateDocument(ctx, id, in)
	return out, s.afterWrite(ctx, err)
}

func (s *Service) DeleteDocument(ctx context.Context, id int64) error {
	return s.afterWrite(ctx, s.repo.DeleteDocument(ctx, id))
}

func (s *Service) checkBudget(in BudgetInput) error {
	if err := s.check(in); err != nil {
		return err
	}
	if !in.TotalAmount.Valid() {
		return fmt.Errorf("total_amount must be a non-negative number: %w", httpx.ErrValidation)
	}
	if !in.SpentAmount.Valid() {
		return fmt.Errorf("spent_amount must be a non-negative number: %w", httpx.ErrValidation)
	}
	return nil
}

func (s *Service) checkInvoice(in InvoiceInput) error {
	if err := s.check(in); err != nil {
		return err
	}
	if !in.Amount.Valid() {
		return fmt.Errorf("amount must be a non-negative number: %w", httpx.ErrValidation)
	}
	if !in.IssueDate.IsZero() && !in.DueDate.IsZero() && in.DueDate.Before(in.IssueDate.Time) {
		return fmt.Errorf("due_date precedes issue_date: %w", httpx.ErrValidation)
	}
	return nil
}

func (s *Service) check(in any) error {
	if err := s.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%s failed %s: %w", fe.Field(), fe.Tag(), httpx.ErrValidation)
		}
		return fmt.Errorf("%v: %w", err, httpx.ErrValidation)
	}
	return nil
}

// afterWrite bumps the snapshot version once the write has succeeded.
// A failed bump is logged; the write itself already happened.
func (s *Service) afterWrite(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	if s.invalidator == nil {
		return nil
	}
	if bumpErr := s.invalidator.Bump(ctx); bumpErr != nil {
		s.logger.Warn("invalidate record cache", slog.Any("error", bumpErr))
	}
	return nil
}
