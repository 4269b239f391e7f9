package records

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bizzportal/bizzportal/internal/platform/httpx"
)

// MemoryRepository is an in-process Repository used for demos and tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	nextID    int64
	suppliers map[int64]Supplier
	budgets   map[int64]Budget
	invoices  map[int64]Invoice
	documents map[int64]Document
	now       func() time.Time
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		suppliers: make(map[int64]Supplier),
		budgets:   make(map[int64]Budget),
		invoices:  make(map[int64]Invoice),
		documents: make(map[int64]Document),
		now:       time.Now,
	}
}

func (m *MemoryRepository) id() int64 {
	m.nextID++
	return m.nextID
}

func sortedValues[T any](items map[int64]T) []T {
	keys := make([]int64, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, items[k])
	}
	return out
}

func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, httpx.ErrNotFound)
}

func (m *MemoryRepository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.suppliers), nil
}

func (m *MemoryRepository) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.suppliers[id]
	if !ok {
		return Supplier{}, notFound("supplier", id)
	}
	return s, nil
}

func (m *MemoryRepository) CreateSupplier(ctx context.Context, in SupplierInput) (Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	s := Supplier{ID: m.id(), Name: in.Name, Status: in.Status, Category: in.Category, Contact: in.Contact, CreatedAt: now, UpdatedAt: now}
	m.suppliers[s.ID] = s
	return s, nil
}

func (m *MemoryRepository) UpdateSupplier(ctx context.Context, id int64, in SupplierInput) (Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.suppliers[id]
	if !ok {
		return Supplier{}, notFound("supplier", id)
	}
	s.Name, s.Status, s.Category, s.Contact = in.Name, in.Status, in.Category, in.Contact
	s.UpdatedAt = m.now()
	m.suppliers[id] = s
	return s, nil
}

// DeleteSupplier cascades to invoices and detaches documents, like the
// foreign keys in the Postgres schema.
func (m *MemoryRepository) DeleteSupplier(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.suppliers[id]; !ok {
		return notFound("supplier", id)
	}
	delete(m.suppliers, id)
	for invID, inv := range m.invoices {
		if inv.SupplierID == id {
			delete(m.invoices, invID)
		}
	}
	for docID, doc := range m.documents {
		if doc.RelatedSupplierID != nil && *doc.RelatedSupplierID == id {
			doc.RelatedSupplierID = nil
			m.documents[docID] = doc
		}
	}
	return nil
}

func (m *MemoryRepository) ListBudgets(ctx context.Context) ([]Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.budgets), nil
}

func (m *MemoryRepository) GetBudget(ctx context.Context, id int64) (Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.budgets[id]
	if !ok {
		return Budget{}, notFound("budget", id)
	}
	return b, nil
}

func (m *MemoryRepository) CreateBudget(ctx context.Context, in BudgetInput) (Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	b := Budget{ID: m.id(), Name: in.Name, Department: in.Department, TotalAmount: in.TotalAmount, SpentAmount: in.SpentAmount, CreatedAt: now, UpdatedAt: now}
	m.budgets[b.ID] = b
	return b, nil
}

func (m *MemoryRepository) UpdateBudget(ctx context.Context, id int64, in BudgetInput) (Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[id]
	if !ok {
		return Budget{}, notFound("budget", id)
	}
	b.Name, b.Department, b.TotalAmount, b.SpentAmount = in.Name, in.Department, in.TotalAmount, in.SpentAmount
	b.UpdatedAt = m.now()
	m.budgets[id] = b
	return b, nil
}

func (m *MemoryRepository) DeleteBudget(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.budgets[id]; !ok {
		return notFound("budget", id)
	}
	delete(m.budgets, id)
	return nil
}

func (m *MemoryRepository) ListInvoices(ctx context.Context) ([]Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := sortedValues(m.invoices)
	for i := range items {
		items[i].SupplierName = m.suppliers[items[i].SupplierID].Name
	}
	return items, nil
}

func (m *MemoryRepository) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.invoices[id]
	if !ok {
		return Invoice{}, notFound("invoice", id)
	}
	inv.SupplierName = m.suppliers[inv.SupplierID].Name
	return inv, nil
}

func (m *MemoryRepository) CreateInvoice(ctx context.Context, in InvoiceInput) (Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	supplier, ok := m.suppliers[in.SupplierID]
	if !ok {
		return Invoice{}, fmt.Errorf("invoice: referenced record does not exist: %w", httpx.ErrValidation)
	}
	now := m.now()
	inv := Invoice{
		ID:         m.id(),
		SupplierID: in.SupplierID,
		Amount:     in.Amount,
		Status:     in.Status,
		IssueDate:  in.IssueDate,
		DueDate:    in.DueDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.invoices[inv.ID] = inv
	inv.SupplierName = supplier.Name
	return inv, nil
}

func (m *MemoryRepository) UpdateInvoice(ctx context.Context, id int64, in InvoiceInput) (Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return Invoice{}, notFound("invoice", id)
	}
	supplier, ok := m.suppliers[in.SupplierID]
	if !ok {
		return Invoice{}, fmt.Errorf("invoice: referenced record does not exist: %w", httpx.ErrValidation)
	}
	inv.SupplierID, inv.Amount, inv.Status = in.SupplierID, in.Amount, in.Status
	inv.IssueDate, inv.DueDate = in.IssueDate, in.DueDate
	inv.UpdatedAt = m.now()
	m.invoices[id] = inv
	inv.SupplierName = supplier.Name
	return inv, nil
}

func (m *MemoryRepository) DeleteInvoice(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invoices[id]; !ok {
		return notFound("invoice", id)
	}
	delete(m.invoices, id)
	return nil
}

func (m *MemoryRepository) ListDocuments(ctx context.Context) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.documents), nil
}

func (m *MemoryRepository) GetDocument(ctx context.Context, id int64) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.documents[id]
	if !ok {
		return Document{}, notFound("document", id)
	}
	return d, nil
}

func (m *MemoryRepository) CreateDocument(ctx context.Context, in DocumentInput) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkSupplierRef(in.RelatedSupplierID); err != nil {
		return Document{}, err
	}
	now := m.now()
	d := Document{ID: m.id(), Name: in.Name, UploadedBy: in.UploadedBy, Type: in.Type, Size: in.Size, RelatedSupplierID: in.RelatedSupplierID, CreatedAt: now, UpdatedAt: now}
	m.documents[d.ID] = d
	return d, nil
}

func (m *MemoryRepository) UpdateDocument(ctx context.Context, id int64, in DocumentInput) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[id]
	if !ok {
		return Document{}, notFound("document", id)
	}
	if err := m.checkSupplierRef(in.RelatedSupplierID); err != nil {
		return Document{}, err
	}
	d.Name, d.UploadedBy, d.Type, d.Size, d.RelatedSupplierID = in.Name, in.UploadedBy, in.Type, in.Size, in.RelatedSupplierID
	d.UpdatedAt = m.now()
	m.documents[id] = d
	return d, nil
}

// checkSupplierRef mirrors the documents.related_supplier_id foreign key.
// Callers hold m.mu.
func (m *MemoryRepository) checkSupplierRef(id *int64) error {
	if id == nil {
		return nil
	}
	if _, ok := m.suppliers[*id]; !ok {
		return fmt.Errorf("document: referenced record does not exist: %w", httpx.ErrValidation)
	}
	return nil
}

func (m *MemoryRepository) DeleteDocument(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return notFound("document", id)
	}
	delete(m.documents, id)
	return nil
}
