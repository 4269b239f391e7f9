package records

import "time"

// SupplierStatus enumerates supplier lifecycle states.
type SupplierStatus string

const (
	SupplierActive   SupplierStatus = "active"
	SupplierInactive SupplierStatus = "inactive"
)

// InvoiceStatus enumerates stored invoice states. The stored "overdue"
// value is informational; overdue-ness is always recomputed from due dates.
type InvoiceStatus string

const (
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceUnpaid  InvoiceStatus = "unpaid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// Supplier is a vendor the business buys from.
type Supplier struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Status    SupplierStatus `json:"status"`
	Category  string         `json:"category"`
	Contact   string         `json:"contact"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// IsActive reports whether the supplier is active.
func (s Supplier) IsActive() bool {
	return s.Status == SupplierActive
}

// Budget is a departmental allocation.
type Budget struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Department  string    `json:"department"`
	TotalAmount Amount    `json:"total_amount"`
	SpentAmount Amount    `json:"spent_amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Invoice is a supplier bill.
type Invoice struct {
	ID           int64         `json:"id"`
	SupplierID   int64         `json:"supplier_id"`
	SupplierName string        `json:"supplier_name"`
	Amount       Amount        `json:"amount"`
	Status       InvoiceStatus `json:"status"`
	IssueDate    Date          `json:"issue_date"`
	DueDate      Date          `json:"due_date"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsPaid reports whether the invoice has been settled.
func (i Invoice) IsPaid() bool {
	return i.Status == InvoicePaid
}

// Document is uploaded file metadata.
type Document struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	UploadedBy        string    `json:"uploaded_by"`
	Type              string    `json:"type"`
	Size              int64     `json:"size"`
	RelatedSupplierID *int64    `json:"related_supplier_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Collections is one consistent snapshot of all four record sets.
type Collections struct {
	Suppliers []Supplier `json:"suppliers"`
	Budgets   []Budget   `json:"budgets"`
	Invoices  []Invoice  `json:"invoices"`
	Documents []Document `json:"documents"`
}

// SupplierInput carries create/update fields for suppliers.
type SupplierInput struct {
	Name     string         `json:"name" validate:"required,max=200"`
	Status   SupplierStatus `json:"status" validate:"required,oneof=active inactive"`
	Category string         `json:"category" validate:"max=100"`
	Contact  string         `json:"contact" validate:"max=200"`
}

// BudgetInput carries create/update fields for budgets.
type BudgetInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Department  string `json:"department" validate:"required,max=100"`
	TotalAmount Amount `json:"total_amount"`
	SpentAmount Amount `json:"spent_amount"`
}

// InvoiceInput carries create/update fields for invoices.
type InvoiceInput struct {
	SupplierID int64         `json:"supplier_id" validate:"required,gt=0"`
	Amount     Amount        `json:"amount"`
	Status     InvoiceStatus `json:"status" validate:"required,oneof=paid unpaid overdue"`
	IssueDate  Date          `json:"issue_date"`
	DueDate    Date          `json:"due_date"`
}

// DocumentInput carries create/update fields for documents.
type DocumentInput struct {
	Name              string `json:"name" validate:"required,max=255"`
	UploadedBy        string `json:"uploaded_by" validate:"required,max=200"`
	Type              string `json:"type" validate:"required,max=50"`
	Size              int64  `json:"size" validate:"gte=0"`
	RelatedSupplierID *int64 `json:"related_supplier_id" validate:"omitempty,gt=0"`
}
