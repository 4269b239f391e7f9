package dashboard

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bizzportal/bizzportal/internal/records"
)

// SupplierScore is a supplier's deterministic performance score.
type SupplierScore struct {
	SupplierID    int64   `json:"supplier_id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Active        bool    `json:"active"`
	InvoiceCount  int     `json:"invoice_count"`
	PaidCount     int     `json:"paid_count"`
	PaidPercent   float64 `json:"paid_percent"`
	TotalInvoiced float64 `json:"total_invoiced"`
	Score         int     `json:"score"`
}

// Allocation is a named slice of the budget total.
type Allocation struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// DepartmentSpend groups budgets by department.
type DepartmentSpend struct {
	Department  string  `json:"department"`
	Allocated   float64 `json:"allocated"`
	Spent       float64 `json:"spent"`
	Utilization float64 `json:"utilization"`
}

// StatusBreakdown counts invoices by their effective status.
type StatusBreakdown struct {
	PaidCount     int     `json:"paid_count"`
	PaidAmount    float64 `json:"paid_amount"`
	UnpaidCount   int     `json:"unpaid_count"`
	UnpaidAmount  float64 `json:"unpaid_amount"`
	OverdueCount  int     `json:"overdue_count"`
	OverdueAmount float64 `json:"overdue_amount"`
}

// Aggregates is every scalar and grouped value derived from one snapshot.
type Aggregates struct {
	TotalBudget        float64           `json:"total_budget"`
	TotalSpent         float64           `json:"total_spent"`
	Remaining          float64           `json:"remaining"`
	Utilization        float64           `json:"utilization"`
	TotalRevenue       float64           `json:"total_revenue"`
	ProfitMargin       float64           `json:"profit_margin"`
	SupplierCount      int               `json:"supplier_count"`
	ActiveSuppliers    int               `json:"active_suppliers"`
	ActiveSupplierRate float64           `json:"active_supplier_rate"`
	InvoiceCount       int               `json:"invoice_count"`
	OverdueCount       int               `json:"overdue_count"`
	OnTimeRate         float64           `json:"on_time_rate"`
	DocumentCount      int               `json:"document_count"`
	Invoices           StatusBreakdown   `json:"invoices"`
	Suppliers          []SupplierScore   `json:"suppliers"`
	Allocation         []Allocation      `json:"allocation"`
	Departments        []DepartmentSpend `json:"departments"`
	Trend              []TrendPoint      `json:"trend"`
}

const epsilon = 0.0001

func almostZero(v float64) bool {
	return math.Abs(v) < epsilon
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// TotalBudget sums total_amount across budgets.
func TotalBudget(budgets []records.Budget) float64 {
	total := decimal.Zero
	for _, b := range budgets {
		total = total.Add(b.TotalAmount.Decimal())
	}
	return toFloat(total)
}

// TotalSpent sums spent_amount across budgets.
func TotalSpent(budgets []records.Budget) float64 {
	total := decimal.Zero
	for _, b := range budgets {
		total = total.Add(b.SpentAmount.Decimal())
	}
	return toFloat(total)
}

// TotalRevenue sums invoice amounts.
func TotalRevenue(invoices []records.Invoice) float64 {
	total := decimal.Zero
	for _, inv := range invoices {
		total = total.Add(inv.Amount.Decimal())
	}
	return toFloat(total)
}

// Percent returns num/den*100, or 0 when den is zero or the result is not finite.
func Percent(num, den float64) float64 {
	if almostZero(den) {
		return 0
	}
	v := num / den * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// ClampPercent bounds a percentage to [0, 100] for display.
func ClampPercent(v float64) float64 {
	return Clamp(v, 0, 100)
}

// Utilization is spent/total*100. It is not clamped.
func Utilization(budgets []records.Budget) float64 {
	return Percent(TotalSpent(budgets), TotalBudget(budgets))
}

// IsOverdue reports whether an unpaid invoice's due date has passed as of
// now. Due dates are calendar days: an invoice due today is not overdue.
func IsOverdue(inv records.Invoice, now time.Time) bool {
	if inv.IsPaid() || inv.DueDate.IsZero() {
		return false
	}
	return inv.DueDate.Before(records.NewDate(now).Time)
}

// OverdueInvoices returns invoices overdue as of now.
func OverdueInvoices(invoices []records.Invoice, now time.Time) []records.Invoice {
	out := make([]records.Invoice, 0)
	for _, inv := range invoices {
		if IsOverdue(inv, now) {
			out = append(out, inv)
		}
	}
	return out
}

// OverdueCount counts invoices overdue as of now.
func OverdueCount(invoices []records.Invoice, now time.Time) int {
	n := 0
	for _, inv := range invoices {
		if IsOverdue(inv, now) {
			n++
		}
	}
	return n
}

// ActiveSupplierRate is the percentage of suppliers with active status.
func ActiveSupplierRate(suppliers []records.Supplier) float64 {
	return Percent(float64(countActive(suppliers)), float64(len(suppliers)))
}

func countActive(suppliers []records.Supplier) int {
	n := 0
	for _, s := range suppliers {
		if s.IsActive() {
			n++
		}
	}
	return n
}

// SupplierPerformance scores each supplier from its status and the share of
// its invoices that are paid. Invoices are matched by supplier ID.
func SupplierPerformance(suppliers []records.Supplier, invoices []records.Invoice) []SupplierScore {
	type tally struct {
		count, paid int
		amount      decimal.Decimal
	}
	bySupplier := make(map[int64]*tally, len(suppliers))
	for _, inv := range invoices {
		t, ok := bySupplier[inv.SupplierID]
		if !ok {
			t = &tally{amount: decimal.Zero}
			bySupplier[inv.SupplierID] = t
		}
		t.count++
		if inv.IsPaid() {
			t.paid++
		}
		t.amount = t.amount.Add(inv.Amount.Decimal())
	}

	out := make([]SupplierScore, 0, len(suppliers))
	for _, s := range suppliers {
		score := SupplierScore{
			SupplierID: s.ID,
			Name:       s.Name,
			Category:   s.Category,
			Active:     s.IsActive(),
		}
		if t, ok := bySupplier[s.ID]; ok {
			score.InvoiceCount = t.count
			score.PaidCount = t.paid
			score.TotalInvoiced = toFloat(t.amount)
		}
		score.PaidPercent = Percent(float64(score.PaidCount), float64(score.InvoiceCount))
		score.Score = performanceScore(score.Active, score.PaidPercent)
		out = append(out, score)
	}
	return out
}

func performanceScore(active bool, paidPercent float64) int {
	base := 40.0
	if active {
		base = 80.0
	}
	v := math.Min(100, base+0.2*ClampPercent(paidPercent))
	return int(math.Round(Clamp(v, 0, 100)))
}

// TopSuppliers orders scores by score desc then name and keeps at most n.
func TopSuppliers(scores []SupplierScore, n int) []SupplierScore {
	sorted := append([]SupplierScore(nil), scores...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Name < sorted[j].Name
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// BudgetAllocation groups total_amount by budget name in first-seen order.
func BudgetAllocation(budgets []records.Budget) []Allocation {
	index := make(map[string]int)
	sums := make([]decimal.Decimal, 0)
	out := make([]Allocation, 0)
	for _, b := range budgets {
		i, ok := index[b.Name]
		if !ok {
			i = len(out)
			index[b.Name] = i
			out = append(out, Allocation{Name: b.Name})
			sums = append(sums, decimal.Zero)
		}
		sums[i] = sums[i].Add(b.TotalAmount.Decimal())
	}
	for i := range out {
		out[i].Amount = toFloat(sums[i])
	}
	return out
}

// DepartmentBreakdown groups allocation and spend by department, ordered by name.
func DepartmentBreakdown(budgets []records.Budget) []DepartmentSpend {
	type sums struct{ allocated, spent decimal.Decimal }
	byDept := make(map[string]*sums)
	for _, b := range budgets {
		s, ok := byDept[b.Department]
		if !ok {
			s = &sums{allocated: decimal.Zero, spent: decimal.Zero}
			byDept[b.Department] = s
		}
		s.allocated = s.allocated.Add(b.TotalAmount.Decimal())
		s.spent = s.spent.Add(b.SpentAmount.Decimal())
	}
	out := make([]DepartmentSpend, 0, len(byDept))
	for dept, s := range byDept {
		allocated, spent := toFloat(s.allocated), toFloat(s.spent)
		out = append(out, DepartmentSpend{
			Department:  dept,
			Allocated:   allocated,
			Spent:       spent,
			Utilization: Percent(spent, allocated),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

// InvoiceStatusBreakdown splits invoices into paid, unpaid and overdue as of now.
func InvoiceStatusBreakdown(invoices []records.Invoice, now time.Time) StatusBreakdown {
	var out StatusBreakdown
	paid, unpaid, overdue := decimal.Zero, decimal.Zero, decimal.Zero
	for _, inv := range invoices {
		amount := inv.Amount.Decimal()
		switch {
		case inv.IsPaid():
			out.PaidCount++
			paid = paid.Add(amount)
		case IsOverdue(inv, now):
			out.OverdueCount++
			overdue = overdue.Add(amount)
		default:
			out.UnpaidCount++
			unpaid = unpaid.Add(amount)
		}
	}
	out.PaidAmount = toFloat(paid)
	out.UnpaidAmount = toFloat(unpaid)
	out.OverdueAmount = toFloat(overdue)
	return out
}

// KPIActualVsTarget returns how much of the target was achieved, 0..100.
// For lower-is-better metrics an actual at or under target scores 100 and
// the score decays linearly with the relative overshoot.
func KPIActualVsTarget(actual, target float64, higherIsBetter bool) float64 {
	if almostZero(target) {
		if !higherIsBetter && actual <= 0 {
			return 100
		}
		return 0
	}
	if higherIsBetter {
		return ClampPercent(actual / target * 100)
	}
	if actual <= target {
		return 100
	}
	return ClampPercent(100 - (actual-target)/target*100)
}

// Aggregate computes every derived value for one snapshot as of now.
func Aggregate(c records.Collections, now time.Time) Aggregates {
	totalBudget := TotalBudget(c.Budgets)
	totalSpent := TotalSpent(c.Budgets)
	revenue := TotalRevenue(c.Invoices)
	overdue := OverdueCount(c.Invoices, now)
	active := countActive(c.Suppliers)

	return Aggregates{
		TotalBudget:        totalBudget,
		TotalSpent:         totalSpent,
		Remaining:          totalBudget - totalSpent,
		Utilization:        Percent(totalSpent, totalBudget),
		TotalRevenue:       revenue,
		ProfitMargin:       Percent(revenue-totalSpent, revenue),
		SupplierCount:      len(c.Suppliers),
		ActiveSuppliers:    active,
		ActiveSupplierRate: Percent(float64(active), float64(len(c.Suppliers))),
		InvoiceCount:       len(c.Invoices),
		OverdueCount:       overdue,
		OnTimeRate:         Percent(float64(len(c.Invoices)-overdue), float64(len(c.Invoices))),
		DocumentCount:      len(c.Documents),
		Invoices:           InvoiceStatusBreakdown(c.Invoices, now),
		Suppliers:          SupplierPerformance(c.Suppliers, c.Invoices),
		Allocation:         BudgetAllocation(c.Budgets),
		Departments:        DepartmentBreakdown(c.Budgets),
		Trend:              MonthlyTrend(c.Invoices, now),
	}
}
