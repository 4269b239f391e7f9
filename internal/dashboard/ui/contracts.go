package ui

import (
	"math"
	"sort"
	"time"

	"github.com/bizzportal/bizzportal/internal/dashboard"
	"github.com/bizzportal/bizzportal/internal/records"
)

// TopSupplierLimit caps the supplier slices shown on both pages.
const TopSupplierLimit = 5

// Point is one label/value pair of a pie or bar series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// LineSeries is an ordered actual/projected line chart.
type LineSeries struct {
	Labels    []string  `json:"labels"`
	Actual    []float64 `json:"actual"`
	Projected []float64 `json:"projected"`
}

// Card is a formatted summary tile.
type Card struct {
	Key   string  `json:"key"`
	Title string  `json:"title"`
	Value string  `json:"value"`
	Raw   float64 `json:"raw"`
	Delta string  `json:"delta,omitempty"`
	Trend string  `json:"trend,omitempty"`
}

// SupplierRow is one line of the supplier performance table.
type SupplierRow struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Status        string  `json:"status"`
	Score         int     `json:"score"`
	PaidPercent   string  `json:"paid_percent"`
	TotalInvoiced string  `json:"total_invoiced"`
	Progress      float64 `json:"progress"`
}

// KPIRow is a KPI with display strings and a clamped progress value.
type KPIRow struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Target   float64 `json:"target"`
	Actual   float64 `json:"actual"`
	Unit     string  `json:"unit"`
	Trend    string  `json:"trend"`
	Status   string  `json:"status"`
	Display  string  `json:"display"`
	Progress float64 `json:"progress"`
}

// InsightRow mirrors dashboard.Insight for the page.
type InsightRow struct {
	Title       string `json:"title"`
	Trend       string `json:"trend"`
	Description string `json:"description"`
}

// InvoiceRow is an overdue invoice line.
type InvoiceRow struct {
	ID          int64  `json:"id"`
	Supplier    string `json:"supplier"`
	Amount      string `json:"amount"`
	DueDate     string `json:"due_date"`
	DaysOverdue int    `json:"days_overdue"`
}

// DepartmentRow is one department bar with utilization.
type DepartmentRow struct {
	Department  string  `json:"department"`
	Allocated   float64 `json:"allocated"`
	Spent       float64 `json:"spent"`
	Utilization string  `json:"utilization"`
	Progress    float64 `json:"progress"`
}

// DashboardViewModel is the payload for the main dashboard page.
type DashboardViewModel struct {
	GeneratedAt      time.Time         `json:"generated_at"`
	Notice           *dashboard.Notice `json:"notice,omitempty"`
	Cards            []Card            `json:"cards"`
	BudgetAllocation []Point           `json:"budget_allocation"`
	InvoiceStatus    []Point           `json:"invoice_status"`
	SpendingTrend    LineSeries        `json:"spending_trend"`
	TopSuppliers     []SupplierRow     `json:"top_suppliers"`
	Insights         []InsightRow      `json:"insights"`
	OverdueInvoices  []InvoiceRow      `json:"overdue_invoices"`
	Utilization      float64           `json:"utilization"`
	UtilizationBar   float64           `json:"utilization_bar"`
}

// AnalyticsViewModel is the payload for the analytics page.
type AnalyticsViewModel struct {
	GeneratedAt         time.Time         `json:"generated_at"`
	Notice              *dashboard.Notice `json:"notice,omitempty"`
	Summary             []Card            `json:"summary"`
	KPIs                []KPIRow          `json:"kpis"`
	MonthlyTrend        LineSeries        `json:"monthly_trend"`
	Departments         []DepartmentRow   `json:"departments"`
	SupplierPerformance []Point           `json:"supplier_performance"`
	Suppliers           []SupplierRow     `json:"suppliers"`
	Insights            []InsightRow      `json:"insights"`
}

// BuildDashboard shapes a pipeline result into the dashboard view.
func BuildDashboard(res dashboard.Result) DashboardViewModel {
	agg := res.Aggregates
	return DashboardViewModel{
		GeneratedAt: res.GeneratedAt,
		Notice:      res.Notice,
		Cards: []Card{
			{Key: "total_budget", Title: "Total Budget", Value: FormatCurrency(agg.TotalBudget), Raw: agg.TotalBudget},
			{Key: "total_spent", Title: "Total Spent", Value: FormatCurrency(agg.TotalSpent), Raw: agg.TotalSpent, Delta: FormatPercent(agg.Utilization)},
			{Key: "remaining", Title: "Remaining", Value: FormatCurrency(agg.Remaining), Raw: agg.Remaining},
			{Key: "active_suppliers", Title: "Active Suppliers", Value: FormatCount(agg.ActiveSuppliers) + " / " + FormatCount(agg.SupplierCount), Raw: float64(agg.ActiveSuppliers), Delta: FormatPercent(agg.ActiveSupplierRate)},
			{Key: "overdue_invoices", Title: "Overdue Invoices", Value: FormatCount(agg.OverdueCount), Raw: float64(agg.OverdueCount), Trend: overdueTrend(agg.OverdueCount)},
			{Key: "documents", Title: "Documents", Value: FormatCount(agg.DocumentCount), Raw: float64(agg.DocumentCount)},
		},
		BudgetAllocation: ToAllocationPoints(agg.Allocation),
		InvoiceStatus:    ToStatusPoints(agg.Invoices),
		SpendingTrend:    ToLineSeries(agg.Trend),
		TopSuppliers:     ToSupplierRows(dashboard.TopSuppliers(agg.Suppliers, TopSupplierLimit)),
		Insights:         ToInsightRows(res.Insights),
		OverdueInvoices:  ToInvoiceRows(res.Overdue, res.GeneratedAt),
		Utilization:      agg.Utilization,
		UtilizationBar:   dashboard.ClampPercent(agg.Utilization),
	}
}

// BuildAnalytics shapes a pipeline result into the analytics view.
func BuildAnalytics(res dashboard.Result) AnalyticsViewModel {
	agg := res.Aggregates
	top := dashboard.TopSuppliers(agg.Suppliers, TopSupplierLimit)
	current, previous := lastTwo(agg.Trend)
	spendDelta := variancePercent(previous, current)
	return AnalyticsViewModel{
		GeneratedAt: res.GeneratedAt,
		Notice:      res.Notice,
		Summary: []Card{
			{Key: "total_revenue", Title: "Total Invoiced", Value: FormatCurrency(agg.TotalRevenue), Raw: agg.TotalRevenue},
			{Key: "monthly_spend", Title: "This Month", Value: FormatCurrency(current), Raw: current, Delta: FormatDelta(spendDelta), Trend: deltaTrend(spendDelta)},
			{Key: "profit_margin", Title: "Profit Margin", Value: FormatPercent(agg.ProfitMargin), Raw: agg.ProfitMargin},
			{Key: "on_time_rate", Title: "On-time Payments", Value: FormatPercent(agg.OnTimeRate), Raw: agg.OnTimeRate},
		},
		KPIs:                ToKPIRows(res.KPIs),
		MonthlyTrend:        ToLineSeries(agg.Trend),
		Departments:         ToDepartmentRows(agg.Departments),
		SupplierPerformance: ToScorePoints(top),
		Suppliers:           ToSupplierRows(top),
		Insights:            ToInsightRows(res.Insights),
	}
}

// ToAllocationPoints converts the allocation mapping into pie slices.
func ToAllocationPoints(alloc []dashboard.Allocation) []Point {
	out := make([]Point, 0, len(alloc))
	for _, a := range alloc {
		out = append(out, Point{Label: a.Name, Value: a.Amount})
	}
	return out
}

// ToStatusPoints converts the invoice breakdown into pie slices.
func ToStatusPoints(b dashboard.StatusBreakdown) []Point {
	return []Point{
		{Label: Label(string(records.InvoicePaid)), Value: float64(b.PaidCount)},
		{Label: Label(string(records.InvoiceUnpaid)), Value: float64(b.UnpaidCount)},
		{Label: Label(string(records.InvoiceOverdue)), Value: float64(b.OverdueCount)},
	}
}

// ToLineSeries splits trend points into parallel label/value slices.
func ToLineSeries(points []dashboard.TrendPoint) LineSeries {
	series := LineSeries{
		Labels:    make([]string, 0, len(points)),
		Actual:    make([]float64, 0, len(points)),
		Projected: make([]float64, 0, len(points)),
	}
	for _, p := range points {
		series.Labels = append(series.Labels, p.Month)
		series.Actual = append(series.Actual, p.Actual)
		series.Projected = append(series.Projected, p.Projected)
	}
	return series
}

// ToSupplierRows converts supplier scores into table rows.
func ToSupplierRows(scores []dashboard.SupplierScore) []SupplierRow {
	out := make([]SupplierRow, 0, len(scores))
	for _, s := range scores {
		status := records.SupplierInactive
		if s.Active {
			status = records.SupplierActive
		}
		out = append(out, SupplierRow{
			ID:            s.SupplierID,
			Name:          s.Name,
			Category:      Label(s.Category),
			Status:        Label(string(status)),
			Score:         s.Score,
			PaidPercent:   FormatPercent(s.PaidPercent),
			TotalInvoiced: FormatCurrency(s.TotalInvoiced),
			Progress:      dashboard.ClampPercent(float64(s.Score)),
		})
	}
	return out
}

// ToScorePoints converts supplier scores into a bar series.
func ToScorePoints(scores []dashboard.SupplierScore) []Point {
	out := make([]Point, 0, len(scores))
	for _, s := range scores {
		out = append(out, Point{Label: s.Name, Value: float64(s.Score)})
	}
	return out
}

// ToKPIRows formats KPIs and clamps progress for display only.
func ToKPIRows(kpis []dashboard.KPI) []KPIRow {
	out := make([]KPIRow, 0, len(kpis))
	for _, k := range kpis {
		out = append(out, KPIRow{
			Key:      k.Key,
			Name:     k.Name,
			Target:   k.Target,
			Actual:   k.Actual,
			Unit:     k.Unit,
			Trend:    string(k.Trend),
			Status:   string(k.Status),
			Display:  FormatPercent(k.Actual),
			Progress: dashboard.ClampPercent(k.Actual),
		})
	}
	return out
}

// ToInsightRows copies insights into view rows.
func ToInsightRows(insights []dashboard.Insight) []InsightRow {
	out := make([]InsightRow, 0, len(insights))
	for _, in := range insights {
		out = append(out, InsightRow{Title: in.Title, Trend: string(in.Trend), Description: in.Description})
	}
	return out
}

// ToInvoiceRows converts overdue invoices into table rows, most overdue first.
func ToInvoiceRows(invoices []records.Invoice, now time.Time) []InvoiceRow {
	out := make([]InvoiceRow, 0, len(invoices))
	today := records.NewDate(now).Time
	for _, inv := range invoices {
		days := 0
		if !inv.DueDate.IsZero() {
			days = int(today.Sub(inv.DueDate.Time).Hours() / 24)
		}
		out = append(out, InvoiceRow{
			ID:          inv.ID,
			Supplier:    inv.SupplierName,
			Amount:      FormatAmount(inv.Amount.Float64()),
			DueDate:     inv.DueDate.String(),
			DaysOverdue: days,
		})
	}
	sortByDaysOverdue(out)
	return out
}

// ToDepartmentRows formats department utilization bars.
func ToDepartmentRows(depts []dashboard.DepartmentSpend) []DepartmentRow {
	out := make([]DepartmentRow, 0, len(depts))
	for _, d := range depts {
		out = append(out, DepartmentRow{
			Department:  Label(d.Department),
			Allocated:   d.Allocated,
			Spent:       d.Spent,
			Utilization: FormatPercent(d.Utilization),
			Progress:    dashboard.ClampPercent(d.Utilization),
		})
	}
	return out
}

func lastTwo(points []dashboard.TrendPoint) (current, previous float64) {
	n := len(points)
	if n > 0 {
		current = points[n-1].Actual
	}
	if n > 1 {
		previous = points[n-2].Actual
	}
	return current, previous
}

func variancePercent(base, current float64) float64 {
	if math.Abs(base) < 0.0001 {
		return 0
	}
	return (current - base) / math.Abs(base) * 100
}

func deltaTrend(delta float64) string {
	switch {
	case delta > 0:
		return string(dashboard.TrendUp)
	case delta < 0:
		return string(dashboard.TrendDown)
	default:
		return string(dashboard.TrendNeutral)
	}
}

func overdueTrend(n int) string {
	if n > 0 {
		return string(dashboard.TrendUp)
	}
	return string(dashboard.TrendNeutral)
}

func sortByDaysOverdue(rows []InvoiceRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].DaysOverdue > rows[j].DaysOverdue })
}
