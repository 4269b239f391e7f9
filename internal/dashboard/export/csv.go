package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/bizzportal/bizzportal/internal/dashboard"
)

// WriteSummaryCSV serialises the headline aggregates to CSV.
func WriteSummaryCSV(w io.Writer, agg dashboard.Aggregates, generatedAt time.Time) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Generated At", generatedAt.UTC().Format(time.RFC3339)},
		{"Total Budget", formatFloat(agg.TotalBudget)},
		{"Total Spent", formatFloat(agg.TotalSpent)},
		{"Remaining", formatFloat(agg.Remaining)},
		{"Budget Utilization %", formatFloat(agg.Utilization)},
		{"Total Invoiced", formatFloat(agg.TotalRevenue)},
		{"Profit Margin %", formatFloat(agg.ProfitMargin)},
		{"Suppliers", strconv.Itoa(agg.SupplierCount)},
		{"Active Suppliers", strconv.Itoa(agg.ActiveSuppliers)},
		{"Invoices", strconv.Itoa(agg.InvoiceCount)},
		{"Overdue Invoices", strconv.Itoa(agg.OverdueCount)},
		{"Documents", strconv.Itoa(agg.DocumentCount)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteKPICSV emits each KPI with its target and classification.
func WriteKPICSV(w io.Writer, kpis []dashboard.KPI) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"KPI", "Target", "Actual", "Unit", "Status", "Trend"}); err != nil {
		return err
	}
	for _, k := range kpis {
		if err := writer.Write([]string{
			k.Name,
			formatFloat(k.Target),
			formatFloat(k.Actual),
			k.Unit,
			string(k.Status),
			string(k.Trend),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTrendCSV emits monthly invoiced spend with its projection.
func WriteTrendCSV(w io.Writer, points []dashboard.TrendPoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Period", "Actual", "Projected"}); err != nil {
		return err
	}
	for _, point := range points {
		if err := writer.Write([]string{
			point.Period,
			formatFloat(point.Actual),
			formatFloat(point.Projected),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSupplierCSV prints supplier scores to CSV.
func WriteSupplierCSV(w io.Writer, scores []dashboard.SupplierScore) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Supplier", "Category", "Active", "Invoices", "Paid %", "Score"}); err != nil {
		return err
	}
	for _, s := range scores {
		if err := writer.Write([]string{
			s.Name,
			s.Category,
			strconv.FormatBool(s.Active),
			strconv.Itoa(s.InvoiceCount),
			formatFloat(s.PaidPercent),
			strconv.Itoa(s.Score),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDashboardCSV writes every section separated by a blank line.
func WriteDashboardCSV(w io.Writer, res dashboard.Result) error {
	sections := []func(io.Writer) error{
		func(w io.Writer) error { return WriteSummaryCSV(w, res.Aggregates, res.GeneratedAt) },
		func(w io.Writer) error { return WriteKPICSV(w, res.KPIs) },
		func(w io.Writer) error { return WriteTrendCSV(w, res.Aggregates.Trend) },
		func(w io.Writer) error { return WriteSupplierCSV(w, dashboard.TopSuppliers(res.Aggregates.Suppliers, -1)) },
	}
	for i, section := range sections {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := section(w); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
