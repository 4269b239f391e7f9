package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/bizzportal/bizzportal/internal/dashboard"
	"github.com/bizzportal/bizzportal/internal/records"
)

func TestWriteSummaryCSV(t *testing.T) {
	agg := dashboard.Aggregates{TotalBudget: 1000, TotalSpent: 950.5, OverdueCount: 2}
	buf := &bytes.Buffer{}
	if err := WriteSummaryCSV(buf, agg, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("summary csv error: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("csv read error: %v", err)
	}
	if len(rows) < 5 {
		t.Fatalf("expected data rows, got %d", len(rows))
	}
	if rows[2][0] != "Total Budget" || rows[2][1] != "1000.00" {
		t.Fatalf("unexpected budget row %v", rows[2])
	}
	if rows[3][1] != "950.50" {
		t.Fatalf("unexpected spent row %v", rows[3])
	}
}

func TestWriteDashboardCSVSections(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := dashboard.NewService(nil, dashboard.DefaultThresholds(), nil).WithNow(func() time.Time { return now })
	res := svc.Evaluate(records.Collections{
		Suppliers: []records.Supplier{
			{ID: 1, Name: "Acme", Status: records.SupplierActive},
			{ID: 2, Name: "Globex, Inc", Status: records.SupplierInactive},
		},
		Budgets: []records.Budget{{Name: "Ops", Department: "IT", TotalAmount: records.ParseAmount("1000"), SpentAmount: records.ParseAmount("500")}},
	})

	buf := &bytes.Buffer{}
	if err := WriteDashboardCSV(buf, res); err != nil {
		t.Fatalf("dashboard csv error: %v", err)
	}
	sections := strings.Split(strings.TrimSpace(buf.String()), "\n\n")
	if len(sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(sections))
	}
	if !strings.HasPrefix(sections[1], "KPI,Target,Actual") {
		t.Fatalf("unexpected kpi header %q", sections[1])
	}
	if lines := strings.Split(sections[2], "\n"); len(lines) != 7 {
		t.Fatalf("expected 6 trend rows plus header, got %d", len(lines))
	}
	if !strings.Contains(sections[3], `"Globex, Inc"`) {
		t.Fatalf("supplier name not quoted: %q", sections[3])
	}
}
