package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bizzportal/bizzportal/internal/records"
)

const (
	trendWindowMonths  = 6
	projectionLookback = 3
)

// TrendPoint is one month of invoiced spend with its projection.
type TrendPoint struct {
	Month     string  `json:"month"`
	Period    string  `json:"period"`
	Actual    float64 `json:"actual"`
	Projected float64 `json:"projected"`
}

// MonthlyTrend buckets invoice amounts by issue month over the six months
// ending at now. Projected is the simple moving average of the three
// calendar months preceding each bucket. Invoices without an issue date
// are ignored.
func MonthlyTrend(invoices []records.Invoice, now time.Time) []TrendPoint {
	end := monthStart(now)
	from := end.AddDate(0, -(trendWindowMonths - 1), 0)
	lookbackFrom := from.AddDate(0, -projectionLookback, 0)

	buckets := make(map[string]decimal.Decimal)
	for _, inv := range invoices {
		if inv.IssueDate.IsZero() {
			continue
		}
		m := monthStart(inv.IssueDate.Time)
		if m.Before(lookbackFrom) || m.After(end) {
			continue
		}
		key := formatMonth(m)
		buckets[key] = buckets[key].Add(inv.Amount.Decimal())
	}

	months := enumerateMonths(from, end)
	out := make([]TrendPoint, 0, len(months))
	for _, m := range months {
		window := decimal.Zero
		for i := 1; i <= projectionLookback; i++ {
			window = window.Add(buckets[formatMonth(m.AddDate(0, -i, 0))])
		}
		out = append(out, TrendPoint{
			Month:     m.Format("Jan 2006"),
			Period:    formatMonth(m),
			Actual:    toFloat(buckets[formatMonth(m)]),
			Projected: toFloat(window.Div(decimal.NewFromInt(projectionLookback)).Round(2)),
		})
	}
	return out
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func enumerateMonths(from, to time.Time) []time.Time {
	if from.After(to) {
		return nil
	}
	var months []time.Time
	current := monthStart(from)
	end := monthStart(to)
	for !current.After(end) {
		months = append(months, current)
		current = current.AddDate(0, 1, 0)
	}
	return months
}

func formatMonth(t time.Time) string {
	return t.Format("2006-01")
}
