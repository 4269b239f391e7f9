package dashboard

import "fmt"

// Insight is a short observation generated from threshold checks.
type Insight struct {
	Title       string `json:"title"`
	Trend       Trend  `json:"trend"`
	Description string `json:"description"`
}

// BuildInsights emits insights in a fixed order and keeps the first
// th.MaxInsights. Utilization is only judged when a budget exists and the
// supplier ratio only when suppliers exist.
func BuildInsights(agg Aggregates, th Thresholds) []Insight {
	var out []Insight

	if agg.TotalBudget > 0 {
		switch {
		case agg.Utilization > th.UtilizationHigh:
			out = append(out, Insight{
				Title:       "Budget Alert",
				Trend:       TrendUp,
				Description: fmt.Sprintf("Budget utilization at %.1f%% - approaching limit", agg.Utilization),
			})
		case agg.Utilization < th.UtilizationLow:
			out = append(out, Insight{
				Title:       "Budget Alert",
				Trend:       TrendDown,
				Description: fmt.Sprintf("Budget utilization at %.1f%% - well below target", agg.Utilization),
			})
		}
	}

	// No suppliers means no activity rate to judge (DESIGN.md, open questions).
	if agg.SupplierCount > 0 && agg.ActiveSupplierRate < th.ActiveSupplierMin {
		out = append(out, Insight{
			Title:       "Supplier Activity",
			Trend:       TrendDown,
			Description: fmt.Sprintf("Only %.1f%% of suppliers are active", agg.ActiveSupplierRate),
		})
	}

	if agg.OverdueCount > 0 {
		out = append(out, Insight{
			Title:       "Payment Alert",
			Trend:       TrendUp,
			Description: fmt.Sprintf("%d invoices are overdue", agg.OverdueCount),
		})
	}

	out = append(out, Insight{
		Title:       "Document Activity",
		Trend:       TrendNeutral,
		Description: fmt.Sprintf("%d documents processed", agg.DocumentCount),
	})

	if th.MaxInsights > 0 && len(out) > th.MaxInsights {
		out = out[:th.MaxInsights]
	}
	return out
}
