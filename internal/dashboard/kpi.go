package dashboard

// Status is the categorical health of a KPI.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusDanger  Status = "danger"
)

// Trend is the direction label attached to insights and KPIs.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// Band classifies a value into success, warning or danger. For
// higher-is-better bands a value must exceed the bound; for lower-is-better
// bands it must stay under it.
type Band struct {
	Success        float64 `json:"success"`
	Warning        float64 `json:"warning"`
	HigherIsBetter bool    `json:"higher_is_better"`
}

// Classify maps v to a status.
func (b Band) Classify(v float64) Status {
	if b.HigherIsBetter {
		switch {
		case v > b.Success:
			return StatusSuccess
		case v > b.Warning:
			return StatusWarning
		default:
			return StatusDanger
		}
	}
	switch {
	case v < b.Success:
		return StatusSuccess
	case v < b.Warning:
		return StatusWarning
	default:
		return StatusDanger
	}
}

// KPI is a named target/actual pair with its derived labels.
type KPI struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Target      float64 `json:"target"`
	Actual      float64 `json:"actual"`
	Unit        string  `json:"unit"`
	Trend       Trend   `json:"trend"`
	Status      Status  `json:"status"`
	Achievement float64 `json:"achievement"`
}

// KPISpec configures one KPI.
type KPISpec struct {
	Name   string  `json:"name"`
	Target float64 `json:"target"`
	Band   Band    `json:"band"`
}

// BuildKPIs evaluates every configured KPI against the aggregates.
func BuildKPIs(agg Aggregates, th Thresholds) []KPI {
	defs := []struct {
		key    string
		spec   KPISpec
		actual float64
	}{
		{"profit_margin", th.ProfitMargin, agg.ProfitMargin},
		{"budget_utilization", th.BudgetUtilization, agg.Utilization},
		{"on_time_payment", th.OnTimePayment, agg.OnTimeRate},
		{"active_suppliers", th.ActiveSuppliers, agg.ActiveSupplierRate},
	}
	out := make([]KPI, 0, len(defs))
	for _, d := range defs {
		out = append(out, KPI{
			Key:         d.key,
			Name:        d.spec.Name,
			Target:      d.spec.Target,
			Actual:      d.actual,
			Unit:        "%",
			Trend:       kpiTrend(d.actual, d.spec.Target, d.spec.Band.HigherIsBetter),
			Status:      d.spec.Band.Classify(d.actual),
			Achievement: KPIActualVsTarget(d.actual, d.spec.Target, d.spec.Band.HigherIsBetter),
		})
	}
	return out
}

// kpiTrend points up when the KPI beats its target in its good direction.
func kpiTrend(actual, target float64, higherIsBetter bool) Trend {
	if almostZero(actual - target) {
		return TrendNeutral
	}
	if (actual > target) == higherIsBetter {
		return TrendUp
	}
	return TrendDown
}
