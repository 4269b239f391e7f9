package dashboard

// Thresholds holds every cut-off the classifier uses.
type Thresholds struct {
	UtilizationHigh   float64
	UtilizationLow    float64
	ActiveSupplierMin float64
	MaxInsights       int

	ProfitMargin      KPISpec
	BudgetUtilization KPISpec
	OnTimePayment     KPISpec
	ActiveSuppliers   KPISpec
}

// DefaultThresholds returns the stock classifier configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		UtilizationHigh:   90,
		UtilizationLow:    50,
		ActiveSupplierMin: 80,
		MaxInsights:       4,
		ProfitMargin: KPISpec{
			Name:   "Profit Margin",
			Target: 20,
			Band:   Band{Success: 20, Warning: 10, HigherIsBetter: true},
		},
		BudgetUtilization: KPISpec{
			Name:   "Budget Utilization",
			Target: 90,
			Band:   Band{Success: 90, Warning: 95},
		},
		OnTimePayment: KPISpec{
			Name:   "On-time Payment Rate",
			Target: 90,
			Band:   Band{Success: 90, Warning: 80, HigherIsBetter: true},
		},
		ActiveSuppliers: KPISpec{
			Name:   "Active Supplier Rate",
			Target: 80,
			Band:   Band{Success: 80, Warning: 60, HigherIsBetter: true},
		},
	}
}

func (t Thresholds) withDefaults() Thresholds {
	def := DefaultThresholds()
	if t.MaxInsights <= 0 {
		t.MaxInsights = def.MaxInsights
	}
	if t.ProfitMargin.Name == "" {
		t.ProfitMargin = def.ProfitMargin
	}
	if t.BudgetUtilization.Name == "" {
		t.BudgetUtilization = def.BudgetUtilization
	}
	if t.OnTimePayment.Name == "" {
		t.OnTimePayment = def.OnTimePayment
	}
	if t.ActiveSuppliers.Name == "" {
		t.ActiveSuppliers = def.ActiveSuppliers
	}
	return t
}
