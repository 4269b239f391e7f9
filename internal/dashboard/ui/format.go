package ui

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.English)
	titler  = cases.Title(language.English)
)

// FormatCurrency renders whole dollars with locale grouping, e.g. "$12,345".
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	rounded := math.Round(v)
	if rounded < 0 {
		return "-$" + printer.Sprintf("%.0f", -rounded)
	}
	return "$" + printer.Sprintf("%.0f", rounded)
}

// FormatAmount renders a value with cents, e.g. "$1,234.50".
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	if v < 0 {
		return "-$" + printer.Sprintf("%.2f", -v)
	}
	return "$" + printer.Sprintf("%.2f", v)
}

// FormatPercent renders one decimal place, e.g. "95.0%".
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return printer.Sprintf("%.1f%%", v)
}

// FormatDelta renders a signed percentage, e.g. "+5.0%" or "-2.5%".
func FormatDelta(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) < 0.05 {
		return "0.0%"
	}
	return printer.Sprintf("%+.1f%%", v)
}

// FormatCount renders an integer with grouping.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// Label title-cases a status or category token, e.g. "unpaid" -> "Unpaid".
func Label(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
	if s == "" {
		return "Uncategorized"
	}
	return titler.String(s)
}
