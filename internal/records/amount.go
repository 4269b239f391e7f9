package records

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value normalized once at the ingestion boundary.
// Unparseable, negative or non-finite input produces the invalid marker,
// which contributes zero to every aggregate.
type Amount struct {
	value decimal.Decimal
	valid bool
}

// NewAmount wraps a decimal; negative values yield the invalid marker.
func NewAmount(d decimal.Decimal) Amount {
	if d.IsNegative() {
		return Amount{}
	}
	return Amount{value: d, valid: true}
}

// AmountFromFloat builds an Amount from a float.
func AmountFromFloat(f float64) Amount {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Amount{}
	}
	return NewAmount(decimal.NewFromFloat(f))
}

// ParseAmount normalizes any raw monetary representation.
func ParseAmount(v any) Amount {
	switch t := v.(type) {
	case nil:
		return Amount{}
	case Amount:
		return t
	case decimal.Decimal:
		return NewAmount(t)
	case string:
		return parseAmountString(t)
	case json.Number:
		return parseAmountString(t.String())
	case float64:
		return AmountFromFloat(t)
	case float32:
		return AmountFromFloat(float64(t))
	case int:
		return NewAmount(decimal.NewFromInt(int64(t)))
	case int8:
		return NewAmount(decimal.NewFromInt(int64(t)))
	case int16:
		return NewAmount(decimal.NewFromInt(int64(t)))
	case int32:
		return NewAmount(decimal.NewFromInt32(t))
	case int64:
		return NewAmount(decimal.NewFromInt(t))
	case uint:
		return NewAmount(decimal.NewFromUint64(uint64(t)))
	case uint8:
		return NewAmount(decimal.NewFromUint64(uint64(t)))
	case uint16:
		return NewAmount(decimal.NewFromUint64(uint64(t)))
	case uint32:
		return NewAmount(decimal.NewFromUint64(uint64(t)))
	case uint64:
		return NewAmount(decimal.NewFromUint64(t))
	default:
		return Amount{}
	}
}

func parseAmountString(s string) Amount {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}
	}
	return NewAmount(d)
}

// Valid reports whether the raw input parsed to a usable amount.
func (a Amount) Valid() bool { return a.valid }

// Decimal returns the normalized value, zero when invalid.
func (a Amount) Decimal() decimal.Decimal {
	if !a.valid {
		return decimal.Zero
	}
	return a.value
}

// Float64 returns the value as float64, zero when invalid.
func (a Amount) Float64() float64 {
	f, _ := a.Decimal().Float64()
	return f
}

// String renders the amount with two decimal places.
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

// MarshalJSON emits the amount as a JSON number at full precision, or null
// for the invalid marker, so a decode yields the same Amount.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.valid {
		return []byte("null"), nil
	}
	return []byte(a.value.String()), nil
}

// UnmarshalJSON accepts a number, a numeric string or null and never fails.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*a = Amount{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = Amount{}
			return nil
		}
		*a = parseAmountString(s)
		return nil
	}
	*a = parseAmountString(raw)
	return nil
}

// SumAmounts adds amounts with decimal precision.
func SumAmounts(amounts ...Amount) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.Decimal())
	}
	return total
}
