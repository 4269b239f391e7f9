package records

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseAmountAcceptsCommonShapes(t *testing.T) {
	cases := []struct {
		name  string
		in    any
		want  string
		valid bool
	}{
		{"decimal string", "150.50", "150.50", true},
		{"currency string", " $12,345.6 ", "12345.60", true},
		{"float", 99.5, "99.50", true},
		{"int", 42, "42.00", true},
		{"int8", int8(5), "5.00", true},
		{"int16", int16(300), "300.00", true},
		{"uint8", uint8(7), "7.00", true},
		{"uint16", uint16(65000), "65000.00", true},
		{"negative int16", int16(-3), "0.00", false},
		{"json number", json.Number("7.25"), "7.25", true},
		{"decimal", decimal.RequireFromString("3.10"), "3.10", true},
		{"empty", "", "0.00", false},
		{"garbage", "abc", "0.00", false},
		{"negative", "-10", "0.00", false},
		{"nan", math.NaN(), "0.00", false},
		{"nil", nil, "0.00", false},
		{"bool", true, "0.00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := ParseAmount(tc.in)
			require.Equal(t, tc.valid, a.Valid())
			require.Equal(t, tc.want, a.String())
		})
	}
}

func TestAmountUnmarshalNeverFails(t *testing.T) {
	var b Budget
	err := json.Unmarshal([]byte(`{"name":"Ops","total_amount":"1000","spent_amount":"n/a"}`), &b)
	require.NoError(t, err)
	require.True(t, b.TotalAmount.Valid())
	require.Equal(t, 1000.0, b.TotalAmount.Float64())
	require.False(t, b.SpentAmount.Valid())
	require.Equal(t, 0.0, b.SpentAmount.Float64())

	var inv Invoice
	require.NoError(t, json.Unmarshal([]byte(`{"amount":150.5,"due_date":null}`), &inv))
	require.Equal(t, 150.5, inv.Amount.Float64())
	require.True(t, inv.DueDate.IsZero())
}

func TestAmountMarshalsAsNumber(t *testing.T) {
	data, err := json.Marshal(struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}{A: ParseAmount("12.5"), B: ParseAmount("bad")})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":12.5,"b":null}`, string(data))
}

func TestAmountJSONRoundTripKeepsPrecisionAndValidity(t *testing.T) {
	for _, raw := range []string{"0.005", "1234.567", "150.50", "bad", ""} {
		in := ParseAmount(raw)
		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out Amount
		require.NoError(t, json.Unmarshal(data, &out))
		require.Equal(t, in.Valid(), out.Valid(), raw)
		require.True(t, in.Decimal().Equal(out.Decimal()), "%s: %s != %s", raw, in.Decimal(), out.Decimal())
	}
}

func TestSumAmountsSkipsInvalid(t *testing.T) {
	total := SumAmounts(ParseAmount("0.10"), ParseAmount("0.20"), ParseAmount("x"))
	require.True(t, total.Equal(decimal.RequireFromString("0.30")))
}

func TestParseDateFormats(t *testing.T) {
	require.Equal(t, "2025-03-04", ParseDate("2025-03-04").String())
	require.Equal(t, "2025-03-04", ParseDate("2025-03-04T15:04:05Z").String())
	require.True(t, ParseDate("04/03/2025").IsZero())
	require.True(t, ParseDate("").IsZero())

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`12345`), &d))
	require.True(t, d.IsZero())

	out, err := json.Marshal(ParseDate("2025-01-31"))
	require.NoError(t, err)
	require.Equal(t, `"2025-01-31"`, string(out))
}
