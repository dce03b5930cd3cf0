// Package energyfmt renders energy magnitudes for chart tooltips.
package energyfmt

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

var (
	units    = []string{"Wh", "kWh", "MWh", "GWh"}
	thousand = decimal.NewFromInt(1000)
)

func places(unit int) int32 {
	if unit == 0 {
		return 0
	}
	return 1
}

// FormatWattHours renders v (Wh) with the largest unit that keeps the
// magnitude at or above 1: whole Wh, otherwise one decimal. Non-finite
// values render as "n/a".
func FormatWattHours(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	d := decimal.NewFromFloat(v)
	u := 0
	for u < len(units)-1 && d.Abs().GreaterThanOrEqual(thousand) {
		d = d.Div(thousand)
		u++
	}
	// 999.96 kWh would print as 1000.0 kWh
	if u < len(units)-1 && d.Round(places(u)).Abs().GreaterThanOrEqual(thousand) {
		d = d.Div(thousand)
		u++
	}
	return d.StringFixed(places(u)) + " " + units[u]
}

// Percent renders v as a whole percentage of total.
func Percent(v, total float64) string {
	if total == 0 || math.IsNaN(v) || math.IsNaN(total) {
		return "0%"
	}
	return strconv.FormatFloat(math.Round(v/total*100), 'f', 0, 64) + "%"
}

// Tooltip is the two-line slice label: share of the whole and readable energy.
func Tooltip(v, total float64) string {
	return Percent(v, total) + "\n" + FormatWattHours(v)
}
