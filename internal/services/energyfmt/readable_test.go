package energyfmt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatWattHours(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0 Wh"},
		{950, "950 Wh"},
		{999.4, "999 Wh"},
		{999.6, "1.0 kWh"},
		{1000, "1.0 kWh"},
		{1234.5, "1.2 kWh"},
		{1250, "1.3 kWh"},
		{12345, "12.3 kWh"},
		{999960, "1.0 MWh"},
		{-1500, "-1.5 kWh"},
		{2.5e9, "2.5 GWh"},
		{5e12, "5000.0 GWh"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatWattHours(c.in), "%v", c.in)
	}
}

func TestFormatWattHoursNonFinite(t *testing.T) {
	assert.Equal(t, "n/a", FormatWattHours(math.NaN()))
	assert.Equal(t, "n/a", FormatWattHours(math.Inf(1)))
}

func TestTooltip(t *testing.T) {
	assert.Equal(t, "25%\n1.5 kWh", Tooltip(1500, 6000))
	assert.Equal(t, "33%", Percent(1, 3))
	assert.Equal(t, "0%", Percent(5, 0))
}
