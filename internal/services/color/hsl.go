package color

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"EnergyView/internal/domain/errs"
)

var hslPattern = regexp.MustCompile(`^\s*hsl\(\s*([+-]?\d+(?:\.\d+)?)\s*,\s*(\d+(?:\.\d+)?)%\s*,\s*(\d+(?:\.\d+)?)%\s*\)\s*$`)

// Adjust holds the channel transforms applied by EditHSL. A nil func leaves
// the channel unchanged.
type Adjust struct {
	S func(s float64) float64
	L func(l float64) float64
}

// HSL is a parsed hsl() colour.
type HSL struct {
	H, S, L float64
}

// String renders c as hsl(H, S%, L%) using the shortest exact decimals.
func (c HSL) String() string {
	return fmt.Sprintf("hsl(%s, %s%%, %s%%)", num(c.H), num(c.S), num(c.L))
}

// ParseHSL parses strings of the form "hsl(275, 9%, 37%)".
func ParseHSL(s string) (HSL, error) {
	m := hslPattern.FindStringSubmatch(s)
	if m == nil {
		return HSL{}, fmt.Errorf("color %q: %w", s, errs.ErrParse)
	}
	var out [3]float64
	for i := range out {
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return HSL{}, fmt.Errorf("color %q: %w", s, errs.ErrParse)
		}
		out[i] = v
	}
	if out[1] > 100 || out[2] > 100 {
		return HSL{}, fmt.Errorf("color %q: channel above 100%%: %w", s, errs.ErrParse)
	}
	return HSL{H: out[0], S: out[1], L: out[2]}, nil
}

// EditHSL applies adj to the saturation and lightness of an hsl() colour,
// clamps both to [0,100] and re-serialises it. Hue is untouched.
func EditHSL(s string, adj Adjust) (string, error) {
	c, err := ParseHSL(s)
	if err != nil {
		return "", err
	}
	if adj.S != nil {
		c.S = clamp(adj.S(c.S))
	}
	if adj.L != nil {
		c.L = clamp(adj.L(c.L))
	}
	return c.String(), nil
}

// Const returns a transform that ignores its input.
func Const(v float64) func(float64) float64 {
	return func(float64) float64 { return v }
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
