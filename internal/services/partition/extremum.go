package partition

import (
	"fmt"
	"math"

	"EnergyView/internal/domain/errs"
)

// Extremum is a value and the position it was found at.
type Extremum struct {
	Value float64
	Index int
}

// ArgMax returns the first maximum of values.
func ArgMax(values []float64) (Extremum, error) {
	if len(values) == 0 {
		return Extremum{}, fmt.Errorf("argmax: %w", errs.ErrEmptyInput)
	}
	best := Extremum{Value: math.Inf(-1), Index: -1}
	for i, v := range values {
		if v > best.Value {
			best = Extremum{Value: v, Index: i}
		}
	}
	if best.Index < 0 {
		// every value was -Inf or NaN
		return Extremum{}, fmt.Errorf("argmax: no comparable value: %w", errs.ErrInvalidArgument)
	}
	return best, nil
}
