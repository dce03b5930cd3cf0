package partition

import (
	"fmt"

	"EnergyView/internal/domain/errs"
	"EnergyView/internal/domain/models"
)

// View selects which numeric series Derive produces.
type View int

const (
	Total View = iota
	Activity
	Average
)

// Views lists every view in menu order.
var Views = []View{Total, Activity, Average}

// ParseView maps the wire names total, activity and average to a View.
func ParseView(s string) (View, error) {
	switch s {
	case "total":
		return Total, nil
	case "activity":
		return Activity, nil
	case "average":
		return Average, nil
	default:
		return 0, fmt.Errorf("view %q: %w", s, errs.ErrInvalidArgument)
	}
}

func (v View) String() string {
	switch v {
	case Total:
		return "total"
	case Activity:
		return "activity"
	case Average:
		return "average"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

// Title is the menu label of the view.
func (v View) Title() string {
	switch v {
	case Total:
		return "Total"
	case Activity:
		return "Activity"
	case Average:
		return "Intensity"
	default:
		return ""
	}
}

// Description is the hover text of the view.
func (v View) Description() string {
	switch v {
	case Total:
		return "Shows how much energy was used during each daily period"
	case Activity:
		return "Shows how much energy each activity used"
	case Average:
		return "Shows how intensely energy is used during each daily period"
	default:
		return ""
	}
}

// Derive computes the numeric series of view over per-partition sums.
//
// Total and Activity map every element of sums; Activity appends the summed
// passive and spike energy. Average divides each partition's total by the
// hours it covered within a windowHours long window and requires one sum per
// option. A partition covering zero hours reports 0.
func Derive(view View, sums []models.PartitionSum, options []models.PartitionOption, windowHours int) ([]float64, error) {
	switch view {
	case Total:
		out := make([]float64, len(sums))
		for i, s := range sums {
			out[i] = s.SumTotal
		}
		return out, nil
	case Activity:
		out := make([]float64, len(sums), len(sums)+2)
		var passive, spike float64
		for i, s := range sums {
			out[i] = s.SumActive
			passive += s.SumPassive
			spike += s.SumSpike
		}
		return append(out, passive, spike), nil
	case Average:
		return average(sums, options, windowHours)
	default:
		return nil, fmt.Errorf("derive %v: %w", view, errs.ErrInvalidArgument)
	}
}

func average(sums []models.PartitionSum, options []models.PartitionOption, windowHours int) ([]float64, error) {
	if len(sums) != len(options) {
		return nil, fmt.Errorf("average over %d sums and %d partitions: %w", len(sums), len(options), errs.ErrInvalidArgument)
	}
	if windowHours < 0 {
		return nil, fmt.Errorf("window of %d hours: %w", windowHours, errs.ErrInvalidArgument)
	}
	lengths, err := Lengths(options)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(sums))
	for i, s := range sums {
		elapsed := lengths[i] * float64(windowHours) / 24
		if elapsed == 0 {
			continue
		}
		out[i] = s.SumTotal / elapsed
	}
	return out, nil
}

// Lengths returns the hours each partition spans within one day: the cyclic
// distance to the next partition's start. A lone partition spans 24 hours.
func Lengths(options []models.PartitionOption) ([]float64, error) {
	for _, o := range options {
		if o.Start < 0 || o.Start >= 24 {
			return nil, fmt.Errorf("partition %q starts at %v: %w", o.Name, o.Start, errs.ErrInvalidArgument)
		}
	}
	n := len(options)
	if n == 1 {
		return []float64{24}, nil
	}
	out := make([]float64, n)
	for i, o := range options {
		d := options[(i+1)%n].Start - o.Start
		if d < 0 {
			d += 24
		}
		out[i] = d
	}
	return out, nil
}
