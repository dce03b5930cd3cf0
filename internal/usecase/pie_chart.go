package usecase

import (
	"fmt"

	"EnergyView/internal/domain/errs"
	"EnergyView/internal/domain/models"
	"EnergyView/internal/services/color"
	"EnergyView/internal/services/energyfmt"
	"EnergyView/internal/services/partition"
	"EnergyView/pkg/util"
)

// Labels of the two synthetic slices appended to the activity view.
const (
	PassiveLabel   = "Passive"
	ApplianceLabel = "Appliance"
)

// DefaultBaseColor is the shade the Passive and Appliance slices derive from.
const DefaultBaseColor = "hsl(275, 9%, 37%)"

// PieChartBuilder turns an energy history into pie chart data.
type PieChartBuilder struct {
	passiveColor   string
	applianceColor string
}

// NewPieChartBuilder derives the synthetic slice colours from baseColor.
func NewPieChartBuilder(baseColor string) (*PieChartBuilder, error) {
	if baseColor == "" {
		baseColor = DefaultBaseColor
	}
	passive, err := color.EditHSL(baseColor, color.Adjust{S: color.Const(0), L: color.Const(85)})
	if err != nil {
		return nil, fmt.Errorf("passive color: %w", err)
	}
	appliance, err := color.EditHSL(baseColor, color.Adjust{
		S: func(s float64) float64 { return min(100, s*2) },
		L: func(l float64) float64 { return (l + 200) / 3 },
	})
	if err != nil {
		return nil, fmt.Errorf("appliance color: %w", err)
	}
	return &PieChartBuilder{passiveColor: passive, applianceColor: appliance}, nil
}

// Build computes the chart data of view over the history's selected window.
func (b *PieChartBuilder) Build(h *models.EnergyHistory, view partition.View) (*models.ChartData, error) {
	sums, hours, err := b.window(h)
	if err != nil {
		return nil, err
	}
	values, err := partition.Derive(view, sums, h.Options(), hours)
	if err != nil {
		return nil, err
	}

	labels := b.labels(h.Options())
	colors := b.colors(h.Options())
	var total float64
	for _, v := range values {
		total += v
	}
	tooltips := make([]string, len(values))
	for i, v := range values {
		tooltips[i] = energyfmt.Tooltip(v, total)
	}
	return &models.ChartData{
		View:     view.String(),
		Title:    view.Title(),
		Labels:   labels[:len(values)],
		Values:   values,
		Colors:   colors[:len(values)],
		Tooltips: tooltips,
	}, nil
}

// Summarize names the partition with the most energy in the activity view and
// the one with the highest average power.
func (b *PieChartBuilder) Summarize(h *models.EnergyHistory) (*models.PieSummary, error) {
	sums, hours, err := b.window(h)
	if err != nil {
		return nil, err
	}
	labels := b.labels(h.Options())

	activity, err := partition.Derive(partition.Activity, sums, h.Options(), hours)
	if err != nil {
		return nil, err
	}
	used, err := partition.ArgMax(activity)
	if err != nil {
		return nil, fmt.Errorf("most used: %w", err)
	}

	avg, err := partition.Derive(partition.Average, sums, h.Options(), hours)
	if err != nil {
		return nil, err
	}
	intense, err := partition.ArgMax(avg)
	if err != nil {
		return nil, fmt.Errorf("most intense: %w", err)
	}

	return &models.PieSummary{
		MostUsed:    labels[used.Index],
		MostIntense: labels[intense.Index],
		WindowHours: hours,
	}, nil
}

// window selects and folds the visible sums into one record per partition.
func (b *PieChartBuilder) window(h *models.EnergyHistory) ([]models.PartitionSum, int, error) {
	if h == nil {
		return nil, 0, fmt.Errorf("nil history: %w", errs.ErrInvalidArgument)
	}
	opts := h.Options()
	if len(opts) == 0 {
		return nil, 0, fmt.Errorf("history has no partition options: %w", errs.ErrInvalidArgument)
	}
	sel, err := partition.Select(h.PartitionSums, h.StartDateIndex, h.EndDateIndex)
	if err != nil {
		return nil, 0, err
	}
	sums, err := partition.Fold(sel, h.StartDateIndex, len(opts))
	if err != nil {
		return nil, 0, err
	}
	return sums, util.WindowHours(h.StartDate, h.EndDate), nil
}

func (b *PieChartBuilder) labels(opts []models.PartitionOption) []string {
	out := make([]string, 0, len(opts)+2)
	for _, o := range opts {
		out = append(out, o.Name)
	}
	return append(out, PassiveLabel, ApplianceLabel)
}

func (b *PieChartBuilder) colors(opts []models.PartitionOption) []string {
	out := make([]string, 0, len(opts)+2)
	for _, o := range opts {
		out = append(out, o.Color)
	}
	return append(out, b.passiveColor, b.applianceColor)
}

// Views describes every selectable view in menu order.
func Views() []models.ViewInfo {
	out := make([]models.ViewInfo, 0, len(partition.Views))
	for _, v := range partition.Views {
		out = append(out, models.ViewInfo{Key: v.String(), Title: v.Title(), Description: v.Description()})
	}
	return out
}
