package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EnergyView/internal/domain/errs"
	"EnergyView/internal/services/partition"
)

func newBuilder(t *testing.T) *PieChartBuilder {
	t.Helper()
	b, err := NewPieChartBuilder("")
	require.NoError(t, err)
	return b
}

func TestBuildTotal(t *testing.T) {
	data, err := newBuilder(t).Build(twoDayHistory(), partition.Total)
	require.NoError(t, err)

	assert.Equal(t, "total", data.View)
	assert.Equal(t, "Total", data.Title)
	assert.Equal(t, []float64{600, 1600, 2000, 1600}, data.Values)
	assert.Equal(t, []string{"Morning", "Daytime", "Evening", "Night"}, data.Labels)
	assert.Len(t, data.Colors, 4)
	assert.Equal(t, "34%\n2.0 kWh", data.Tooltips[2])
}

func TestBuildActivityAppendsSyntheticSlices(t *testing.T) {
	data, err := newBuilder(t).Build(twoDayHistory(), partition.Activity)
	require.NoError(t, err)

	assert.Equal(t, []float64{200, 1000, 1400, 200, 2300, 700}, data.Values)
	assert.Equal(t, []string{"Morning", "Daytime", "Evening", "Night", PassiveLabel, ApplianceLabel}, data.Labels)
	assert.Equal(t, "hsl(275, 0%, 85%)", data.Colors[4])
	assert.Equal(t, "hsl(275, 18%, 79%)", data.Colors[5])
	assert.Len(t, data.Tooltips, 6)
}

func TestBuildAverage(t *testing.T) {
	data, err := newBuilder(t).Build(twoDayHistory(), partition.Average)
	require.NoError(t, err)
	assert.Equal(t, "Intensity", data.Title)
	assert.Equal(t, []float64{100, 100, 200, 100}, data.Values)
}

func TestBuildNarrowedWindow(t *testing.T) {
	h := twoDayHistory()
	h.StartDateIndex, h.EndDateIndex = 4, 7
	h.StartDate = h.StartDate.Add(24 * time.Hour)

	data, err := newBuilder(t).Build(h, partition.Total)
	require.NoError(t, err)
	assert.Equal(t, []float64{300, 800, 1000, 800}, data.Values)

	// a window starting mid-day still lines up with the partition labels
	h.StartDateIndex, h.EndDateIndex = 2, 5
	data, err = newBuilder(t).Build(h, partition.Total)
	require.NoError(t, err)
	assert.Equal(t, []float64{300, 800, 1000, 800}, data.Values)
}

func TestBuildErrors(t *testing.T) {
	b := newBuilder(t)

	h := twoDayHistory()
	h.EndDateIndex = 8
	_, err := b.Build(h, partition.Total)
	assert.ErrorIs(t, err, errs.ErrRange)

	h = twoDayHistory()
	h.PartitionOptions.Value = nil
	_, err = b.Build(h, partition.Total)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = b.Build(nil, partition.Total)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = b.Build(twoDayHistory(), partition.View(9))
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestNewPieChartBuilderRejectsBadBase(t *testing.T) {
	_, err := NewPieChartBuilder("#663399")
	assert.ErrorIs(t, err, errs.ErrParse)
}

func TestSummarize(t *testing.T) {
	sum, err := newBuilder(t).Summarize(twoDayHistory())
	require.NoError(t, err)
	assert.Equal(t, PassiveLabel, sum.MostUsed)
	assert.Equal(t, "Evening", sum.MostIntense)
	assert.Equal(t, 48, sum.WindowHours)
}

func TestViewStateSwitch(t *testing.T) {
	s := NewViewState(partition.Activity)
	assert.False(t, s.Switch(partition.Activity))
	assert.True(t, s.Switch(partition.Total))
	assert.Equal(t, partition.Total, s.Current())
	assert.False(t, s.Switch(partition.Total))
}

func TestViewsMenu(t *testing.T) {
	views := Views()
	require.Len(t, views, 3)
	assert.Equal(t, "average", views[2].Key)
	assert.Equal(t, "Intensity", views[2].Title)
}
