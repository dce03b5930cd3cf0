package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EnergyView/internal/domain/errs"
	"EnergyView/internal/domain/models"
)

var fourParts = []models.PartitionOption{
	{Name: "Morning", Start: 6},
	{Name: "Daytime", Start: 9},
	{Name: "Evening", Start: 17},
	{Name: "Night", Start: 22},
}

func utc(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestLocatePartition(t *testing.T) {
	cases := []struct {
		at   time.Time
		day  time.Time
		part int
	}{
		{utc(2020, 1, 2, 6), utc(2020, 1, 2, 0), 0},
		{utc(2020, 1, 2, 12), utc(2020, 1, 2, 0), 1},
		{utc(2020, 1, 2, 23), utc(2020, 1, 2, 0), 3},
		// before the morning partition: previous day's night
		{utc(2020, 1, 2, 3), utc(2020, 1, 1, 0), 3},
	}
	for _, tc := range cases {
		day, part := locatePartition(fourParts, tc.at)
		assert.Equal(t, tc.day, day, tc.at.String())
		assert.Equal(t, tc.part, part, tc.at.String())
	}
}

func TestLocateWindowRejectsEmptyRange(t *testing.T) {
	_, err := locateWindow(fourParts, utc(2020, 1, 2, 0), utc(2020, 1, 2, 0))
	assert.ErrorIs(t, err, errs.ErrRange)

	_, err = locateWindow(nil, utc(2020, 1, 1, 0), utc(2020, 1, 2, 0))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAssembleHistoryFillsGapsDayMajor(t *testing.T) {
	from, to := utc(2020, 1, 1, 9), utc(2020, 1, 3, 6)
	w, err := locateWindow(fourParts, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, w.days())

	rows := []sumRow{
		{day: utc(2020, 1, 1, 0), partition: 1, sum: models.PartitionSum{SumTotal: 10}},
		{day: utc(2020, 1, 2, 0), partition: 3, sum: models.PartitionSum{SumTotal: 40}},
		{day: utc(2020, 1, 5, 0), partition: 0, sum: models.PartitionSum{SumTotal: 99}}, // outside
		{day: utc(2020, 1, 1, 0), partition: 7, sum: models.PartitionSum{SumTotal: 99}}, // unknown position
	}
	h := assembleHistory(fourParts, w, rows, from, to)

	require.Len(t, h.PartitionSums, 8)
	assert.Equal(t, 10.0, h.PartitionSums[1].SumTotal)
	assert.Equal(t, 40.0, h.PartitionSums[7].SumTotal)
	assert.Equal(t, 0.0, h.PartitionSums[0].SumTotal)
	assert.Equal(t, 1, h.StartDateIndex)
	assert.Equal(t, 7, h.EndDateIndex)
	assert.Equal(t, from, h.StartDate)
	assert.Equal(t, to, h.EndDate)
	assert.Len(t, h.Options(), 4)
}

func TestDefaultRangeCoversWholePartitionDays(t *testing.T) {
	from, to := defaultRange(fourParts, utc(2020, 1, 1, 0), utc(2020, 1, 3, 0))
	assert.Equal(t, utc(2020, 1, 1, 6), from)
	assert.Equal(t, utc(2020, 1, 4, 6), to)

	w, err := locateWindow(fourParts, from, to)
	require.NoError(t, err)
	assert.Equal(t, 3, w.days())
	assert.Equal(t, 0, w.startPart)
	assert.Equal(t, 3, w.endPart)
}
