package repository

import (
	"fmt"
	"time"

	"EnergyView/internal/domain/errs"
	"EnergyView/internal/domain/models"
	"EnergyView/pkg/util"
)

// historyWindow maps a [from, to) time range onto day-major partition sums.
// Days are UTC; a partition belongs to the day it starts on, so 03:00 falls
// in the previous day's last partition when the first one starts later.
type historyWindow struct {
	firstDay  time.Time
	lastDay   time.Time
	startPart int
	endPart   int
}

func (w historyWindow) days() int {
	return int(w.lastDay.Sub(w.firstDay)/(24*time.Hour)) + 1
}

// locatePartition returns the day and position of the partition covering t.
// opts must be ordered by start.
func locatePartition(opts []models.PartitionOption, t time.Time) (time.Time, int) {
	t = t.UTC()
	day := util.StartOfDay(t)
	hour := t.Sub(day).Hours()
	p := -1
	for i, o := range opts {
		if o.Start <= hour {
			p = i
		}
	}
	if p < 0 {
		return day.AddDate(0, 0, -1), len(opts) - 1
	}
	return day, p
}

func locateWindow(opts []models.PartitionOption, from, to time.Time) (historyWindow, error) {
	if len(opts) == 0 {
		return historyWindow{}, fmt.Errorf("no partition options: %w", errs.ErrNotFound)
	}
	if !to.After(from) {
		return historyWindow{}, fmt.Errorf("window %s..%s is empty: %w",
			from.Format(time.RFC3339), to.Format(time.RFC3339), errs.ErrRange)
	}
	var w historyWindow
	w.firstDay, w.startPart = locatePartition(opts, from)
	w.lastDay, w.endPart = locatePartition(opts, to.Add(-time.Nanosecond))
	return w, nil
}

// defaultRange spans whole partition days from the first to the last stored day.
func defaultRange(opts []models.PartitionOption, minDay, maxDay time.Time) (time.Time, time.Time) {
	offset := time.Duration(opts[0].Start * float64(time.Hour))
	return minDay.UTC().Add(offset), maxDay.UTC().AddDate(0, 0, 1).Add(offset)
}

type sumRow struct {
	day       time.Time
	partition int
	sum       models.PartitionSum
}

// assembleHistory lays rows out day-major over w. Missing rows stay zero and
// rows outside the window are dropped.
func assembleHistory(opts []models.PartitionOption, w historyWindow, rows []sumRow, from, to time.Time) *models.EnergyHistory {
	parts := len(opts)
	days := w.days()
	sums := make([]models.PartitionSum, days*parts)
	for _, r := range rows {
		d := int(util.StartOfDay(r.day.UTC()).Sub(w.firstDay) / (24 * time.Hour))
		if d < 0 || d >= days || r.partition < 0 || r.partition >= parts {
			continue
		}
		sums[d*parts+r.partition] = r.sum
	}
	return &models.EnergyHistory{
		PartitionSums:    sums,
		StartDateIndex:   w.startPart,
		EndDateIndex:     (days-1)*parts + w.endPart,
		StartDate:        from,
		EndDate:          to,
		PartitionOptions: models.PartitionOptionList{Value: append([]models.PartitionOption(nil), opts...)},
	}
}
