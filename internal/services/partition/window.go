package partition

import (
	"fmt"

	"EnergyView/internal/domain/errs"
	"EnergyView/internal/domain/models"
)

// Select returns sums[start..end] inclusive. The result aliases sums.
func Select(sums []models.PartitionSum, start, end int) ([]models.PartitionSum, error) {
	if start < 0 || end >= len(sums) || start > end {
		return nil, fmt.Errorf("select [%d,%d] of %d sums: %w", start, end, len(sums), errs.ErrRange)
	}
	return sums[start : end+1 : end+1], nil
}

// Fold collapses a day-major window into one record per partition. Element k
// of window lands in bucket (offset+k) mod parts, so a window that starts
// mid-day still lines up with the partition scheme.
func Fold(window []models.PartitionSum, offset, parts int) ([]models.PartitionSum, error) {
	if parts <= 0 {
		return nil, fmt.Errorf("fold into %d partitions: %w", parts, errs.ErrInvalidArgument)
	}
	if offset < 0 {
		return nil, fmt.Errorf("fold offset %d: %w", offset, errs.ErrRange)
	}
	out := make([]models.PartitionSum, parts)
	for k, s := range window {
		b := &out[(offset+k)%parts]
		b.SumTotal += s.SumTotal
		b.SumActive += s.SumActive
		b.SumPassive += s.SumPassive
		b.SumSpike += s.SumSpike
	}
	return out, nil
}
