package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"EnergyView/internal/domain/models"
	domrepo "EnergyView/internal/domain/repository"
)

// CHPartitionWriter stores ingested partition sums and option schemes.
type CHPartitionWriter struct {
	db  *sql.DB
	now func() time.Time
}

func NewCHPartitionWriter(db *sql.DB) *CHPartitionWriter {
	return &CHPartitionWriter{db: db, now: time.Now}
}

// WritePartitionSums inserts recs in multi-row chunks. Re-sent days replace
// older rows once ReplacingMergeTree merges them; reads use FINAL.
func (w *CHPartitionWriter) WritePartitionSums(ctx context.Context, recs []models.PartitionSumRecord) error {
	const chunkSize = 2000
	ingestedAt := w.now().UTC()
	for start := 0; start < len(recs); start += chunkSize {
		end := min(start+chunkSize, len(recs))

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*8)
		for _, r := range recs[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				r.Source,
				r.Day.UTC(),
				uint8(r.Partition),
				r.SumTotal,
				r.SumActive,
				r.SumPassive,
				r.SumSpike,
				ingestedAt,
			)
		}
		q := fmt.Sprintf("INSERT INTO energy.partition_sums (source, day, partition, sum_total, sum_active, sum_passive, sum_spike, ingested_at) VALUES %s",
			strings.Join(values, ","))
		if _, err := w.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert partition sums: %w", err)
		}
	}
	return nil
}

// WritePartitionOptions stores opts as a new version of source's scheme.
func (w *CHPartitionWriter) WritePartitionOptions(ctx context.Context, source string, opts []models.PartitionOption) error {
	if len(opts) == 0 {
		return nil
	}
	version := w.now().UTC()
	values := make([]string, 0, len(opts))
	args := make([]interface{}, 0, len(opts)*6)
	for i, o := range opts {
		values = append(values, "(?, ?, ?, ?, ?, ?)")
		args = append(args, source, version, uint8(i), o.Name, o.Color, o.Start)
	}
	q := "INSERT INTO energy.partition_options (source, version, position, name, color, start) VALUES " + strings.Join(values, ",")
	if _, err := w.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert partition options: %w", err)
	}
	return nil
}

var _ domrepo.PartitionSumWriter = (*CHPartitionWriter)(nil)
