package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"EnergyView/internal/domain/errs"
	"EnergyView/internal/domain/models"
	domrepo "EnergyView/internal/domain/repository"
	applogger "EnergyView/pkg/logger"
)

// Schema creates the tables the ClickHouse store and writer use.
var Schema = []string{
	`CREATE DATABASE IF NOT EXISTS energy`,
	`CREATE TABLE IF NOT EXISTS energy.partition_options (
		source   LowCardinality(String),
		version  DateTime64(3),
		position UInt8,
		name     String,
		color    String,
		start    Float64
	) ENGINE = MergeTree ORDER BY (source, version, position)`,
	`CREATE TABLE IF NOT EXISTS energy.partition_sums (
		source      LowCardinality(String),
		day         Date,
		partition   UInt8,
		sum_total   Float64,
		sum_active  Float64,
		sum_passive Float64,
		sum_spike   Float64,
		ingested_at DateTime64(3)
	) ENGINE = ReplacingMergeTree(ingested_at) ORDER BY (source, day, partition)`,
}

// CHHistoryStore loads histories from the energy.* tables.
type CHHistoryStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHHistoryStore(db *sql.DB, l *applogger.Logger) *CHHistoryStore {
	return &CHHistoryStore{db: db, l: l}
}

func (s *CHHistoryStore) Load(ctx context.Context, q models.HistoryQuery) (*models.EnergyHistory, error) {
	opts, err := s.options(ctx, q.Source)
	if err != nil {
		return nil, err
	}

	from, to := q.From, q.To
	if from.IsZero() || to.IsZero() {
		minDay, maxDay, err := s.bounds(ctx, q.Source)
		if err != nil {
			return nil, err
		}
		defFrom, defTo := defaultRange(opts, minDay, maxDay)
		if from.IsZero() {
			from = defFrom
		}
		if to.IsZero() {
			to = defTo
		}
	}

	w, err := locateWindow(opts, from, to)
	if err != nil {
		return nil, err
	}
	rows, err := s.sums(ctx, q.Source, w)
	if err != nil {
		return nil, err
	}
	return assembleHistory(opts, w, rows, from, to), nil
}

func (s *CHHistoryStore) options(ctx context.Context, source string) ([]models.PartitionOption, error) {
	const q = `
        SELECT name, color, start
        FROM energy.partition_options
        WHERE source = ? AND version = (
            SELECT max(version) FROM energy.partition_options WHERE source = ?
        )
        ORDER BY position ASC
    `
	rows, err := s.db.QueryContext(ctx, q, source, source)
	if err != nil {
		s.l.Error("clickhouse partition_options query error", applogger.String("source", source), applogger.Error(err))
		return nil, fmt.Errorf("query partition options: %w", err)
	}
	defer rows.Close()

	var out []models.PartitionOption
	for rows.Next() {
		var o models.PartitionOption
		if err := rows.Scan(&o.Name, &o.Color, &o.Start); err != nil {
			return nil, fmt.Errorf("scan partition option: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("partition options for %q: %w", source, errs.ErrNotFound)
	}
	return out, nil
}

func (s *CHHistoryStore) bounds(ctx context.Context, source string) (time.Time, time.Time, error) {
	const q = `SELECT min(day), max(day), count() FROM energy.partition_sums WHERE source = ?`
	var (
		minDay, maxDay time.Time
		n              uint64
	)
	if err := s.db.QueryRowContext(ctx, q, source).Scan(&minDay, &maxDay, &n); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("query history bounds: %w", err)
	}
	if n == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("partition sums for %q: %w", source, errs.ErrNotFound)
	}
	return minDay, maxDay, nil
}

func (s *CHHistoryStore) sums(ctx context.Context, source string, w historyWindow) ([]sumRow, error) {
	const q = `
        SELECT day, partition, sum_total, sum_active, sum_passive, sum_spike
        FROM energy.partition_sums FINAL
        WHERE source = ? AND day >= ? AND day <= ?
        ORDER BY day ASC, partition ASC
    `
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, q, source, w.firstDay, w.lastDay)
	if err != nil {
		s.l.Error("clickhouse partition_sums query error",
			applogger.String("source", source),
			applogger.String("from", w.firstDay.Format(time.DateOnly)),
			applogger.String("to", w.lastDay.Format(time.DateOnly)),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("query partition sums: %w", err)
	}
	defer rows.Close()

	out := make([]sumRow, 0, w.days()*4)
	for rows.Next() {
		var (
			r    sumRow
			part uint8
		)
		if err := rows.Scan(&r.day, &part, &r.sum.SumTotal, &r.sum.SumActive, &r.sum.SumPassive, &r.sum.SumSpike); err != nil {
			return nil, fmt.Errorf("scan partition sum: %w", err)
		}
		r.partition = int(part)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse partition_sums loaded",
		applogger.String("source", source),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

var _ domrepo.HistoryStore = (*CHHistoryStore)(nil)
