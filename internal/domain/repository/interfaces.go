package repository

import (
	"context"

	"EnergyView/internal/domain/models"
)

// HistoryStore loads the energy history a chart is computed from.
type HistoryStore interface {
	Load(ctx context.Context, q models.HistoryQuery) (*models.EnergyHistory, error)
}

// PartitionSumWriter persists ingested partition-sum updates and the
// partition scheme they are laid out by.
type PartitionSumWriter interface {
	WritePartitionSums(ctx context.Context, recs []models.PartitionSumRecord) error
	WritePartitionOptions(ctx context.Context, source string, opts []models.PartitionOption) error
}

// InsightPublisher announces computed summaries to downstream consumers.
type InsightPublisher interface {
	PublishInsight(ctx context.Context, ev models.InsightEvent) error
	Close() error
}

type Metrics interface {
	RecordChartBuilt(source, view string)
	RecordError(kind string)
	RecordRecordsIngested(source string, n int)
	RecordLatency(op string, seconds float64)
}
