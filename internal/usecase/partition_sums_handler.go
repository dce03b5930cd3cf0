package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"EnergyView/internal/domain/errs"
	"EnergyView/internal/domain/models"
	domrepo "EnergyView/internal/domain/repository"
	pkgkafka "EnergyView/pkg/kafka"
	"EnergyView/pkg/util"
)

// PartitionSumsHandler consumes per-day partition sums from Kafka and writes them to storage.
type PartitionSumsHandler struct {
	topic   string
	writer  domrepo.PartitionSumWriter
	metrics domrepo.Metrics
}

func NewPartitionSumsHandler(topic string, writer domrepo.PartitionSumWriter, metrics domrepo.Metrics) *PartitionSumsHandler {
	return &PartitionSumsHandler{topic: topic, writer: writer, metrics: metrics}
}

func (h *PartitionSumsHandler) Topic() string { return h.topic }

// incoming message schema: {source, day, partitions: [{sumTotal, sumActive, sumPassive, sumSpike}], options?: [{name, color, start}]}
// partition positions follow the source's partition options; a message that
// carries options replaces the stored scheme first.
func (h *PartitionSumsHandler) Handle(ctx context.Context, b []byte) error {
	msg, err := DecodePartitionSums(b)
	if err != nil {
		h.metrics.RecordError("consumer_decode")
		return err
	}
	recs := msg.Records
	start := time.Now()
	if len(msg.Options) > 0 {
		if err := h.writer.WritePartitionOptions(ctx, recs[0].Source, msg.Options); err != nil {
			h.metrics.RecordError("consumer_store")
			return err
		}
	}
	err = h.writer.WritePartitionSums(ctx, recs)
	h.metrics.RecordLatency("partition_sums_write_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordRecordsIngested(recs[0].Source, len(recs))
	return nil
}

// PartitionSumsMessage is one decoded ingest message.
type PartitionSumsMessage struct {
	Records []models.PartitionSumRecord
	Options []models.PartitionOption
}

// DecodePartitionSums validates one day of partition sums.
func DecodePartitionSums(b []byte) (*PartitionSumsMessage, error) {
	var m struct {
		Source     string                   `json:"source"`
		Day        string                   `json:"day"`
		Partitions []models.PartitionSum    `json:"partitions"`
		Options    []models.PartitionOption `json:"options"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode partition sums: %w", err)
	}
	if m.Source == "" {
		return nil, fmt.Errorf("partition sums without source: %w", errs.ErrInvalidArgument)
	}
	day, ok := util.ParseTime(m.Day)
	if !ok {
		return nil, fmt.Errorf("partition sums day %q: %w", m.Day, errs.ErrInvalidArgument)
	}
	if len(m.Partitions) == 0 {
		return nil, fmt.Errorf("partition sums for %s: %w", m.Day, errs.ErrEmptyInput)
	}
	day = util.StartOfDay(day)
	out := make([]models.PartitionSumRecord, len(m.Partitions))
	for i, p := range m.Partitions {
		if p.SumTotal < 0 || p.SumActive < 0 || p.SumPassive < 0 || p.SumSpike < 0 {
			return nil, fmt.Errorf("partition %d of %s has negative energy: %w", i, m.Day, errs.ErrInvalidArgument)
		}
		out[i] = models.PartitionSumRecord{Source: m.Source, Day: day, Partition: i, PartitionSum: p}
	}
	if len(m.Options) > 0 {
		if len(m.Options) != len(m.Partitions) {
			return nil, fmt.Errorf("%d options for %d partitions: %w", len(m.Options), len(m.Partitions), errs.ErrInvalidArgument)
		}
		for i, o := range m.Options {
			if o.Name == "" || o.Start < 0 || o.Start >= 24 {
				return nil, fmt.Errorf("option %d (%q, start %v): %w", i, o.Name, o.Start, errs.ErrInvalidArgument)
			}
		}
	}
	return &PartitionSumsMessage{Records: out, Options: m.Options}, nil
}

var _ pkgkafka.MessageHandler = (*PartitionSumsHandler)(nil)
