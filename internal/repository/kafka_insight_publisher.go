package repository

import (
	"context"

	"EnergyView/internal/domain/models"
	domrepo "EnergyView/internal/domain/repository"
)

// messagePublisher is the part of pkg/kafka.Producer the publisher needs.
type messagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaInsightPublisher publishes InsightEvents keyed by source, so one
// source's insights stay ordered on a single partition.
type KafkaInsightPublisher struct {
	producer messagePublisher
	topic    string
}

func NewKafkaInsightPublisher(producer messagePublisher, topic string) *KafkaInsightPublisher {
	return &KafkaInsightPublisher{producer: producer, topic: topic}
}

func (p *KafkaInsightPublisher) PublishInsight(ctx context.Context, ev models.InsightEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Source), ev)
}

func (p *KafkaInsightPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.InsightPublisher = (*KafkaInsightPublisher)(nil)
