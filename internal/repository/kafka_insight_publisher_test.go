package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EnergyView/internal/domain/models"
)

type recordingProducer struct {
	topic  string
	key    []byte
	value  interface{}
	closed bool
}

func (p *recordingProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.topic, p.key, p.value = topic, key, value
	return nil
}

func (p *recordingProducer) Close() error {
	p.closed = true
	return nil
}

func TestKafkaInsightPublisherKeysBySource(t *testing.T) {
	prod := &recordingProducer{}
	p := NewKafkaInsightPublisher(prod, "energy.insights")
	ev := models.InsightEvent{Source: "house", MostUsed: "Evening", MostIntense: "Night", ComputedAt: time.Now()}

	require.NoError(t, p.PublishInsight(context.Background(), ev))
	assert.Equal(t, "energy.insights", prod.topic)
	assert.Equal(t, []byte("house"), prod.key)
	assert.Equal(t, ev, prod.value)

	require.NoError(t, p.Close())
	assert.True(t, prod.closed)
}
