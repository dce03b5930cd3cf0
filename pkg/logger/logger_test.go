package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]DigestEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]DigestEntry))
	return nil
}

func TestLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.InfoLevel).With(String("component", "test"))

	l.Debug("hidden")
	l.Info("chart built", String("view", "activity"), Int("slices", 6), Float64("total", 1.5), Bool("cached", true))

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m))
	assert.Equal(t, "chart built", m["message"])
	assert.Equal(t, "activity", m["view"])
	assert.Equal(t, "test", m["component"])
	assert.EqualValues(t, 6, m["slices"])
	assert.Equal(t, true, m["cached"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestDigestDeduplicatesAndFlushes(t *testing.T) {
	pub := &capturePublisher{}
	l := Nop()
	l.AttachDigest(&DigestConfig{Interval: time.Hour, Threshold: 100, Topic: "energy.log-digest", Publisher: pub})

	for i := 0; i < 3; i++ {
		l.Error("history load failed", Error(errors.New("upstream down")))
	}
	l.Warn("slow upstream")
	l.Info("not collected")
	l.DetachDigest()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.batches, 1)
	assert.Equal(t, "energy.log-digest", pub.topic)
	batch := pub.batches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "history load failed", batch[0].Message)
	assert.Equal(t, 3, batch[0].Count)
	assert.Equal(t, "warn", batch[1].Level)
}
