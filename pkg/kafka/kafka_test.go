package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	applogger "EnergyView/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error { return nil }

// memReader serves queued messages then blocks until ctx is done.
type memReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
}

func (r *memReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *memReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *memReader) Close() error { return nil }

func (r *memReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

type scriptedHandler struct {
	mu    sync.Mutex
	fails int
	calls int
	seen  []string
}

func (h *scriptedHandler) Topic() string { return "energy.partition-sums" }

func (h *scriptedHandler) Handle(_ context.Context, b []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if h.calls <= h.fails {
		return errors.New("store unavailable")
	}
	h.seen = append(h.seen, string(b))
	return nil
}

func withReader(r Reader) ConsumerOption {
	return func(c *ConsumerConfig) { c.newReader = func(string) Reader { return r } }
}

func withDLQWriter(w Writer) ConsumerOption {
	return func(c *ConsumerConfig) { c.dlqWriter = w }
}

func TestProducerEncodesJSON(t *testing.T) {
	w := &memWriter{}
	p := newProducer(w, "snappy")

	require.NoError(t, p.PublishMessage(context.Background(), "energy.insights", map[string]string{"most_used": "Evening"}))
	require.NoError(t, p.Publish(context.Background(), "raw", []byte("k"), []byte("v")))

	require.Len(t, w.msgs, 2)
	var got map[string]string
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "Evening", got["most_used"])
	assert.Equal(t, "energy.insights", w.msgs[0].Topic)
	assert.Equal(t, []byte("v"), w.msgs[1].Value)
}

func TestProducerWrapsWriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := newProducer(&memWriter{err: boom}, "snappy")
	err := p.PublishMessage(context.Background(), "t", "x")
	assert.ErrorIs(t, err, boom)
}

func TestConsumerRetriesThenCommits(t *testing.T) {
	r := &memReader{queue: []kafka.Message{{Partition: 0, Offset: 1, Value: []byte("a")}}}
	h := &scriptedHandler{fails: 2}
	c, err := NewConsumer(applogger.Nop(), withReader(r), WithConsumerRetry(3, time.Millisecond, 2*time.Millisecond))
	require.NoError(t, err)
	c.RegisterHandler(h)

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return r.commits() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Stop(context.Background()))

	assert.Equal(t, 3, h.calls)
	assert.Equal(t, []string{"a"}, h.seen)
}

func TestConsumerSendsExhaustedMessageToDLQ(t *testing.T) {
	r := &memReader{queue: []kafka.Message{{Partition: 1, Offset: 7, Value: []byte("bad")}}}
	dlq := &memWriter{}
	h := &scriptedHandler{fails: 100}
	c, err := NewConsumer(applogger.Nop(), withReader(r), withDLQWriter(dlq),
		WithConsumerDLQ("energy.partition-sums.dlq"),
		WithConsumerRetry(1, time.Millisecond, time.Millisecond))
	require.NoError(t, err)
	c.RegisterHandler(h)

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return r.commits() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Stop(context.Background()))

	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, "energy.partition-sums.dlq", dlq.msgs[0].Topic)
	assert.Equal(t, []byte("bad"), dlq.msgs[0].Value)
	assert.Equal(t, "source_topic", dlq.msgs[0].Headers[0].Key)
	assert.Equal(t, 2, h.calls)
}

func TestConsumerKeepsPartitionOrder(t *testing.T) {
	var queue []kafka.Message
	for i, v := range []string{"1", "2", "3", "4"} {
		queue = append(queue, kafka.Message{Partition: 0, Offset: int64(i), Value: []byte(v)})
	}
	r := &memReader{queue: queue}
	h := &scriptedHandler{}
	c, err := NewConsumer(applogger.Nop(), withReader(r), WithConsumerWorkers(4, 8))
	require.NoError(t, err)
	c.RegisterHandler(h)

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return r.commits() == 4 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Stop(context.Background()))

	assert.Equal(t, []string{"1", "2", "3", "4"}, h.seen)
}

func TestStartWithoutHandlers(t *testing.T) {
	c, err := NewConsumer(nil, withReader(&memReader{}))
	require.NoError(t, err)
	assert.Error(t, c.Start(context.Background()))
}

func TestBackoffWithJitterStaysInRange(t *testing.T) {
	for attempt := 1; attempt < 70; attempt++ {
		d := backoffWithJitter(100*time.Millisecond, time.Second, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, time.Second)
	}
}
