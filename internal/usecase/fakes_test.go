package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"EnergyView/internal/domain/models"
)

type fakeStore struct {
	h   *models.EnergyHistory
	err error
	got []models.HistoryQuery
}

func (f *fakeStore) Load(_ context.Context, q models.HistoryQuery) (*models.EnergyHistory, error) {
	f.got = append(f.got, q)
	return f.h, f.err
}

type fakeMetrics struct {
	mu      sync.Mutex
	charts  []string
	errs    []string
	ingests map[string]int
}

func (m *fakeMetrics) RecordChartBuilt(source, view string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.charts = append(m.charts, source+":"+view)
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, kind)
}

func (m *fakeMetrics) RecordRecordsIngested(source string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ingests == nil {
		m.ingests = map[string]int{}
	}
	m.ingests[source] += n
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

type fakePublisher struct {
	events []models.InsightEvent
	err    error
}

func (p *fakePublisher) PublishInsight(_ context.Context, ev models.InsightEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type fakeWriter struct {
	recs []models.PartitionSumRecord
	opts map[string][]models.PartitionOption
	err  error
}

func (w *fakeWriter) WritePartitionOptions(_ context.Context, source string, opts []models.PartitionOption) error {
	if w.opts == nil {
		w.opts = map[string][]models.PartitionOption{}
	}
	w.opts[source] = opts
	return w.err
}

func (w *fakeWriter) WritePartitionSums(_ context.Context, recs []models.PartitionSumRecord) error {
	w.recs = append(w.recs, recs...)
	return w.err
}

var errBoom = errors.New("boom")

// twoDayHistory is a four-partition scheme over two identical days.
func twoDayHistory() *models.EnergyHistory {
	day := []models.PartitionSum{
		{SumTotal: 300, SumActive: 100, SumPassive: 150, SumSpike: 50},
		{SumTotal: 800, SumActive: 500, SumPassive: 200, SumSpike: 100},
		{SumTotal: 1000, SumActive: 700, SumPassive: 200, SumSpike: 100},
		{SumTotal: 800, SumActive: 100, SumPassive: 600, SumSpike: 100},
	}
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.EnergyHistory{
		PartitionSums:  append(append([]models.PartitionSum{}, day...), day...),
		StartDateIndex: 0,
		EndDateIndex:   7,
		StartDate:      start,
		EndDate:        start.Add(48 * time.Hour),
		PartitionOptions: models.PartitionOptionList{Value: []models.PartitionOption{
			{Name: "Morning", Color: "hsl(30, 80%, 60%)", Start: 6},
			{Name: "Daytime", Color: "hsl(200, 70%, 55%)", Start: 9},
			{Name: "Evening", Color: "hsl(260, 60%, 50%)", Start: 17},
			{Name: "Night", Color: "hsl(230, 40%, 30%)", Start: 22},
		}},
	}
}
