package usecase

import (
	"context"
	"time"

	"EnergyView/internal/domain/models"
	domrepo "EnergyView/internal/domain/repository"
	"EnergyView/internal/services/partition"
	applogger "EnergyView/pkg/logger"
)

// HistoryService loads histories and feeds them through the pie chart builder.
type HistoryService struct {
	store   domrepo.HistoryStore
	builder *PieChartBuilder
	pub     domrepo.InsightPublisher
	metrics domrepo.Metrics
	l       *applogger.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewHistoryService(store domrepo.HistoryStore, builder *PieChartBuilder, metrics domrepo.Metrics, l *applogger.Logger) *HistoryService {
	return &HistoryService{store: store, builder: builder, metrics: metrics, l: l, timeout: 10 * time.Second, now: time.Now}
}

// SetPublisher enables insight events; nil disables them.
func (s *HistoryService) SetPublisher(p domrepo.InsightPublisher) { s.pub = p }

// Load fetches the history for q under the service timeout.
func (s *HistoryService) Load(ctx context.Context, q models.HistoryQuery) (*models.EnergyHistory, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	h, err := s.store.Load(ctx, q)
	s.metrics.RecordLatency("history_load_seconds", time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordError("history_load")
		return nil, err
	}
	return h, nil
}

// Chart loads the history for q and derives view from it.
func (s *HistoryService) Chart(ctx context.Context, q models.HistoryQuery, view partition.View) (*models.ChartData, error) {
	h, err := s.Load(ctx, q)
	if err != nil {
		return nil, err
	}
	data, err := s.builder.Build(h, view)
	if err != nil {
		s.metrics.RecordError("chart_build")
		return nil, err
	}
	s.metrics.RecordChartBuilt(q.Source, view.String())
	return data, nil
}

// Summary loads the history for q, names its dominant partitions and
// publishes the result when a publisher is configured.
func (s *HistoryService) Summary(ctx context.Context, q models.HistoryQuery) (*models.PieSummary, error) {
	h, err := s.Load(ctx, q)
	if err != nil {
		return nil, err
	}
	sum, err := s.builder.Summarize(h)
	if err != nil {
		s.metrics.RecordError("chart_summary")
		return nil, err
	}
	if s.pub != nil {
		ev := models.InsightEvent{
			Source:      q.Source,
			From:        h.StartDate,
			To:          h.EndDate,
			MostUsed:    sum.MostUsed,
			MostIntense: sum.MostIntense,
			ComputedAt:  s.now().UTC(),
		}
		if err := s.pub.PublishInsight(ctx, ev); err != nil {
			s.metrics.RecordError("insight_publish")
			if s.l != nil {
				s.l.Warn("insight publish failed", applogger.String("source", q.Source), applogger.Error(err))
			}
		}
	}
	return sum, nil
}

// Builder exposes the chart builder for sessions that recompute locally.
func (s *HistoryService) Builder() *PieChartBuilder { return s.builder }
