package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EnergyView/internal/domain/errs"
	"EnergyView/internal/domain/models"
	"EnergyView/internal/service/ratelimit"
	"EnergyView/internal/services/partition"
	"EnergyView/internal/usecase"
	xhttp "EnergyView/pkg/http"
	applogger "EnergyView/pkg/logger"
	pkgmetrics "EnergyView/pkg/metrics"
)

type stubStore struct {
	h   *models.EnergyHistory
	err error
	got models.HistoryQuery
}

func (s *stubStore) Load(_ context.Context, q models.HistoryQuery) (*models.EnergyHistory, error) {
	s.got = q
	return s.h, s.err
}

type stubCheck struct{ err error }

func (c stubCheck) Health(context.Context) error { return c.err }

func oneDayHistory() *models.EnergyHistory {
	start := time.Date(2020, 1, 1, 7, 0, 0, 0, time.UTC)
	return &models.EnergyHistory{
		PartitionSums: []models.PartitionSum{
			{SumTotal: 1200, SumActive: 800, SumPassive: 300, SumSpike: 100},
			{SumTotal: 600, SumActive: 100, SumPassive: 450, SumSpike: 50},
		},
		StartDateIndex: 0,
		EndDateIndex:   1,
		StartDate:      start,
		EndDate:        start.Add(24 * time.Hour),
		PartitionOptions: models.PartitionOptionList{Value: []models.PartitionOption{
			{Name: "Day", Color: "hsl(40, 80%, 60%)", Start: 7},
			{Name: "Night", Color: "hsl(230, 40%, 30%)", Start: 19},
		}},
	}
}

func newTestServer(t *testing.T, store *stubStore) (*PieEchoHandler, http.Handler) {
	t.Helper()
	builder, err := usecase.NewPieChartBuilder("")
	require.NoError(t, err)
	rec := pkgmetrics.NewWithRegisterer(prometheus.NewRegistry())
	svc := usecase.NewHistoryService(store, builder, rec, applogger.Nop())
	h := NewPieEchoHandler(applogger.Nop(), svc, partition.Activity)
	srv := xhttp.NewServer(applogger.Nop(), []xhttp.Handler{h}, xhttp.WithMetricsPath(""))
	return h, srv.Echo()
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func get(t *testing.T, h http.Handler, target string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestPieDefaultsToActivityView(t *testing.T) {
	store := &stubStore{h: oneDayHistory()}
	_, srv := newTestServer(t, store)

	code, env := get(t, srv, "/api/pie")
	require.Equal(t, http.StatusOK, code)

	var data models.ChartData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "activity", data.View)
	assert.Equal(t, []string{"Day", "Night", usecase.PassiveLabel, usecase.ApplianceLabel}, data.Labels)
	assert.Equal(t, []float64{800, 100, 750, 150}, data.Values)
	assert.Len(t, data.Colors, 4)
	assert.Equal(t, "default", store.got.Source)
}

func TestPieParsesWindowAndView(t *testing.T) {
	store := &stubStore{h: oneDayHistory()}
	_, srv := newTestServer(t, store)

	code, env := get(t, srv, "/api/pie?source=house&view=total&from=2020-01-01T07:00:00Z&to=1577948400")
	require.Equal(t, http.StatusOK, code)

	var data models.ChartData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, []string{"Day", "Night"}, data.Labels)
	assert.Equal(t, []float64{1200, 600}, data.Values)
	assert.Equal(t, "house", store.got.Source)
	assert.Equal(t, time.Date(2020, 1, 1, 7, 0, 0, 0, time.UTC), store.got.From.UTC())
	assert.Equal(t, int64(1577948400), store.got.To.Unix())
}

func TestPieRejectsBadInput(t *testing.T) {
	_, srv := newTestServer(t, &stubStore{h: oneDayHistory()})

	for _, target := range []string{
		"/api/pie?view=bogus",
		"/api/pie?from=yesterday",
		"/api/pie?from=2020-01-02&to=2020-01-01",
	} {
		code, env := get(t, srv, target)
		assert.Equal(t, http.StatusBadRequest, code, target)
		assert.Equal(t, http.StatusBadRequest, env.Status, target)
	}
}

func TestPieMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("load: %w", errs.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("select: %w", errs.ErrRange), http.StatusBadRequest},
		{errors.New("clickhouse: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		_, srv := newTestServer(t, &stubStore{err: tc.err})
		code, _ := get(t, srv, "/api/pie?source=house")
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestSummaryAndViews(t *testing.T) {
	_, srv := newTestServer(t, &stubStore{h: oneDayHistory()})

	code, env := get(t, srv, "/api/pie/summary?source=house")
	require.Equal(t, http.StatusOK, code)
	var sum models.PieSummary
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	assert.Equal(t, "Day", sum.MostUsed)
	assert.Equal(t, "Day", sum.MostIntense)
	assert.Equal(t, 24, sum.WindowHours)

	code, env = get(t, srv, "/api/views")
	require.Equal(t, http.StatusOK, code)
	var views []models.ViewInfo
	require.NoError(t, json.Unmarshal(env.Data, &views))
	require.Len(t, views, 3)
	assert.Equal(t, "Intensity", views[2].Title)
}

func TestHealthReportsFailingDependency(t *testing.T) {
	h, srv := newTestServer(t, &stubStore{})
	h.AddHealthCheck("clickhouse", stubCheck{})
	h.AddHealthCheck("redis", stubCheck{err: errors.New("dial tcp: refused")})

	code, env := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	var st xhttp.HealthStatus
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, "degraded", st.Status)
	assert.Equal(t, "ok", st.Checks["clickhouse"])
}

func TestRateLimitRejectsBurst(t *testing.T) {
	h, srv := newTestServer(t, &stubStore{h: oneDayHistory()})
	h.SetRateLimiter(ratelimit.New(0.001, 2))

	for i := 0; i < 2; i++ {
		code, _ := get(t, srv, "/api/views")
		require.Equal(t, http.StatusOK, code)
	}
	code, _ := get(t, srv, "/api/views")
	assert.Equal(t, http.StatusTooManyRequests, code)

	// health is outside the limited group
	code, _ = get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, code)
}
