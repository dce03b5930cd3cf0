package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"EnergyView/internal/domain/errs"
	"EnergyView/internal/domain/models"
	"EnergyView/internal/service/metrics"
	"EnergyView/internal/service/ratelimit"
	"EnergyView/internal/services/partition"
	"EnergyView/internal/usecase"
	xhttp "EnergyView/pkg/http"
	applogger "EnergyView/pkg/logger"
	"EnergyView/pkg/util"

	"github.com/labstack/echo/v4"
)

// HealthChecker is any dependency /healthz should probe.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// PieEchoHandler serves pie chart data computed from energy histories.
type PieEchoHandler struct {
	l           *applogger.Logger
	svc         *usecase.HistoryService
	defaultView partition.View
	rl          *ratelimit.Limiter
	checks      map[string]HealthChecker
}

func NewPieEchoHandler(l *applogger.Logger, svc *usecase.HistoryService, defaultView partition.View) *PieEchoHandler {
	metrics.Register()
	return &PieEchoHandler{l: l, svc: svc, defaultView: defaultView, checks: map[string]HealthChecker{}}
}

// SetRateLimiter throttles /api per client IP; nil disables it.
func (h *PieEchoHandler) SetRateLimiter(rl *ratelimit.Limiter) { h.rl = rl }

// AddHealthCheck registers a dependency probed by /healthz.
func (h *PieEchoHandler) AddHealthCheck(name string, c HealthChecker) { h.checks[name] = c }

func (h *PieEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api", h.rateLimit)
	g.GET("/pie", h.Pie)
	g.GET("/pie/summary", h.Summary)
	g.GET("/views", h.Views)
	e.GET("/healthz", h.Health)
}

func (h *PieEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.rl != nil && !h.rl.Allow(c.RealIP()) {
			metrics.RateLimited.Inc()
			h.l.Debug("api rate limited", applogger.String("remote", c.RealIP()))
			return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
		}
		return next(c)
	}
}

// Pie godoc
// @Summary  Pie chart data for one view of a history window
// @Param    source query string false "history source" default(default)
// @Param    from   query string false "window start, RFC3339 or unix seconds"
// @Param    to     query string false "window end, RFC3339 or unix seconds"
// @Param    view   query string false "total, activity or average"
// @Success  200 {object} xhttp.APIResponse{data=models.ChartData}
// @Failure  400 {object} xhttp.APIResponse400Err
// @Router   /api/pie [get]
func (h *PieEchoHandler) Pie(c echo.Context) error {
	const endpoint = "pie"
	start := time.Now()
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.PieRequest{View: h.defaultView.String()}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint, "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	q, verr := historyQuery(req.Source, req.From, req.To)
	if verr != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint, "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	view, err := partition.ParseView(req.View)
	if err != nil {
		return h.fail(c, endpoint, err)
	}

	data, err := h.svc.Chart(c.Request().Context(), q, view)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, data)
}

// Summary godoc
// @Summary  Most used and most intense partition of a history window
// @Success  200 {object} xhttp.APIResponse{data=models.PieSummary}
// @Router   /api/pie/summary [get]
func (h *PieEchoHandler) Summary(c echo.Context) error {
	const endpoint = "summary"
	start := time.Now()
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint, "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	q, verr := historyQuery(req.Source, req.From, req.To)
	if verr != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint, "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	sum, err := h.svc.Summary(c.Request().Context(), q)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, sum)
}

// Views lists the selectable views.
func (h *PieEchoHandler) Views(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.SuccessResponse(c, usecase.Views())
}

// Health probes every registered dependency.
func (h *PieEchoHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := xhttp.HealthStatus{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	code := http.StatusOK
	for name, chk := range h.checks {
		if err := chk.Health(ctx); err != nil {
			status.Status = "degraded"
			status.Checks[name] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		status.Checks[name] = "ok"
	}
	return xhttp.DataResponse(c, code, status)
}

func (h *PieEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	kind := "internal"
	switch {
	case errs.IsClientError(err):
		kind = "client"
		h.l.Debug("pie request rejected", applogger.String("endpoint", endpoint), applogger.Error(err))
	case errors.Is(err, errs.ErrNotFound):
		kind = "not_found"
	default:
		h.l.Error("pie usecase error", applogger.String("endpoint", endpoint), applogger.Error(err))
	}
	metrics.EndpointErrors.WithLabelValues(endpoint, kind).Inc()
	return xhttp.AppErrorResponse(c, err)
}

// historyQuery parses the optional from/to bounds of a request.
func historyQuery(source, from, to string) (models.HistoryQuery, []xhttp.ValidationError) {
	q := models.HistoryQuery{Source: source}
	var verrs []xhttp.ValidationError
	if from != "" {
		t, ok := util.ParseTime(from)
		if !ok {
			verrs = append(verrs, xhttp.ValidationError{Code: "ERR_TIME", Field: "from", Message: "from must be RFC3339, a date or unix seconds"})
		}
		q.From = t
	}
	if to != "" {
		t, ok := util.ParseTime(to)
		if !ok {
			verrs = append(verrs, xhttp.ValidationError{Code: "ERR_TIME", Field: "to", Message: "to must be RFC3339, a date or unix seconds"})
		}
		q.To = t
	}
	if verrs == nil && !q.From.IsZero() && !q.To.IsZero() && !q.To.After(q.From) {
		verrs = append(verrs, xhttp.ValidationError{Code: "ERR_RANGE", Field: "to", Message: "to must be after from"})
	}
	return q, verrs
}
