package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"EnergyView/internal/domain/errs"
	"EnergyView/internal/domain/models"
	domrepo "EnergyView/internal/domain/repository"
	xhttp "EnergyView/pkg/http"
	applogger "EnergyView/pkg/logger"
)

const (
	historyPath       = "/data/json"
	historyLatestPath = "/data/json/now"
)

// HTTPHistoryStore reads histories from an upstream history server that
// serves the EnergyHistory JSON document.
type HTTPHistoryStore struct {
	client *xhttp.Client
	l      *applogger.Logger
}

func NewHTTPHistoryStore(client *xhttp.Client, l *applogger.Logger) *HTTPHistoryStore {
	return &HTTPHistoryStore{client: client, l: l}
}

// Load asks /data/json for an explicit or full range, and /data/json/now when
// only a start is given.
func (s *HTTPHistoryStore) Load(ctx context.Context, q models.HistoryQuery) (*models.EnergyHistory, error) {
	path := historyPath
	params := map[string][]string{"source": {q.Source}}
	if !q.From.IsZero() {
		params["from"] = []string{strconv.FormatInt(q.From.Unix(), 10)}
	}
	if !q.To.IsZero() {
		params["to"] = []string{strconv.FormatInt(q.To.Unix(), 10)}
	} else if !q.From.IsZero() {
		path = historyLatestPath
	}

	var h models.EnergyHistory
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      http.MethodGet,
		URL:         path,
		QueryParams: params,
	}, &h)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("upstream history for %q: %w", q.Source, errs.ErrNotFound)
		}
		s.l.Error("upstream history request failed", applogger.String("source", q.Source), applogger.String("path", path), applogger.Error(err))
		return nil, fmt.Errorf("upstream history: %w", err)
	}

	if err := checkHistory(&h); err != nil {
		s.l.Warn("upstream history rejected", applogger.String("source", q.Source), applogger.Error(err))
		return nil, err
	}
	return &h, nil
}

// checkHistory rejects upstream documents the aggregation core cannot index.
func checkHistory(h *models.EnergyHistory) error {
	if len(h.Options()) == 0 {
		return fmt.Errorf("upstream history without partition options: %w", errs.ErrNotFound)
	}
	if len(h.PartitionSums) == 0 {
		return fmt.Errorf("upstream history without partition sums: %w", errs.ErrNotFound)
	}
	if h.StartDateIndex < 0 || h.StartDateIndex > h.EndDateIndex || h.EndDateIndex >= len(h.PartitionSums) {
		return fmt.Errorf("upstream history window [%d,%d] over %d sums: %w",
			h.StartDateIndex, h.EndDateIndex, len(h.PartitionSums), errs.ErrRange)
	}
	return nil
}

var _ domrepo.HistoryStore = (*HTTPHistoryStore)(nil)
