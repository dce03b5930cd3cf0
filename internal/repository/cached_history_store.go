package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"EnergyView/internal/domain/models"
	domrepo "EnergyView/internal/domain/repository"
	icache "EnergyView/internal/service/cache"
	applogger "EnergyView/pkg/logger"
)

// CachedHistoryStore serves repeated history loads from a BytesCache. Cache
// failures are logged and fall through to the wrapped store.
type CachedHistoryStore struct {
	next  domrepo.HistoryStore
	cache icache.BytesCache
	ttl   time.Duration
	l     *applogger.Logger
}

func NewCachedHistoryStore(next domrepo.HistoryStore, cache icache.BytesCache, ttl time.Duration, l *applogger.Logger) *CachedHistoryStore {
	return &CachedHistoryStore{next: next, cache: cache, ttl: ttl, l: l}
}

func historyKey(q models.HistoryQuery) string {
	unix := func(t time.Time) int64 {
		if t.IsZero() {
			return 0
		}
		return t.Unix()
	}
	return fmt.Sprintf("history:%s:%d:%d", q.Source, unix(q.From), unix(q.To))
}

func (s *CachedHistoryStore) Load(ctx context.Context, q models.HistoryQuery) (*models.EnergyHistory, error) {
	key := historyKey(q)
	if b, ok, err := s.cache.GetBytes(ctx, key); err != nil {
		s.l.Warn("history cache read failed", applogger.String("key", key), applogger.Error(err))
	} else if ok {
		var h models.EnergyHistory
		if err := json.Unmarshal(b, &h); err == nil {
			return &h, nil
		}
		s.l.Warn("history cache entry corrupt", applogger.String("key", key))
	}

	h, err := s.next.Load(ctx, q)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(h); err == nil {
		if err := s.cache.SetBytes(ctx, key, b, s.ttl); err != nil {
			s.l.Warn("history cache write failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return h, nil
}

var _ domrepo.HistoryStore = (*CachedHistoryStore)(nil)
