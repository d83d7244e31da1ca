package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	"FxPulse/pkg/cache"
	"FxPulse/pkg/logger"
)

// CachedSource decorates a MarketData source with a read-through cache.
// Daily bars only change once per session, so passes that run every few
// minutes mostly hit the cache.
type CachedSource struct {
	next  domrepo.MarketData
	cache cache.Service
	ttl   time.Duration
	l     *logger.Logger
}

var _ domrepo.MarketData = (*CachedSource)(nil)

func NewCachedSource(next domrepo.MarketData, c cache.Service, ttl time.Duration, l *logger.Logger) *CachedSource {
	if l == nil {
		l = logger.Nop()
	}
	return &CachedSource{next: next, cache: c, ttl: ttl, l: l}
}

// cacheKey appends the session bound for historical reads.
func cacheKey(kind, name string, n int, asOf time.Time) string {
	if asOf.IsZero() {
		return cache.Key(kind, name, strconv.Itoa(n))
	}
	return cache.Key(kind, name, strconv.Itoa(n), asOf.Format(time.DateOnly))
}

func (s *CachedSource) LatestBars(ctx context.Context, symbol string, n int, asOf time.Time) (models.BarWindow, error) {
	key := cacheKey("bars", symbol, n, asOf)

	var cached models.BarWindow
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	bars, err := s.next.LatestBars(ctx, symbol, n, asOf)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, bars)
	return bars, nil
}

func (s *CachedSource) LatestYields(ctx context.Context, series string, n int, asOf time.Time) ([]float64, error) {
	key := cacheKey("yields", series, n, asOf)

	var cached []float64
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	values, err := s.next.LatestYields(ctx, series, n, asOf)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, values)
	return values, nil
}

// Purge drops every cached bar and yield entry.
func (s *CachedSource) Purge(ctx context.Context) error {
	if err := s.cache.DeleteByPattern(ctx, "bars:*"); err != nil {
		return err
	}
	return s.cache.DeleteByPattern(ctx, "yields:*")
}

// cache failures degrade to a direct fetch
func (s *CachedSource) lookup(ctx context.Context, key string, dest interface{}) bool {
	err := s.cache.Get(ctx, key, dest)
	switch {
	case err == nil:
		s.l.Debug("market data cache hit", logger.String("key", key))
		return true
	case errors.Is(err, cache.ErrCacheMiss):
		return false
	default:
		s.l.Warn("market data cache get error", logger.String("key", key), logger.Error(err))
		return false
	}
}

func (s *CachedSource) store(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.l.Warn("market data cache set error", logger.String("key", key), logger.Error(err))
	}
}
