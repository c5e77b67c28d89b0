package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/roomplan-api/internal/dto"
	appErrors "github.com/noah-isme/roomplan-api/pkg/errors"
)

// LiveScheduleStore persists the rendered live schedule.
type LiveScheduleStore interface {
	Load(ctx context.Context) (*dto.LiveSchedule, error)
	Store(ctx context.Context, schedule *dto.LiveSchedule, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// CacheService wraps a LiveScheduleStore with hit/miss metrics. A nil or disabled
// service behaves as an always-missing cache.
type CacheService struct {
	store      LiveScheduleStore
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(store LiveScheduleStore, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{store: store, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.store != nil
}

// LoadSchedule returns the cached live schedule; nil without error is a miss.
func (s *CacheService) LoadSchedule(ctx context.Context) (*dto.LiveSchedule, error) {
	if !s.Enabled() {
		return nil, nil
	}
	start := time.Now()
	schedule, err := s.store.Load(ctx)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err == nil {
		return schedule, nil
	}
	if errors.Is(err, appErrors.ErrCacheMiss) {
		return nil, nil
	}
	s.logger.Warn("live schedule cache read failed", zap.Error(err))
	return nil, err
}

// StoreSchedule caches schedule. A non-positive ttl uses the default.
func (s *CacheService) StoreSchedule(ctx context.Context, schedule *dto.LiveSchedule, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.store.Store(ctx, schedule, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("live schedule cache write failed", zap.Error(err))
	}
	return err
}

// Invalidate drops the cached live schedule.
func (s *CacheService) Invalidate(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.store.Invalidate(ctx); err != nil {
		s.logger.Warn("live schedule cache invalidate failed", zap.Error(err))
		return err
	}
	return nil
}
