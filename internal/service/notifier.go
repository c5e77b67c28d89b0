package service

import (
	"context"

	"go.uber.org/zap"
)

type eventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// ChangeNotifier runs the side effects of a committed write: dropping cached
// live schedules and publishing a domain event. Failures are only logged.
type ChangeNotifier struct {
	cache     *CacheService
	publisher eventPublisher
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewChangeNotifier constructs a ChangeNotifier. cache, publisher and metrics may be nil.
func NewChangeNotifier(cache *CacheService, publisher eventPublisher, metrics *MetricsService, logger *zap.Logger) *ChangeNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeNotifier{cache: cache, publisher: publisher, metrics: metrics, logger: logger}
}

// Deleted records the rows removed by a cascade before notifying.
func (n *ChangeNotifier) Deleted(ctx context.Context, routingKey, entity string, rows int, payload interface{}) {
	if n == nil {
		return
	}
	n.metrics.RecordCascade(entity, rows)
	n.Notify(ctx, routingKey, payload)
}

// Notify invalidates the live cache and publishes payload under routingKey.
func (n *ChangeNotifier) Notify(ctx context.Context, routingKey string, payload interface{}) {
	if n == nil {
		return
	}
	if err := n.cache.Invalidate(ctx); err != nil {
		n.logger.Warn("live cache invalidation failed", zap.String("event", routingKey), zap.Error(err))
	}
	if n.publisher == nil {
		return
	}
	if err := n.publisher.Publish(ctx, routingKey, payload); err != nil {
		n.logger.Warn("event publish failed", zap.String("event", routingKey), zap.Error(err))
	}
}
