package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/roomplan-api/internal/dto"
	appErrors "github.com/noah-isme/roomplan-api/pkg/errors"
)

// LiveScheduleKey holds the rendered live schedule. Every write to buildings,
// rooms, teachers or bookings deletes it.
const LiveScheduleKey = "live:schedule"

// LiveScheduleCache keeps the most recent live schedule in Redis.
type LiveScheduleCache struct {
	client *redis.Client
}

// NewLiveScheduleCache constructs the cache. A nil client yields a cache that always misses.
func NewLiveScheduleCache(client *redis.Client) *LiveScheduleCache {
	return &LiveScheduleCache{client: client}
}

// Load returns the cached schedule or appErrors.ErrCacheMiss.
func (c *LiveScheduleCache) Load(ctx context.Context) (*dto.LiveSchedule, error) {
	if c.client == nil {
		return nil, appErrors.ErrCacheMiss
	}
	raw, err := c.client.Get(ctx, LiveScheduleKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, appErrors.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", LiveScheduleKey, err)
	}
	return decodeLiveSchedule(raw)
}

// Store replaces the cached schedule.
func (c *LiveScheduleCache) Store(ctx context.Context, schedule *dto.LiveSchedule, ttl time.Duration) error {
	if c.client == nil || schedule == nil {
		return nil
	}
	payload, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("encode live schedule: %w", err)
	}
	if err := c.client.Set(ctx, LiveScheduleKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", LiveScheduleKey, err)
	}
	return nil
}

// Invalidate drops the cached schedule.
func (c *LiveScheduleCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, LiveScheduleKey).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", LiveScheduleKey, err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *LiveScheduleCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func decodeLiveSchedule(raw []byte) (*dto.LiveSchedule, error) {
	var schedule dto.LiveSchedule
	if err := json.Unmarshal(raw, &schedule); err != nil {
		// A payload from an older layout is treated as absent.
		return nil, fmt.Errorf("%w: decode live schedule: %v", appErrors.ErrCacheMiss, err)
	}
	return &schedule, nil
}
