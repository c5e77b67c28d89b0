package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roomplan-api/internal/dto"
	appErrors "github.com/noah-isme/roomplan-api/pkg/errors"
)

func TestLiveScheduleCacheWithoutClient(t *testing.T) {
	cache := NewLiveScheduleCache(nil)
	ctx := context.Background()

	_, err := cache.Load(ctx)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.NoError(t, cache.Store(ctx, &dto.LiveSchedule{}, time.Minute))
	assert.NoError(t, cache.Invalidate(ctx))
	assert.NoError(t, cache.Close())
}

func TestLiveScheduleCacheReportsUnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	cache := NewLiveScheduleCache(client)
	defer cache.Close()
	ctx := context.Background()

	_, err := cache.Load(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Contains(t, err.Error(), "redis get "+LiveScheduleKey)

	err = cache.Invalidate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis del "+LiveScheduleKey)
}

func TestDecodeLiveSchedule(t *testing.T) {
	schedule, err := decodeLiveSchedule([]byte(`{"timezone":"Europe/Berlin","refresh_seconds":30,"days":[{"date":"2026-03-02","entries":[{"id":"bk-1","current":true}]}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", schedule.Timezone)
	require.Len(t, schedule.Days, 1)
	assert.True(t, schedule.Days[0].Entries[0].Current)

	_, err = decodeLiveSchedule([]byte(`["not a schedule"]`))
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}
