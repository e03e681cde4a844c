package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"sushishop/internal/cache"
	"sushishop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCache is an in-process cache.Store
type mapCache struct {
	entries map[string][]byte
}

var _ cache.Store = (*mapCache)(nil)

func (c *mapCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *mapCache) Ping(context.Context) error { return nil }

func TestAdminStats_CachedUntilInvalidated(t *testing.T) {
	repo := &stubStatsRepo{stats: model.AdminStats{TotalUsers: 4, TotalOrders: 9, TotalRevenue: 12500.5}}
	store := &mapCache{entries: make(map[string][]byte)}
	svc := NewStatisticsService(repo, store, time.Minute)
	ctx := context.Background()

	first, err := svc.GetAdminStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 9, first.TotalOrders)

	repo.stats.TotalOrders = 10
	second, err := svc.GetAdminStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 9, second.TotalOrders)
	assert.Equal(t, 1, repo.calls)

	svc.Invalidate(ctx)
	third, err := svc.GetAdminStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 10, third.TotalOrders)
	assert.InDelta(t, 12500.5, third.TotalRevenue, 1e-9)
	assert.Equal(t, 2, repo.calls)
}

func TestAdminStats_WithoutCache(t *testing.T) {
	repo := &stubStatsRepo{stats: model.AdminStats{AdminCount: 1}}
	svc := NewStatisticsService(repo, nil, time.Minute)

	for i := 0; i < 2; i++ {
		stats, err := svc.GetAdminStats(context.Background())
		require.NoError(t, err)
		assert.EqualValues(t, 1, stats.AdminCount)
	}
	assert.Equal(t, 2, repo.calls)
}
