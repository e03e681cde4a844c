package service

import (
	"context"
	"fmt"
	"time"

	"sushishop/internal/cache"
	"sushishop/internal/model"
	"sushishop/internal/repository"

	"github.com/rs/zerolog"
)

const adminStatsKey = "stats:admin"

type StatisticsService interface {
	GetAdminStats(ctx context.Context) (model.AdminStats, error)
	// Invalidate drops the cached snapshot after a write that changes the counters
	Invalidate(ctx context.Context)
}

type statisticsService struct {
	repo  repository.StatisticsRepository
	cache cache.Store
	ttl   time.Duration
	now   func() time.Time
}

func NewStatisticsService(repo repository.StatisticsRepository, store cache.Store, ttl time.Duration) StatisticsService {
	if store == nil {
		store = cache.Nop{}
	}
	return &statisticsService{repo: repo, cache: store, ttl: ttl, now: time.Now}
}

// GetAdminStats serves the dashboard counters, from cache when fresh.
// Cache failures degrade to a direct query.
func (s *statisticsService) GetAdminStats(ctx context.Context) (model.AdminStats, error) {
	logger := zerolog.Ctx(ctx)

	var stats model.AdminStats
	hit, err := s.cache.GetJSON(ctx, adminStatsKey, &stats)
	if err != nil {
		logger.Warn().Err(err).Msg("stats cache read failed")
	}
	if hit {
		return stats, nil
	}

	stats, err = s.repo.AdminStats(ctx, s.now())
	if err != nil {
		return model.AdminStats{}, fmt.Errorf("failed to compute statistics: %w", err)
	}

	if s.ttl > 0 {
		if err := s.cache.SetJSON(ctx, adminStatsKey, stats, s.ttl); err != nil {
			logger.Warn().Err(err).Msg("stats cache write failed")
		}
	}
	return stats, nil
}

func (s *statisticsService) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, adminStatsKey); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("stats cache invalidation failed")
	}
}
