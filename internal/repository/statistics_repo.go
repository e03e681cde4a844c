package repository

import (
	"context"
	"fmt"
	"time"

	"sushishop/internal/model"

	"gorm.io/gorm"
)

// revenueStatuses are the order states counted as earned revenue
var revenueStatuses = []string{model.OrderStatusDelivered, model.OrderStatusConfirmed}

type StatisticsRepository interface {
	AdminStats(ctx context.Context, now time.Time) (model.AdminStats, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) AdminStats(ctx context.Context, now time.Time) (model.AdminStats, error) {
	var stats model.AdminStats
	db := GetDB(ctx, r.db)

	thirtyDaysAgo := now.AddDate(0, 0, -30)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	counts := []struct {
		name  string
		dest  *int64
		query *gorm.DB
	}{
		{"users", &stats.TotalUsers, db.Model(&model.User{}).Where("role = ?", model.RoleUser)},
		{"orders", &stats.TotalOrders, db.Model(&model.Order{})},
		{"products", &stats.TotalProducts, db.Model(&model.Product{}).Where("available = ?", true)},
		{"pending orders", &stats.PendingOrders, db.Model(&model.Order{}).Where("status = ?", model.OrderStatusPending)},
		{"active users", &stats.ActiveUsers, db.Model(&model.User{}).
			Where("role = ?", model.RoleUser).
			Where("EXISTS (SELECT 1 FROM orders WHERE orders.user_id = users.id AND orders.created_at >= ?)", thirtyDaysAgo)},
		{"new users", &stats.NewUsersThisMonth, db.Model(&model.User{}).
			Where("role = ? AND created_at >= ?", model.RoleUser, firstOfMonth)},
		{"admins", &stats.AdminCount, db.Model(&model.User{}).Where("role = ?", model.RoleAdmin)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return stats, fmt.Errorf("failed to count %s: %w", c.name, err)
		}
	}

	var revenue struct {
		Value float64
	}
	if err := db.Model(&model.Order{}).
		Select("COALESCE(SUM(total), 0) as value").
		Where("status IN ?", revenueStatuses).
		Scan(&revenue).Error; err != nil {
		return stats, fmt.Errorf("failed to sum revenue: %w", err)
	}
	stats.TotalRevenue = revenue.Value

	return stats, nil
}
