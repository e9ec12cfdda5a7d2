package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"
)

type StatsService struct {
	stats *repository.StatsRepository
	now   func() time.Time
}

func NewStatsService(stats *repository.StatsRepository) *StatsService {
	return &StatsService{stats: stats, now: time.Now}
}

// Dashboard returns the admin counters for today and the current month.
func (s *StatsService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	today := s.now()
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	stats, err := s.stats.Dashboard(ctx,
		today.Format(dateLayout),
		monthStart.Format(dateLayout),
		monthEnd.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard: %w", err)
	}
	return stats, nil
}
