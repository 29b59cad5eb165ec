package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/beanery/order-service/internal/auth"
	"github.com/beanery/order-service/internal/entities"
)

type SummaryRepo interface {
	OrderTotals(ctx context.Context) ([]entities.OrderTotals, error)
	UserTotals(ctx context.Context) ([]entities.UserTotals, error)
	DailySales(ctx context.Context) ([]entities.DailySales, error)
	CategoryCounts(ctx context.Context) ([]entities.CategoryCount, error)
}

type analyticsService struct {
	logger *slog.Logger
	repo   SummaryRepo
}

func NewAnalyticsService(logger *slog.Logger, repo SummaryRepo) *analyticsService {
	return &analyticsService{
		logger: logger.With(slog.String("service", "analytics")),
		repo:   repo,
	}
}

// Summary пересчитывает сводку по живым данным на каждый запрос.
// Инкрементальных счётчиков нет: дашборд читается редко относительно записей.
func (s *analyticsService) Summary(ctx context.Context, requester auth.Identity) (entities.Summary, error) {
	if !requester.IsAdmin() {
		return entities.Summary{}, entities.ErrForbidden
	}

	orders, err := s.repo.OrderTotals(ctx)
	if err != nil {
		return entities.Summary{}, fmt.Errorf("failed to compute order totals: %w", err)
	}

	users, err := s.repo.UserTotals(ctx)
	if err != nil {
		return entities.Summary{}, fmt.Errorf("failed to compute user totals: %w", err)
	}

	daily, err := s.repo.DailySales(ctx)
	if err != nil {
		return entities.Summary{}, fmt.Errorf("failed to compute daily sales: %w", err)
	}

	categories, err := s.repo.CategoryCounts(ctx)
	if err != nil {
		return entities.Summary{}, fmt.Errorf("failed to compute category counts: %w", err)
	}

	return entities.Summary{
		Orders:            orders,
		Users:             users,
		DailyOrders:       daily,
		ProductCategories: categories,
	}, nil
}
