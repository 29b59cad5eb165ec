package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/beanery/order-service/internal/auth"
	"github.com/beanery/order-service/internal/entities"
	"github.com/beanery/order-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSummaryRepo struct{ mock.Mock }

func (m *mockSummaryRepo) OrderTotals(ctx context.Context) ([]entities.OrderTotals, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]entities.OrderTotals)
	return rows, args.Error(1)
}

func (m *mockSummaryRepo) UserTotals(ctx context.Context) ([]entities.UserTotals, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]entities.UserTotals)
	return rows, args.Error(1)
}

func (m *mockSummaryRepo) DailySales(ctx context.Context) ([]entities.DailySales, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]entities.DailySales)
	return rows, args.Error(1)
}

func (m *mockSummaryRepo) CategoryCounts(ctx context.Context) ([]entities.CategoryCount, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]entities.CategoryCount)
	return rows, args.Error(1)
}

func TestAnalyticsService_Summary(t *testing.T) {
	admin := auth.Identity{Role: entities.RoleAdmin}
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	dbError := errors.New("db error")

	t.Run("forbidden for non-admin", func(t *testing.T) {
		repo := new(mockSummaryRepo)
		svc := service.NewAnalyticsService(testLogger(), repo)

		_, err := svc.Summary(context.Background(), auth.Identity{Role: entities.RoleCustomer})
		assert.ErrorIs(t, err, entities.ErrForbidden)
		repo.AssertNotCalled(t, "OrderTotals", mock.Anything)
	})

	t.Run("OK", func(t *testing.T) {
		repo := new(mockSummaryRepo)
		repo.On("OrderTotals", mock.Anything).
			Return([]entities.OrderTotals{{NumOrders: 3, TotalSales: 120.5}}, nil).Once()
		repo.On("UserTotals", mock.Anything).
			Return([]entities.UserTotals{{NumUsers: 7}}, nil).Once()
		repo.On("DailySales", mock.Anything).
			Return([]entities.DailySales{{Day: day, Orders: 2, Sales: 80}}, nil).Once()
		repo.On("CategoryCounts", mock.Anything).
			Return([]entities.CategoryCount{{Category: "Coffee", Count: 5}}, nil).Once()

		svc := service.NewAnalyticsService(testLogger(), repo)

		got, err := svc.Summary(context.Background(), admin)
		require.NoError(t, err)
		assert.Equal(t, []entities.OrderTotals{{NumOrders: 3, TotalSales: 120.5}}, got.Orders)
		assert.Equal(t, []entities.UserTotals{{NumUsers: 7}}, got.Users)
		assert.Equal(t, []entities.DailySales{{Day: day, Orders: 2, Sales: 80}}, got.DailyOrders)
		assert.Equal(t, []entities.CategoryCount{{Category: "Coffee", Count: 5}}, got.ProductCategories)

		repo.AssertExpectations(t)
	})

	// пустая витрина даёт пустые срезы, не nil-панику
	t.Run("empty store", func(t *testing.T) {
		repo := new(mockSummaryRepo)
		repo.On("OrderTotals", mock.Anything).Return([]entities.OrderTotals{}, nil).Once()
		repo.On("UserTotals", mock.Anything).Return([]entities.UserTotals{}, nil).Once()
		repo.On("DailySales", mock.Anything).Return([]entities.DailySales{}, nil).Once()
		repo.On("CategoryCounts", mock.Anything).Return([]entities.CategoryCount{}, nil).Once()

		svc := service.NewAnalyticsService(testLogger(), repo)

		got, err := svc.Summary(context.Background(), admin)
		require.NoError(t, err)
		assert.Empty(t, got.Orders)
		assert.Empty(t, got.Users)
		assert.Empty(t, got.DailyOrders)
		assert.Empty(t, got.ProductCategories)
	})

	t.Run("repo error", func(t *testing.T) {
		repo := new(mockSummaryRepo)
		repo.On("OrderTotals", mock.Anything).Return(nil, dbError).Once()

		svc := service.NewAnalyticsService(testLogger(), repo)

		_, err := svc.Summary(context.Background(), admin)
		assert.ErrorIs(t, err, dbError)
	})
}
