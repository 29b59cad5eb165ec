package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/beanery/order-service/internal/auth"
	"github.com/beanery/order-service/internal/entities"
	"github.com/beanery/order-service/internal/service"
	"github.com/beanery/order-service/pkg/trm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) GetOrderByID(ctx context.Context, orderID uuid.UUID) (entities.Order, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *mockOrderRepo) OrdersByUser(ctx context.Context, userID uuid.UUID) ([]entities.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]entities.Order)
	return orders, args.Error(1)
}

func (m *mockOrderRepo) AllOrders(ctx context.Context) ([]entities.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]entities.Order)
	return orders, args.Error(1)
}

func (m *mockOrderRepo) SaveOrder(ctx context.Context, o entities.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrderRepo) SaveOrderItems(ctx context.Context, orderID uuid.UUID, items []entities.OrderItem) error {
	return m.Called(ctx, orderID, items).Error(0)
}

func (m *mockOrderRepo) SetPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time, res entities.PaymentResult) error {
	return m.Called(ctx, orderID, paidAt, res).Error(0)
}

func (m *mockOrderRepo) SetDelivered(ctx context.Context, orderID uuid.UUID, deliveredAt time.Time, images []string) error {
	return m.Called(ctx, orderID, deliveredAt, images).Error(0)
}

func (m *mockOrderRepo) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	return m.Called(ctx, orderID).Error(0)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (entities.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(entities.User), args.Error(1)
}

// notifierRecorder запоминает поставленные в очередь письма
type notifierRecorder struct {
	emails []service.Email
}

func (n *notifierRecorder) Enqueue(email service.Email) {
	n.emails = append(n.emails, email)
}

// fakeTxManager выполняет колбэк без настоящей транзакции
type fakeTxManager struct{}

func (fakeTxManager) BeginTx(ctx context.Context) (context.Context, trm.Transaction, error) {
	return ctx, nil, nil
}

func (fakeTxManager) Do(ctx context.Context, callback func(ctx context.Context) error) error {
	return callback(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOrderService_CreateOrder(t *testing.T) {
	ownerID := uuid.New()
	owner := entities.User{ID: ownerID, Name: "Jane", Email: "jane@example.com", Role: entities.RoleCustomer}
	dbError := errors.New("db error")

	validInput := service.CreateOrderInput{
		Items: []entities.OrderItem{
			{ProductID: uuid.New(), Name: "Espresso Beans", Quantity: 2, UnitPrice: 12.5},
		},
		DispatchMethod: entities.DispatchCollection,
		PaymentMethod:  "PayPal",
		ItemsPrice:     25,
		TotalPrice:     25,
	}

	deliveryInput := validInput
	deliveryInput.DispatchMethod = entities.DispatchDelivery
	deliveryInput.ShippingAddress = nil

	testCases := []struct {
		name         string
		input        service.CreateOrderInput
		mockBehavior func(orders *mockOrderRepo, users *mockUserRepo)
		wantErr      error
		wantEmails   int
	}{
		{
			name:  "OK",
			input: validInput,
			mockBehavior: func(orders *mockOrderRepo, users *mockUserRepo) {
				users.On("GetUserByID", mock.Anything, ownerID).Return(owner, nil).Once()
				orders.On("SaveOrder", mock.Anything, mock.Anything).Return(nil).Once()
				orders.On("SaveOrderItems", mock.Anything, mock.Anything, validInput.Items).Return(nil).Once()
			},
			wantEmails: 1,
		},
		{
			name:  "owner not found",
			input: validInput,
			mockBehavior: func(orders *mockOrderRepo, users *mockUserRepo) {
				users.On("GetUserByID", mock.Anything, ownerID).
					Return(entities.User{}, entities.ErrUserNotFound).Once()
			},
			wantErr: entities.ErrUserNotFound,
		},
		{
			name:  "no items",
			input: service.CreateOrderInput{DispatchMethod: entities.DispatchCollection},
			mockBehavior: func(orders *mockOrderRepo, users *mockUserRepo) {
				users.On("GetUserByID", mock.Anything, ownerID).Return(owner, nil).Once()
			},
			wantErr: service.ErrInvalidOrder,
		},
		{
			name:  "delivery without address",
			input: deliveryInput,
			mockBehavior: func(orders *mockOrderRepo, users *mockUserRepo) {
				users.On("GetUserByID", mock.Anything, ownerID).Return(owner, nil).Once()
			},
			wantErr: service.ErrInvalidOrder,
		},
		{
			name:  "save fails",
			input: validInput,
			mockBehavior: func(orders *mockOrderRepo, users *mockUserRepo) {
				users.On("GetUserByID", mock.Anything, ownerID).Return(owner, nil).Once()
				orders.On("SaveOrder", mock.Anything, mock.Anything).Return(dbError).Once()
			},
			wantErr: dbError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			orders := new(mockOrderRepo)
			users := new(mockUserRepo)
			notifier := new(notifierRecorder)
			tc.mockBehavior(orders, users)

			svc := service.NewOrderService(testLogger(), fakeTxManager{}, orders, users, notifier)

			got, err := svc.CreateOrder(context.Background(), ownerID, tc.input)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, notifier.emails)
			} else {
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, got.ID)
				assert.Equal(t, ownerID, got.UserID)
				assert.True(t, got.IsPaid)
				require.NotNil(t, got.PaidAt)
				assert.False(t, got.DateCreated.IsZero())
				assert.Len(t, notifier.emails, tc.wantEmails)
				assert.Equal(t, "Jane <jane@example.com>", notifier.emails[0].To)
			}

			orders.AssertExpectations(t)
			users.AssertExpectations(t)
		})
	}
}

func TestOrderService_CreateOrder_UniqueIDs(t *testing.T) {
	ownerID := uuid.New()
	owner := entities.User{ID: ownerID, Name: "Jane", Email: "jane@example.com"}

	orders := new(mockOrderRepo)
	users := new(mockUserRepo)
	users.On("GetUserByID", mock.Anything, ownerID).Return(owner, nil)
	orders.On("SaveOrder", mock.Anything, mock.Anything).Return(nil)
	orders.On("SaveOrderItems", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := service.NewOrderService(testLogger(), fakeTxManager{}, orders, users, new(notifierRecorder))

	input := service.CreateOrderInput{
		Items:          []entities.OrderItem{{ProductID: uuid.New(), Name: "Mug", Quantity: 1, UnitPrice: 8}},
		DispatchMethod: entities.DispatchCollection,
		PaymentMethod:  "PayPal",
	}

	first, err := svc.CreateOrder(context.Background(), ownerID, input)
	require.NoError(t, err)
	second, err := svc.CreateOrder(context.Background(), ownerID, input)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestOrderService_ConfirmPayment(t *testing.T) {
	orderID := uuid.New()
	ownerID := uuid.New()
	owner := entities.User{ID: ownerID, Name: "Jane", Email: "jane@example.com"}
	paidOrder := entities.Order{ID: orderID, UserID: ownerID, IsPaid: true}
	res := entities.PaymentResult{ExternalID: "PAY-1", Status: "COMPLETED"}

	testCases := []struct {
		name         string
		mockBehavior func(orders *mockOrderRepo, users *mockUserRepo)
		wantErr      error
		wantEmails   int
	}{
		{
			name: "OK",
			mockBehavior: func(orders *mockOrderRepo, users *mockUserRepo) {
				orders.On("SetPaid", mock.Anything, orderID, mock.Anything, res).Return(nil).Once()
				orders.On("GetOrderByID", mock.Anything, orderID).Return(paidOrder, nil).Once()
				users.On("GetUserByID", mock.Anything, ownerID).Return(owner, nil).Once()
			},
			wantEmails: 1,
		},
		{
			name: "order not found",
			mockBehavior: func(orders *mockOrderRepo, users *mockUserRepo) {
				orders.On("SetPaid", mock.Anything, orderID, mock.Anything, res).
					Return(entities.ErrOrderNotFound).Once()
			},
			wantErr: entities.ErrOrderNotFound,
		},
		{
			name: "owner lookup fails, payment still confirmed",
			mockBehavior: func(orders *mockOrderRepo, users *mockUserRepo) {
				orders.On("SetPaid", mock.Anything, orderID, mock.Anything, res).Return(nil).Once()
				orders.On("GetOrderByID", mock.Anything, orderID).Return(paidOrder, nil).Once()
				users.On("GetUserByID", mock.Anything, ownerID).
					Return(entities.User{}, entities.ErrUserNotFound).Once()
			},
			wantEmails: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			orders := new(mockOrderRepo)
			users := new(mockUserRepo)
			notifier := new(notifierRecorder)
			tc.mockBehavior(orders, users)

			svc := service.NewOrderService(testLogger(), fakeTxManager{}, orders, users, notifier)

			got, err := svc.ConfirmPayment(context.Background(), orderID, res)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, paidOrder, got)
				assert.Len(t, notifier.emails, tc.wantEmails)
			}

			orders.AssertExpectations(t)
			users.AssertExpectations(t)
		})
	}
}

// повторное подтверждение оплаты снова ставит письмо в очередь
func TestOrderService_ConfirmPayment_Repeated(t *testing.T) {
	orderID := uuid.New()
	ownerID := uuid.New()
	owner := entities.User{ID: ownerID, Name: "Jane", Email: "jane@example.com"}
	paidOrder := entities.Order{ID: orderID, UserID: ownerID, IsPaid: true}
	res := entities.PaymentResult{ExternalID: "PAY-1", Status: "COMPLETED"}

	orders := new(mockOrderRepo)
	users := new(mockUserRepo)
	notifier := new(notifierRecorder)
	orders.On("SetPaid", mock.Anything, orderID, mock.Anything, res).Return(nil).Twice()
	orders.On("GetOrderByID", mock.Anything, orderID).Return(paidOrder, nil).Twice()
	users.On("GetUserByID", mock.Anything, ownerID).Return(owner, nil).Twice()

	svc := service.NewOrderService(testLogger(), fakeTxManager{}, orders, users, notifier)

	for i := 0; i < 2; i++ {
		_, err := svc.ConfirmPayment(context.Background(), orderID, res)
		require.NoError(t, err)
	}

	assert.Len(t, notifier.emails, 2)
}

func TestOrderService_ConfirmDelivery(t *testing.T) {
	orderID := uuid.New()
	images := []string{"a.jpg", "b.jpg"}

	orders := new(mockOrderRepo)
	orders.On("SetDelivered", mock.Anything, orderID, mock.Anything, images).Return(nil).Once()
	orders.On("SetDelivered", mock.Anything, orderID, mock.Anything, []string{"c.jpg"}).Return(nil).Once()

	svc := service.NewOrderService(testLogger(), fakeTxManager{}, orders, new(mockUserRepo), new(notifierRecorder))

	require.NoError(t, svc.ConfirmDelivery(context.Background(), orderID, images))
	// последний вызов перезаписывает снимки
	require.NoError(t, svc.ConfirmDelivery(context.Background(), orderID, []string{"c.jpg"}))

	orders.AssertExpectations(t)
}

func TestOrderService_ListAllOrders(t *testing.T) {
	all := []entities.Order{{ID: uuid.New()}, {ID: uuid.New()}}

	orders := new(mockOrderRepo)
	orders.On("AllOrders", mock.Anything).Return(all, nil).Once()

	svc := service.NewOrderService(testLogger(), fakeTxManager{}, orders, new(mockUserRepo), new(notifierRecorder))

	_, err := svc.ListAllOrders(context.Background(), auth.Identity{Role: entities.RoleCustomer})
	assert.ErrorIs(t, err, entities.ErrForbidden)

	got, err := svc.ListAllOrders(context.Background(), auth.Identity{Role: entities.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, all, got)
}

func TestOrderService_DeleteOrder(t *testing.T) {
	orderID := uuid.New()

	orders := new(mockOrderRepo)
	orders.On("DeleteOrder", mock.Anything, orderID).Return(nil).Once()

	svc := service.NewOrderService(testLogger(), fakeTxManager{}, orders, new(mockUserRepo), new(notifierRecorder))

	err := svc.DeleteOrder(context.Background(), auth.Identity{Role: entities.RoleCustomer}, orderID)
	assert.ErrorIs(t, err, entities.ErrForbidden)

	err = svc.DeleteOrder(context.Background(), auth.Identity{Role: entities.RoleAdmin}, orderID)
	require.NoError(t, err)

	orders.AssertExpectations(t)
}

func TestOrderService_GetOrder(t *testing.T) {
	orderID := uuid.New()

	orders := new(mockOrderRepo)
	orders.On("GetOrderByID", mock.Anything, orderID).
		Return(entities.Order{}, entities.ErrOrderNotFound).Once()

	svc := service.NewOrderService(testLogger(), fakeTxManager{}, orders, new(mockUserRepo), new(notifierRecorder))

	_, err := svc.GetOrder(context.Background(), orderID)
	assert.ErrorIs(t, err, entities.ErrOrderNotFound)
}
