package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/beanery/order-service/internal/auth"
	"github.com/beanery/order-service/internal/entities"
	"github.com/beanery/order-service/pkg/trm"
	"github.com/google/uuid"
)

type OrderRepo interface {
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (entities.Order, error)
	OrdersByUser(ctx context.Context, userID uuid.UUID) ([]entities.Order, error)
	AllOrders(ctx context.Context) ([]entities.Order, error)

	SaveOrder(ctx context.Context, o entities.Order) error
	SaveOrderItems(ctx context.Context, orderID uuid.UUID, items []entities.OrderItem) error

	SetPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time, res entities.PaymentResult) error
	SetDelivered(ctx context.Context, orderID uuid.UUID, deliveredAt time.Time, images []string) error
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

type UserRepo interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (entities.User, error)
}

// Email — письмо для внешнего канала уведомлений
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Notifier принимает письмо без блокировки, доставка at-most-once
type Notifier interface {
	Enqueue(email Email)
}

var ErrInvalidOrder = errors.New("invalid order")

type CreateOrderInput struct {
	Items           []entities.OrderItem
	DispatchMethod  entities.DispatchMethod
	ShippingAddress *entities.ShippingAddress
	PaymentMethod   string
	ItemsPrice      float64
	ShippingPrice   float64
	TaxPrice        float64
	TotalPrice      float64
}

type orderService struct {
	logger    *slog.Logger
	txManager trm.Manager
	orders    OrderRepo
	users     UserRepo
	notifier  Notifier
}

func NewOrderService(logger *slog.Logger, txManager trm.Manager, orders OrderRepo, users UserRepo, notifier Notifier) *orderService {
	return &orderService{
		logger:    logger.With(slog.String("service", "order")),
		txManager: txManager,
		orders:    orders,
		users:     users,
		notifier:  notifier,
	}
}

// CreateOrder сохраняет новый заказ. Оплата захвачена до сохранения,
// поэтому заказ рождается сразу оплаченным.
func (s *orderService) CreateOrder(ctx context.Context, ownerID uuid.UUID, in CreateOrderInput) (entities.Order, error) {
	owner, err := s.users.GetUserByID(ctx, ownerID)
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to resolve owner: %w", err)
	}

	if len(in.Items) == 0 {
		return entities.Order{}, ErrInvalidOrder
	}
	if in.DispatchMethod == entities.DispatchDelivery && in.ShippingAddress == nil {
		return entities.Order{}, ErrInvalidOrder
	}

	now := time.Now().UTC()
	order := entities.Order{
		ID:              uuid.New(),
		UserID:          ownerID,
		DispatchMethod:  in.DispatchMethod,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Items:           in.Items,
		ItemsPrice:      in.ItemsPrice,
		ShippingPrice:   in.ShippingPrice,
		TaxPrice:        in.TaxPrice,
		TotalPrice:      in.TotalPrice,
		IsPaid:          true,
		PaidAt:          &now,
		DateCreated:     now,
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.orders.SaveOrder(ctx, order); err != nil {
			return err
		}
		return s.orders.SaveOrderItems(ctx, order.ID, order.Items)
	})
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to save order: %w", err)
	}

	s.notifier.Enqueue(Email{
		To:      mailbox(owner),
		Subject: fmt.Sprintf("New order %s", order.ID),
		HTML:    renderOrderEmail(order, owner),
	})

	s.logger.Debug("order created", slog.String("order_id", order.ID.String()))
	return order, nil
}

// GetOrder отдаёт заказ любому аутентифицированному пользователю,
// владение намеренно не проверяется
func (s *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (entities.Order, error) {
	return s.orders.GetOrderByID(ctx, orderID)
}

func (s *orderService) ListOwnOrders(ctx context.Context, ownerID uuid.UUID) ([]entities.Order, error) {
	return s.orders.OrdersByUser(ctx, ownerID)
}

func (s *orderService) ListAllOrders(ctx context.Context, requester auth.Identity) ([]entities.Order, error) {
	if !requester.IsAdmin() {
		return nil, entities.ErrForbidden
	}
	return s.orders.AllOrders(ctx)
}

// ConfirmPayment идемпотентен по состоянию, но каждый вызов снова ставит письмо в очередь
func (s *orderService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, res entities.PaymentResult) (entities.Order, error) {
	if err := s.orders.SetPaid(ctx, orderID, time.Now().UTC(), res); err != nil {
		return entities.Order{}, err
	}

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	owner, err := s.users.GetUserByID(ctx, order.UserID)
	if err != nil {
		// письмо не отправится, но оплата уже подтверждена
		s.logger.Error("failed to resolve owner for payment email",
			slog.String("order_id", orderID.String()), slog.Any("error", err))
		return order, nil
	}

	s.notifier.Enqueue(Email{
		To:      mailbox(owner),
		Subject: fmt.Sprintf("Order %s paid", order.ID),
		HTML:    renderOrderEmail(order, owner),
	})

	return order, nil
}

// ConfirmDelivery перезаписывает deliveredAt и снимки доставки, последний вызов выигрывает
func (s *orderService) ConfirmDelivery(ctx context.Context, orderID uuid.UUID, images []string) error {
	return s.orders.SetDelivered(ctx, orderID, time.Now().UTC(), images)
}

func (s *orderService) DeleteOrder(ctx context.Context, requester auth.Identity, orderID uuid.UUID) error {
	if !requester.IsAdmin() {
		return entities.ErrForbidden
	}
	return s.orders.DeleteOrder(ctx, orderID)
}

func mailbox(u entities.User) string {
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}
