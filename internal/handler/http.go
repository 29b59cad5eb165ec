package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/beanery/order-service/internal/auth"
	"github.com/beanery/order-service/internal/entities"
	"github.com/beanery/order-service/internal/service"
	"github.com/beanery/order-service/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type OrderService interface {
	CreateOrder(ctx context.Context, ownerID uuid.UUID, in service.CreateOrderInput) (entities.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (entities.Order, error)
	ListOwnOrders(ctx context.Context, ownerID uuid.UUID) ([]entities.Order, error)
	ListAllOrders(ctx context.Context, requester auth.Identity) ([]entities.Order, error)
	ConfirmPayment(ctx context.Context, orderID uuid.UUID, res entities.PaymentResult) (entities.Order, error)
	ConfirmDelivery(ctx context.Context, orderID uuid.UUID, images []string) error
	DeleteOrder(ctx context.Context, requester auth.Identity, orderID uuid.UUID) error
}

type AnalyticsService interface {
	Summary(ctx context.Context, requester auth.Identity) (entities.Summary, error)
}

type Middleware = func(next http.Handler) http.Handler

type HTTPHandler struct {
	logger    *slog.Logger
	validate  *validator.Validate
	orders    OrderService
	analytics AnalyticsService
	authMW    Middleware
	adminMW   Middleware
}

func NewHTTPHandler(logger *slog.Logger, orders OrderService, analytics AnalyticsService, authMW, adminMW Middleware) *HTTPHandler {
	return &HTTPHandler{
		logger:    logger.With(slog.String("handler", "http")),
		validate:  validator.New(),
		orders:    orders,
		analytics: analytics,
		authMW:    authMW,
		adminMW:   adminMW,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(h.authMW)

		r.With(h.adminMW).Get("/", h.ListAllOrders)
		r.Post("/", h.CreateOrder)
		r.With(h.adminMW).Get("/summary", h.GetSummary)
		r.Get("/mine", h.ListOwnOrders)
		r.Get("/{order_id}", h.GetOrder)
		r.Put("/{order_id}/pay", h.ConfirmPayment)
		r.Put("/{order_id}/deliver", h.ConfirmDelivery)
		r.With(h.adminMW).Delete("/{order_id}", h.DeleteOrder)
	})
}

// ListAllOrders возвращает все заказы с именем владельца.
// @Summary      Все заказы
// @Description  Возвращает все заказы магазина, только для админа
// @Tags         orders
// @Success      200  {array}   Order
// @Failure      401  {object}  utils.ErrorResponse
// @Failure      403  {object}  utils.ErrorResponse
// @Router       /api/orders [get]
func (h *HTTPHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := auth.FromContext(ctx)
	if !ok {
		utils.WriteError(w, "No Token", http.StatusUnauthorized)
		return
	}

	orders, err := h.orders.ListAllOrders(ctx, identity)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrdersEntityToJSON(orders), http.StatusOK)
}

// CreateOrder создаёт заказ от имени вызывающего.
// @Summary      Создать заказ
// @Description  Сохраняет новый оплаченный заказ и ставит письмо владельцу в очередь
// @Tags         orders
// @Param        request  body      CreateOrderRequest  true  "Заказ"
// @Success      201  {object}  CreatedOrderResponse
// @Failure      400  {object}  utils.ValidationErrorResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /api/orders [post]
func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := auth.FromContext(ctx)
	if !ok {
		utils.WriteError(w, "No Token", http.StatusUnauthorized)
		return
	}

	var req CreateOrderRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.orders.CreateOrder(ctx, identity.UserID, CreateRequestToInput(req))
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, CreatedOrderResponse{
		Message: "New Order Created",
		Order:   OrderEntityToJSON(order),
	}, http.StatusCreated)
}

// GetSummary возвращает аналитическую сводку.
// @Summary      Сводка продаж
// @Description  Общие суммы, ряд по дням и разбивка по категориям, только для админа
// @Tags         orders
// @Success      200  {object}  Summary
// @Failure      401  {object}  utils.ErrorResponse
// @Failure      403  {object}  utils.ErrorResponse
// @Router       /api/orders/summary [get]
func (h *HTTPHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := auth.FromContext(ctx)
	if !ok {
		utils.WriteError(w, "No Token", http.StatusUnauthorized)
		return
	}

	summary, err := h.analytics.Summary(ctx, identity)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, SummaryEntityToJSON(summary), http.StatusOK)
}

// ListOwnOrders возвращает заказы вызывающего.
// @Summary      Мои заказы
// @Tags         orders
// @Success      200  {array}   Order
// @Failure      401  {object}  utils.ErrorResponse
// @Router       /api/orders/mine [get]
func (h *HTTPHandler) ListOwnOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := auth.FromContext(ctx)
	if !ok {
		utils.WriteError(w, "No Token", http.StatusUnauthorized)
		return
	}

	orders, err := h.orders.ListOwnOrders(ctx, identity.UserID)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrdersEntityToJSON(orders), http.StatusOK)
}

// GetOrder возвращает заказ по id.
// @Summary      Получить заказ
// @Tags         orders
// @Param        order_id  path  string  true  "Идентификатор заказа"
// @Success      200  {object}  Order
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /api/orders/{order_id} [get]
func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		utils.WriteError(w, "Order Not Found", http.StatusNotFound)
		return
	}

	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// ConfirmPayment отмечает заказ оплаченным и сохраняет подтверждение провайдера.
// @Summary      Подтвердить оплату
// @Tags         orders
// @Param        order_id  path  string                 true  "Идентификатор заказа"
// @Param        request   body  ConfirmPaymentRequest  true  "Результат оплаты"
// @Success      200  {object}  CreatedOrderResponse
// @Failure      400  {object}  utils.ValidationErrorResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /api/orders/{order_id}/pay [put]
func (h *HTTPHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		utils.WriteError(w, "Order Not Found", http.StatusNotFound)
		return
	}

	var req ConfirmPaymentRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.orders.ConfirmPayment(ctx, orderID, PaymentRequestToEntity(req))
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, CreatedOrderResponse{
		Message: "Order Paid",
		Order:   OrderEntityToJSON(order),
	}, http.StatusOK)
}

// ConfirmDelivery отмечает заказ доставленным и перезаписывает снимки доставки.
// @Summary      Подтвердить доставку
// @Tags         orders
// @Param        order_id  path  string                  true  "Идентификатор заказа"
// @Param        request   body  ConfirmDeliveryRequest  true  "Снимки доставки"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  utils.ValidationErrorResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /api/orders/{order_id}/deliver [put]
func (h *HTTPHandler) ConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		utils.WriteError(w, "Order Not Found", http.StatusNotFound)
		return
	}

	var req ConfirmDeliveryRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	if err := h.orders.ConfirmDelivery(ctx, orderID, req.DeliveryImages); err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, MessageResponse{Message: "Order Delivered"}, http.StatusOK)
}

// DeleteOrder удаляет заказ навсегда.
// @Summary      Удалить заказ
// @Description  Только для админа
// @Tags         orders
// @Param        order_id  path  string  true  "Идентификатор заказа"
// @Success      200  {object}  MessageResponse
// @Failure      403  {object}  utils.ErrorResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /api/orders/{order_id} [delete]
func (h *HTTPHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := auth.FromContext(ctx)
	if !ok {
		utils.WriteError(w, "No Token", http.StatusUnauthorized)
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		utils.WriteError(w, "Order Not Found", http.StatusNotFound)
		return
	}

	if err := h.orders.DeleteOrder(ctx, identity, orderID); err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, MessageResponse{Message: "Order Deleted"}, http.StatusOK)
}

func (h *HTTPHandler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrOrderNotFound):
		utils.WriteError(w, "Order Not Found", http.StatusNotFound)
	case errors.Is(err, entities.ErrUserNotFound):
		utils.WriteError(w, "User Not Found", http.StatusNotFound)
	case errors.Is(err, entities.ErrForbidden):
		utils.WriteError(w, "Invalid Admin Token", http.StatusForbidden)
	case errors.Is(err, service.ErrInvalidOrder):
		utils.WriteError(w, "invalid order", http.StatusBadRequest)
	default:
		h.logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}
