package handler

import (
	"time"

	"github.com/beanery/order-service/internal/entities"
	"github.com/beanery/order-service/internal/service"
	"github.com/google/uuid"
)

// CreateOrderRequest — строгая схема создания заказа
type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest `json:"orderItems" validate:"required,min=1,dive"`
	DispatchMethod  string             `json:"dispatchMethod" validate:"required,oneof=Delivery Collection"`
	ShippingAddress *ShippingAddress   `json:"shippingAddress" validate:"required_if=DispatchMethod Delivery"`
	PaymentMethod   string             `json:"paymentMethod" validate:"required"`
	ItemsPrice      float64            `json:"itemsPrice" validate:"gte=0"`
	ShippingPrice   float64            `json:"shippingPrice" validate:"gte=0"`
	TaxPrice        float64            `json:"taxPrice" validate:"gte=0"`
	TotalPrice      float64            `json:"totalPrice" validate:"gte=0"`
}

type OrderItemRequest struct {
	Product  string  `json:"product" validate:"required,uuid"`
	Name     string  `json:"name" validate:"required"`
	Quantity int     `json:"quantity" validate:"required,gt=0"`
	Price    float64 `json:"price" validate:"gte=0"`
	Image    string  `json:"image"`
}

type ShippingAddress struct {
	FullName   string `json:"fullName" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// ConfirmPaymentRequest — подтверждение от платёжного провайдера
type ConfirmPaymentRequest struct {
	ID           string `json:"id" validate:"required"`
	Status       string `json:"status" validate:"required"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address" validate:"omitempty,email"`
}

type ConfirmDeliveryRequest struct {
	DeliveryImages []string `json:"deliveryImages" validate:"required"`
}

// Order — заказ в ответе API
type Order struct {
	ID              string           `json:"id"`
	User            string           `json:"user"`
	UserName        string           `json:"userName,omitempty"`
	OrderItems      []OrderItem      `json:"orderItems"`
	DispatchMethod  string           `json:"dispatchMethod"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
	PaymentMethod   string           `json:"paymentMethod"`
	ItemsPrice      float64          `json:"itemsPrice"`
	ShippingPrice   float64          `json:"shippingPrice"`
	TaxPrice        float64          `json:"taxPrice"`
	TotalPrice      float64          `json:"totalPrice"`
	IsPaid          bool             `json:"isPaid"`
	PaidAt          *time.Time       `json:"paidAt,omitempty"`
	PaymentResult   *PaymentResult   `json:"paymentResult,omitempty"`
	IsDelivered     bool             `json:"isDelivered"`
	DeliveredAt     *time.Time       `json:"deliveredAt,omitempty"`
	DeliveryImages  []string         `json:"deliveryImages,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

type OrderItem struct {
	Product  string  `json:"product"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
}

type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
}

// MessageResponse — подтверждение операции
type MessageResponse struct {
	Message string `json:"message"`
}

type CreatedOrderResponse struct {
	Message string `json:"message"`
	Order   Order  `json:"order"`
}

// Summary — аналитическая сводка для дашборда
type Summary struct {
	Orders            []OrderTotals   `json:"orders"`
	Users             []UserTotals    `json:"users"`
	DailyOrders       []DailySales    `json:"dailyOrders"`
	ProductCategories []CategoryCount `json:"productCategories"`
}

type OrderTotals struct {
	NumOrders  int     `json:"numOrders"`
	TotalSales float64 `json:"totalSales"`
}

type UserTotals struct {
	NumUsers int `json:"numUsers"`
}

type DailySales struct {
	Day    string  `json:"day"`
	Orders int     `json:"orders"`
	Sales  float64 `json:"sales"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

func CreateRequestToInput(req CreateOrderRequest) service.CreateOrderInput {
	items := make([]entities.OrderItem, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		items = append(items, entities.OrderItem{
			// uuid уже проверен валидатором
			ProductID: uuid.MustParse(it.Product),
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			Image:     it.Image,
		})
	}

	in := service.CreateOrderInput{
		Items:          items,
		DispatchMethod: entities.DispatchMethod(req.DispatchMethod),
		PaymentMethod:  req.PaymentMethod,
		ItemsPrice:     req.ItemsPrice,
		ShippingPrice:  req.ShippingPrice,
		TaxPrice:       req.TaxPrice,
		TotalPrice:     req.TotalPrice,
	}

	if req.ShippingAddress != nil {
		in.ShippingAddress = &entities.ShippingAddress{
			FullName:   req.ShippingAddress.FullName,
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		}
	}

	return in
}

func PaymentRequestToEntity(req ConfirmPaymentRequest) entities.PaymentResult {
	return entities.PaymentResult{
		ExternalID: req.ID,
		Status:     req.Status,
		UpdateTime: req.UpdateTime,
		PayerEmail: req.EmailAddress,
	}
}

func OrderEntityToJSON(o entities.Order) Order {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItem{
			Product:  it.ProductID.String(),
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.UnitPrice,
			Image:    it.Image,
		})
	}

	order := Order{
		ID:             o.ID.String(),
		User:           o.UserID.String(),
		UserName:       o.OwnerName,
		OrderItems:     items,
		DispatchMethod: string(o.DispatchMethod),
		PaymentMethod:  o.PaymentMethod,
		ItemsPrice:     o.ItemsPrice,
		ShippingPrice:  o.ShippingPrice,
		TaxPrice:       o.TaxPrice,
		TotalPrice:     o.TotalPrice,
		IsPaid:         o.IsPaid,
		PaidAt:         o.PaidAt,
		IsDelivered:    o.IsDelivered,
		DeliveredAt:    o.DeliveredAt,
		DeliveryImages: o.DeliveryImages,
		CreatedAt:      o.DateCreated,
	}

	if o.ShippingAddress != nil {
		order.ShippingAddress = &ShippingAddress{
			FullName:   o.ShippingAddress.FullName,
			Address:    o.ShippingAddress.Address,
			City:       o.ShippingAddress.City,
			PostalCode: o.ShippingAddress.PostalCode,
			Country:    o.ShippingAddress.Country,
		}
	}

	if o.PaymentResult != nil {
		order.PaymentResult = &PaymentResult{
			ID:           o.PaymentResult.ExternalID,
			Status:       o.PaymentResult.Status,
			UpdateTime:   o.PaymentResult.UpdateTime,
			EmailAddress: o.PaymentResult.PayerEmail,
		}
	}

	return order
}

func OrdersEntityToJSON(orders []entities.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderEntityToJSON(o))
	}
	return result
}

func SummaryEntityToJSON(s entities.Summary) Summary {
	summary := Summary{
		Orders:            make([]OrderTotals, 0, len(s.Orders)),
		Users:             make([]UserTotals, 0, len(s.Users)),
		DailyOrders:       make([]DailySales, 0, len(s.DailyOrders)),
		ProductCategories: make([]CategoryCount, 0, len(s.ProductCategories)),
	}

	for _, row := range s.Orders {
		summary.Orders = append(summary.Orders, OrderTotals{NumOrders: row.NumOrders, TotalSales: row.TotalSales})
	}
	for _, row := range s.Users {
		summary.Users = append(summary.Users, UserTotals{NumUsers: row.NumUsers})
	}
	for _, row := range s.DailyOrders {
		summary.DailyOrders = append(summary.DailyOrders, DailySales{
			Day:    row.Day.Format("2006-01-02"),
			Orders: row.Orders,
			Sales:  row.Sales,
		})
	}
	for _, row := range s.ProductCategories {
		summary.ProductCategories = append(summary.ProductCategories, CategoryCount{Category: row.Category, Count: row.Count})
	}

	return summary
}
