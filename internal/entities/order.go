package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type DispatchMethod string

const (
	DispatchDelivery   DispatchMethod = "Delivery"
	DispatchCollection DispatchMethod = "Collection"
)

type Order struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	DispatchMethod DispatchMethod
	PaymentMethod  string

	// OwnerName заполняется только в админском списке (join с users)
	OwnerName string

	ShippingAddress *ShippingAddress
	Items           []OrderItem

	ItemsPrice    float64
	ShippingPrice float64
	TaxPrice      float64
	TotalPrice    float64

	IsPaid        bool
	PaidAt        *time.Time
	PaymentResult *PaymentResult

	IsDelivered    bool
	DeliveredAt    *time.Time
	DeliveryImages []string

	DateCreated time.Time
}

type OrderItem struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int
	UnitPrice float64
	Image     string
}

type ShippingAddress struct {
	FullName   string
	Address    string
	City       string
	PostalCode string
	Country    string
}

// PaymentResult — непрозрачное подтверждение от внешнего платёжного провайдера
type PaymentResult struct {
	ExternalID string
	Status     string
	UpdateTime string
	PayerEmail string
}

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrForbidden     = errors.New("forbidden")
)
