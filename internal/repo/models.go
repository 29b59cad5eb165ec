package repo

import (
	"database/sql"
	"time"

	"github.com/beanery/order-service/internal/entities"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Order struct {
	ID             uuid.UUID `db:"id"`
	UserID         uuid.UUID `db:"user_id"`
	DispatchMethod string    `db:"dispatch_method"`
	PaymentMethod  string    `db:"payment_method"`

	OwnerName sql.NullString `db:"owner_name"`

	ShipFullName   sql.NullString `db:"ship_full_name"`
	ShipAddress    sql.NullString `db:"ship_address"`
	ShipCity       sql.NullString `db:"ship_city"`
	ShipPostalCode sql.NullString `db:"ship_postal_code"`
	ShipCountry    sql.NullString `db:"ship_country"`

	ItemsPrice    float64 `db:"items_price"`
	ShippingPrice float64 `db:"shipping_price"`
	TaxPrice      float64 `db:"tax_price"`
	TotalPrice    float64 `db:"total_price"`

	IsPaid            bool           `db:"is_paid"`
	PaidAt            sql.NullTime   `db:"paid_at"`
	PaymentExternalID sql.NullString `db:"payment_external_id"`
	PaymentStatus     sql.NullString `db:"payment_status"`
	PaymentUpdateTime sql.NullString `db:"payment_update_time"`
	PaymentPayerEmail sql.NullString `db:"payment_payer_email"`

	IsDelivered    bool           `db:"is_delivered"`
	DeliveredAt    sql.NullTime   `db:"delivered_at"`
	DeliveryImages pq.StringArray `db:"delivery_images"`

	DateCreated time.Time `db:"date_created"`
}

type OrderItem struct {
	OrderID   uuid.UUID      `db:"order_id"`
	ProductID uuid.UUID      `db:"product_id"`
	Name      string         `db:"name"`
	Quantity  int            `db:"quantity"`
	UnitPrice float64        `db:"unit_price"`
	Image     sql.NullString `db:"image"`
}

type User struct {
	ID      uuid.UUID `db:"id"`
	Name    string    `db:"name"`
	Email   string    `db:"email"`
	Role    string    `db:"role"`
	IsGuest bool      `db:"is_guest"`
}

func ItemToEntity(i OrderItem) entities.OrderItem {
	return entities.OrderItem{
		ProductID: i.ProductID,
		Name:      i.Name,
		Quantity:  i.Quantity,
		UnitPrice: i.UnitPrice,
		Image:     nullStringToString(i.Image),
	}
}

func OrderToEntity(o Order, items []OrderItem) entities.Order {
	order := entities.Order{
		ID:             o.ID,
		UserID:         o.UserID,
		DispatchMethod: entities.DispatchMethod(o.DispatchMethod),
		PaymentMethod:  o.PaymentMethod,
		OwnerName:      nullStringToString(o.OwnerName),
		ItemsPrice:     o.ItemsPrice,
		ShippingPrice:  o.ShippingPrice,
		TaxPrice:       o.TaxPrice,
		TotalPrice:     o.TotalPrice,
		IsPaid:         o.IsPaid,
		PaidAt:         nullTimeToPtr(o.PaidAt),
		IsDelivered:    o.IsDelivered,
		DeliveredAt:    nullTimeToPtr(o.DeliveredAt),
		DeliveryImages: o.DeliveryImages,
		DateCreated:    o.DateCreated,
	}

	if o.ShipFullName.Valid {
		order.ShippingAddress = &entities.ShippingAddress{
			FullName:   o.ShipFullName.String,
			Address:    nullStringToString(o.ShipAddress),
			City:       nullStringToString(o.ShipCity),
			PostalCode: nullStringToString(o.ShipPostalCode),
			Country:    nullStringToString(o.ShipCountry),
		}
	}

	if o.PaymentExternalID.Valid {
		order.PaymentResult = &entities.PaymentResult{
			ExternalID: o.PaymentExternalID.String,
			Status:     nullStringToString(o.PaymentStatus),
			UpdateTime: nullStringToString(o.PaymentUpdateTime),
			PayerEmail: nullStringToString(o.PaymentPayerEmail),
		}
	}

	if len(items) > 0 {
		order.Items = make([]entities.OrderItem, 0, len(items))
		for _, it := range items {
			order.Items = append(order.Items, ItemToEntity(it))
		}
	}

	return order
}

func UserToEntity(u User) entities.User {
	return entities.User{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    entities.Role(u.Role),
		IsGuest: u.IsGuest,
	}
}

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		t := nt.Time
		return &t
	}
	return nil
}
