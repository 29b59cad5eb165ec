package service

import (
	"testing"
	"time"

	"github.com/beanery/order-service/internal/entities"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRenderOrderEmail(t *testing.T) {
	order := entities.Order{
		ID:             uuid.New(),
		DispatchMethod: entities.DispatchDelivery,
		PaymentMethod:  "PayPal",
		ShippingAddress: &entities.ShippingAddress{
			FullName:   "Jane Doe",
			Address:    "1 Main St",
			City:       "London",
			PostalCode: "E1 6AN",
			Country:    "UK",
		},
		Items: []entities.OrderItem{
			{ProductID: uuid.New(), Name: "Espresso Beans", Quantity: 2, UnitPrice: 12.5},
		},
		ItemsPrice:    25,
		ShippingPrice: 4.99,
		TaxPrice:      2.5,
		TotalPrice:    32.49,
		DateCreated:   time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	t.Run("registered user", func(t *testing.T) {
		html := renderOrderEmail(order, entities.User{Name: "Jane", Email: "jane@example.com"})

		assert.Contains(t, html, "Hi Jane,")
		assert.Contains(t, html, "Espresso Beans")
		assert.Contains(t, html, "$12.50")
		assert.Contains(t, html, "$32.49")
		assert.Contains(t, html, "2024-03-10")
		assert.Contains(t, html, "1 Main St")
		assert.Contains(t, html, "PayPal")
		assert.NotContains(t, html, "guest")
	})

	t.Run("guest gets a hint to keep the email", func(t *testing.T) {
		html := renderOrderEmail(order, entities.User{Name: "Guest", Email: "guest@example.com", IsGuest: true})
		assert.Contains(t, html, "You checked out as a guest")
	})

	t.Run("collection order has no address block", func(t *testing.T) {
		collected := order
		collected.DispatchMethod = entities.DispatchCollection
		collected.ShippingAddress = nil

		html := renderOrderEmail(collected, entities.User{Name: "Jane", Email: "jane@example.com"})
		assert.NotContains(t, html, "Shipping address")
	})
}
