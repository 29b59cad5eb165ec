package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/beanery/order-service/internal/entities"
	"github.com/beanery/order-service/pkg/trm"
	"github.com/google/uuid"
	"github.com/lib/pq"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var orderColumns = []string{
	"id", "user_id", "dispatch_method", "payment_method",
	"ship_full_name", "ship_address", "ship_city", "ship_postal_code", "ship_country",
	"items_price", "shipping_price", "tax_price", "total_price",
	"is_paid", "paid_at",
	"payment_external_id", "payment_status", "payment_update_time", "payment_payer_email",
	"is_delivered", "delivered_at", "delivery_images",
	"date_created",
}

type ordersRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewOrdersRepo(db *sqlx.DB) *ordersRepo {
	return &ordersRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ordersRepo) SaveOrder(ctx context.Context, o entities.Order) error {
	var shipFullName, shipAddress, shipCity, shipPostalCode, shipCountry sql.NullString
	if o.ShippingAddress != nil {
		shipFullName = nullString(o.ShippingAddress.FullName)
		shipAddress = nullString(o.ShippingAddress.Address)
		shipCity = nullString(o.ShippingAddress.City)
		shipPostalCode = nullString(o.ShippingAddress.PostalCode)
		shipCountry = nullString(o.ShippingAddress.Country)
	}

	var paidAt sql.NullTime
	if o.PaidAt != nil {
		paidAt = sql.NullTime{Time: *o.PaidAt, Valid: true}
	}

	query, args := r.qb.Insert("orders").
		Columns(
			"id", "user_id", "dispatch_method", "payment_method",
			"ship_full_name", "ship_address", "ship_city", "ship_postal_code", "ship_country",
			"items_price", "shipping_price", "tax_price", "total_price",
			"is_paid", "paid_at", "date_created",
		).
		Values(
			o.ID, o.UserID, string(o.DispatchMethod), o.PaymentMethod,
			shipFullName, shipAddress, shipCity, shipPostalCode, shipCountry,
			o.ItemsPrice, o.ShippingPrice, o.TaxPrice, o.TotalPrice,
			o.IsPaid, paidAt, o.DateCreated,
		).
		MustSql()

	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

func (r *ordersRepo) SaveOrderItems(ctx context.Context, orderID uuid.UUID, items []entities.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	q := r.qb.Insert("order_items").
		Columns("order_id", "product_id", "name", "quantity", "unit_price", "image")

	for _, it := range items {
		q = q.Values(orderID, it.ProductID, it.Name, it.Quantity, it.UnitPrice, nullString(it.Image))
	}

	query, args := q.MustSql()
	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save order items: %w", err)
	}
	return nil
}

func (r *ordersRepo) GetOrderByID(ctx context.Context, orderID uuid.UUID) (entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": orderID}).
		MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.itemsForOrders(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	return OrderToEntity(order, items[orderID]), nil
}

// OrdersByUser возвращает только заказы владельца, порядок определяет хранилище
func (r *ordersRepo) OrdersByUser(ctx context.Context, userID uuid.UUID) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"user_id": userID}).
		MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select orders: %w", err)
	}

	return r.assemble(ctx, orders)
}

// AllOrders возвращает все заказы с денормализованным именем владельца
func (r *ordersRepo) AllOrders(ctx context.Context) ([]entities.Order, error) {
	columns := make([]string, 0, len(orderColumns)+1)
	for _, c := range orderColumns {
		columns = append(columns, "o."+c)
	}
	columns = append(columns, "u.name AS owner_name")

	query, args := r.qb.Select(columns...).
		From("orders o").
		Join("users u ON u.id = o.user_id").
		MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select orders: %w", err)
	}

	return r.assemble(ctx, orders)
}

func (r *ordersRepo) SetPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time, res entities.PaymentResult) error {
	query, args := r.qb.Update("orders").
		Set("is_paid", true).
		Set("paid_at", paidAt).
		Set("payment_external_id", nullString(res.ExternalID)).
		Set("payment_status", nullString(res.Status)).
		Set("payment_update_time", nullString(res.UpdateTime)).
		Set("payment_payer_email", nullString(res.PayerEmail)).
		Where(sq.Eq{"id": orderID}).
		MustSql()

	return r.execExpectingRow(ctx, query, args...)
}

func (r *ordersRepo) SetDelivered(ctx context.Context, orderID uuid.UUID, deliveredAt time.Time, images []string) error {
	query, args := r.qb.Update("orders").
		Set("is_delivered", true).
		Set("delivered_at", deliveredAt).
		Set("delivery_images", pq.StringArray(images)).
		Where(sq.Eq{"id": orderID}).
		MustSql()

	return r.execExpectingRow(ctx, query, args...)
}

func (r *ordersRepo) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	query, args := r.qb.Delete("orders").
		Where(sq.Eq{"id": orderID}).
		MustSql()

	return r.execExpectingRow(ctx, query, args...)
}

func (r *ordersRepo) assemble(ctx context.Context, orders []Order) ([]entities.Order, error) {
	if len(orders) == 0 {
		return []entities.Order{}, nil
	}

	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	itemsMap, err := r.itemsForOrders(ctx, ids...)
	if err != nil {
		return nil, err
	}

	result := make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderToEntity(o, itemsMap[o.ID]))
	}
	return result, nil
}

func (r *ordersRepo) itemsForOrders(ctx context.Context, orderIDs ...uuid.UUID) (map[uuid.UUID][]OrderItem, error) {
	query, args := r.qb.Select("order_id", "product_id", "name", "quantity", "unit_price", "image").
		From("order_items").
		Where(sq.Eq{"order_id": orderIDs}).
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select order items: %w", err)
	}

	itemsMap := make(map[uuid.UUID][]OrderItem, len(orderIDs))
	for _, it := range items {
		itemsMap[it.OrderID] = append(itemsMap[it.OrderID], it)
	}
	return itemsMap, nil
}

// execExpectingRow для точечных update/delete: ноль затронутых строк значит что заказа нет
func (r *ordersRepo) execExpectingRow(ctx context.Context, query string, args ...any) error {
	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return entities.ErrOrderNotFound
	}
	return nil
}

func (r *ordersRepo) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return r.db.ExecContext(ctx, query, args...)
}

func (r *ordersRepo) getContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.GetContext(ctx, dest, query, args...)
	}
	return r.db.GetContext(ctx, dest, query, args...)
}

func (r *ordersRepo) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.SelectContext(ctx, dest, query, args...)
	}
	return r.db.SelectContext(ctx, dest, query, args...)
}
