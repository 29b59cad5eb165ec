package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/beanery/order-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type summaryRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewSummaryRepo(db *sqlx.DB) *summaryRepo {
	return &summaryRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

type orderTotalsRow struct {
	NumOrders  int     `db:"num_orders"`
	TotalSales float64 `db:"total_sales"`
}

type userTotalsRow struct {
	NumUsers int `db:"num_users"`
}

type dailySalesRow struct {
	Day    time.Time `db:"day"`
	Orders int       `db:"orders"`
	Sales  float64   `db:"sales"`
}

type categoryCountRow struct {
	Category string `db:"category"`
	Count    int    `db:"count"`
}

// OrderTotals считает общий агрегат по заказам.
// HAVING оставляет ноль строк на пустой таблице — клиент различает "нет данных" и нули.
func (r *summaryRepo) OrderTotals(ctx context.Context) ([]entities.OrderTotals, error) {
	query, args := r.qb.Select("COUNT(*) AS num_orders", "COALESCE(SUM(total_price), 0) AS total_sales").
		From("orders").
		Having("COUNT(*) > 0").
		MustSql()

	var rows []orderTotalsRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select order totals: %w", err)
	}

	result := make([]entities.OrderTotals, 0, len(rows))
	for _, row := range rows {
		result = append(result, entities.OrderTotals{NumOrders: row.NumOrders, TotalSales: row.TotalSales})
	}
	return result, nil
}

func (r *summaryRepo) UserTotals(ctx context.Context) ([]entities.UserTotals, error) {
	query, args := r.qb.Select("COUNT(*) AS num_users").
		From("users").
		Having("COUNT(*) > 0").
		MustSql()

	var rows []userTotalsRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select user totals: %w", err)
	}

	result := make([]entities.UserTotals, 0, len(rows))
	for _, row := range rows {
		result = append(result, entities.UserTotals{NumUsers: row.NumUsers})
	}
	return result, nil
}

// DailySales группирует заказы по календарному дню UTC от date_created
func (r *summaryRepo) DailySales(ctx context.Context) ([]entities.DailySales, error) {
	query, args := r.qb.Select(
		"date_trunc('day', date_created AT TIME ZONE 'UTC') AS day",
		"COUNT(*) AS orders",
		"SUM(total_price) AS sales",
	).
		From("orders").
		GroupBy("day").
		OrderBy("day ASC").
		MustSql()

	var rows []dailySalesRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select daily sales: %w", err)
	}

	result := make([]entities.DailySales, 0, len(rows))
	for _, row := range rows {
		result = append(result, entities.DailySales{Day: row.Day, Orders: row.Orders, Sales: row.Sales})
	}
	return result, nil
}

func (r *summaryRepo) CategoryCounts(ctx context.Context) ([]entities.CategoryCount, error) {
	query, args := r.qb.Select("category", "COUNT(*) AS count").
		From("products").
		GroupBy("category").
		MustSql()

	var rows []categoryCountRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select category counts: %w", err)
	}

	result := make([]entities.CategoryCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, entities.CategoryCount{Category: row.Category, Count: row.Count})
	}
	return result, nil
}
