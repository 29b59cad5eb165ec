package entities

import "time"

// Summary — сводка для операторского дашборда, считается по живым данным
type Summary struct {
	Orders            []OrderTotals
	Users             []UserTotals
	DailyOrders       []DailySales
	ProductCategories []CategoryCount
}

// OrderTotals — агрегат по всем заказам.
// Пустое множество заказов даёт ноль строк, а не строку с нулями.
type OrderTotals struct {
	NumOrders  int
	TotalSales float64
}

type UserTotals struct {
	NumUsers int
}

// DailySales — строка временного ряда: календарный день в UTC
type DailySales struct {
	Day    time.Time
	Orders int
	Sales  float64
}

type CategoryCount struct {
	Category string
	Count    int
}
