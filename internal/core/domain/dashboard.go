package domain

import "github.com/govalues/decimal"

const RecentOrdersLimit = 5

type DashboardStats struct {
	TotalOrders      int
	TotalProducts    int
	TotalCustomers   int
	TotalRevenue     decimal.Decimal
	LowStockProducts int
	RecentOrders     []Order
}
