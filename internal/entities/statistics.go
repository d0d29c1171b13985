package entities

import "github.com/shopspring/decimal"

// Statistics is the admin dashboard summary.
type Statistics struct {
	TotalBooks    int             `json:"totalBooks"`
	TotalUsers    int             `json:"totalUsers"`
	TotalOrders   int             `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"` // excludes cancelled orders
	PendingOrders int             `json:"pendingOrders"`
	LowStockBooks int             `json:"lowStockBooks"`
	RecentOrders  []Order         `json:"recentOrders"` // newest first
}
