package store

import (
	"github.com/shopspring/decimal"

	"github.com/bookhaven/storefront/internal/entities"
)

// ComputeStatistics summarizes the three collections for the admin dashboard.
// Revenue excludes cancelled orders; recent orders are the last recentLimit
// orders, newest first.
func ComputeStatistics(books []entities.Book, users []entities.User, orders []entities.Order, lowStockThreshold, recentLimit int) entities.Statistics {
	stats := entities.Statistics{
		TotalBooks:   len(books),
		TotalUsers:   len(users),
		TotalOrders:  len(orders),
		TotalRevenue: decimal.Zero,
		RecentOrders: []entities.Order{},
	}
	for _, o := range orders {
		if o.Status != entities.OrderStatusCancelled {
			stats.TotalRevenue = stats.TotalRevenue.Add(o.Total)
		}
		if o.Status == entities.OrderStatusPending {
			stats.PendingOrders++
		}
	}
	for _, b := range books {
		if b.Stock < lowStockThreshold {
			stats.LowStockBooks++
		}
	}
	for i := len(orders) - 1; i >= 0 && len(stats.RecentOrders) < recentLimit; i-- {
		stats.RecentOrders = append(stats.RecentOrders, orders[i])
	}
	return stats
}

// Statistics reads all collections and summarizes them.
func (s *Service) Statistics() (entities.Statistics, error) {
	books, err := s.Books.All()
	if err != nil {
		return entities.Statistics{}, err
	}
	users, err := s.Users.All()
	if err != nil {
		return entities.Statistics{}, err
	}
	orders, err := s.Orders.All()
	if err != nil {
		return entities.Statistics{}, err
	}
	return ComputeStatistics(books, users, orders, s.lowStockThreshold, s.recentOrdersLimit), nil
}

// StatisticsLimits returns the low-stock threshold and recent order count
// used by Statistics.
func (s *Service) StatisticsLimits() (lowStockThreshold, recentLimit int) {
	return s.lowStockThreshold, s.recentOrdersLimit
}
