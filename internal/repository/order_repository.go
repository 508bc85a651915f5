package repository

import (
	"context"
	"time"

	"finepharma/internal/domain/model"
)

type OrderListFilter struct {
	Page       int
	Limit      int
	Status     string
	CustomerID *int64
	From       *time.Time
	To         *time.Time
}

type OrderStats struct {
	Total        int64                           `json:"total"`
	PerStatus    map[model.OrderStatus]int64     `json:"per_status"`
	TodayCount   int64                           `json:"today_count"`
	TodayRevenue float64                         `json:"today_revenue"`
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 業務キー（FPW-YYYY-#####）で1件
	FindByOrderID(ctx context.Context, orderID string) (model.Order, bool, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, byRole model.Role) error

	// dayStartは「今日」の始まり（ローカル日付境界）。売上はcancelledを除く。
	Statistics(ctx context.Context, dayStart time.Time) (OrderStats, error)
}
