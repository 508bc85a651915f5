package repository

import (
	"context"
	"time"

	"finepharma/internal/domain/model"
)

type InvoiceStats struct {
	TotalCount   int64   `json:"total_count"`
	TotalRevenue float64 `json:"total_revenue"`
	TodayCount   int64   `json:"today_count"`
	TodayRevenue float64 `json:"today_revenue"`
}

type InvoiceRepository interface {
	FindByID(ctx context.Context, id int64) (model.Invoice, error)
	FindByInvoiceID(ctx context.Context, invoiceID string) (model.Invoice, bool, error)
	// 注文レコードIDで1件（存在チェック兼用）
	FindByOrderDocID(ctx context.Context, orderDocID int64) (model.Invoice, bool, error)
	// 注文の業務キー（FPW-YYYY-#####）で1件
	FindByOrderID(ctx context.Context, orderID string) (model.Invoice, bool, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]model.Invoice, error)
	ListAll(ctx context.Context) ([]model.Invoice, error)
	Create(ctx context.Context, inv model.Invoice) (int64, error)

	Statistics(ctx context.Context, dayStart time.Time) (InvoiceStats, error)
}

type InvoiceItemRepository interface {
	CreateBulk(ctx context.Context, invoiceID int64, items []model.InvoiceItem) error
	ListByInvoiceID(ctx context.Context, invoiceID int64) ([]model.InvoiceItem, error)
}
