package repository

import (
	"context"

	"finepharma/internal/domain/model"

	"gorm.io/gorm"
)

type InvoiceItemGormRepository struct {
	db *gorm.DB
}

func NewInvoiceItemGormRepository(db *gorm.DB) *InvoiceItemGormRepository {
	return &InvoiceItemGormRepository{db: db}
}

func (r *InvoiceItemGormRepository) CreateBulk(ctx context.Context, invoiceID int64, items []model.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].InvoiceID = invoiceID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *InvoiceItemGormRepository) ListByInvoiceID(ctx context.Context, invoiceID int64) ([]model.InvoiceItem, error) {
	var items []model.InvoiceItem
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.InvoiceItem{}, err
	}
	return items, nil
}
