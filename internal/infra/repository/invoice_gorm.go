package repository

import (
	"context"
	"errors"
	"time"

	"finepharma/internal/domain/model"
	repo "finepharma/internal/repository"

	"gorm.io/gorm"
)

type InvoiceGormRepository struct {
	db *gorm.DB
}

func NewInvoiceGormRepository(db *gorm.DB) *InvoiceGormRepository {
	return &InvoiceGormRepository{db: db}
}

func (r *InvoiceGormRepository) FindByID(ctx context.Context, id int64) (model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Invoice{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoiceGormRepository) FindByInvoiceID(ctx context.Context, invoiceID string) (model.Invoice, bool, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Invoice{}, false, nil
	}
	if err != nil {
		return model.Invoice{}, false, err
	}
	return inv, true, nil
}

func (r *InvoiceGormRepository) FindByOrderDocID(ctx context.Context, orderDocID int64) (model.Invoice, bool, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Where("order_doc_id = ?", orderDocID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Invoice{}, false, nil
	}
	if err != nil {
		return model.Invoice{}, false, err
	}
	return inv, true, nil
}

func (r *InvoiceGormRepository) FindByOrderID(ctx context.Context, orderID string) (model.Invoice, bool, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Invoice{}, false, nil
	}
	if err != nil {
		return model.Invoice{}, false, err
	}
	return inv, true, nil
}

func (r *InvoiceGormRepository) ListByCustomer(ctx context.Context, customerID int64) ([]model.Invoice, error) {
	var items []model.Invoice
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("generated_at desc").
		Find(&items).Error
	if err != nil {
		return []model.Invoice{}, err
	}
	return items, nil
}

func (r *InvoiceGormRepository) ListAll(ctx context.Context) ([]model.Invoice, error) {
	var items []model.Invoice
	err := r.db.WithContext(ctx).
		Order("generated_at desc").
		Find(&items).Error
	if err != nil {
		return []model.Invoice{}, err
	}
	return items, nil
}

func (r *InvoiceGormRepository) Create(ctx context.Context, inv model.Invoice) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&inv).Error; err != nil {
		return 0, err
	}
	return inv.ID, nil
}

func (r *InvoiceGormRepository) Statistics(ctx context.Context, dayStart time.Time) (repo.InvoiceStats, error) {
	var stats repo.InvoiceStats

	if err := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Count(&stats.TotalCount).Error; err != nil {
		return repo.InvoiceStats{}, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Select("COALESCE(SUM(final_amount), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return repo.InvoiceStats{}, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("generated_at >= ?", dayStart).
		Count(&stats.TodayCount).Error; err != nil {
		return repo.InvoiceStats{}, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Select("COALESCE(SUM(final_amount), 0)").
		Where("generated_at >= ?", dayStart).
		Scan(&stats.TodayRevenue).Error; err != nil {
		return repo.InvoiceStats{}, err
	}

	return stats, nil
}
