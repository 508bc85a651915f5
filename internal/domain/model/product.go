package model

import "time"

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

type Product struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Category string `gorm:"type:varchar(100);not null;index" json:"category"`
	// PriceはMRP
	Price          float64 `gorm:"not null" json:"price"`
	WholesalePrice float64 `gorm:"not null" json:"wholesale_price"`
	Stock          int64   `gorm:"not null" json:"stock"`
	// これ以下で低在庫扱い
	LowStockThreshold int64         `gorm:"not null;default:10" json:"low_stock_threshold"`
	GSTRatePct        float64       `gorm:"column:gst_rate_pct;not null;default:5" json:"gst_rate_pct"`
	HSNCode           string        `gorm:"column:hsn_code;type:varchar(20)" json:"hsn_code"`
	Pack              string        `gorm:"type:varchar(50)" json:"pack"`
	Description       string        `gorm:"type:text" json:"description"`
	Status            ProductStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	UpdatedByID       int64         `gorm:"not null;default:0" json:"updated_by_id"`
	CreatedAt         time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
