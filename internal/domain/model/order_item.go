package model

import "time"

// 注文時点のスナップショット。カタログからは再導出しない。
type OrderItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64     `gorm:"not null;index" json:"order_id"`
	ProductID  int64     `gorm:"not null;index" json:"product_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Qty        int64     `gorm:"not null" json:"qty"`
	UnitPrice  float64   `gorm:"not null" json:"unit_price"`
	TaxRatePct float64   `gorm:"not null" json:"tax_rate_pct"`
	HSNCode    string    `gorm:"column:hsn_code;type:varchar(20)" json:"hsn_code"`
	Pack       string    `gorm:"type:varchar(50)" json:"pack"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
