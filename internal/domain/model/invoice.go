package model

import "time"

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// 請求書は注文ごとに最大1件（OrderDocIDのuniqueIndexで担保）。
// Taxは片側成分（CGSTのみ）。表示側がCGST/SGSTの2行で倍にする。
type Invoice struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	// 業務キー（orderIdとは独立採番）
	InvoiceID string `gorm:"type:varchar(20);not null;uniqueIndex" json:"invoice_id"`
	// 対象注文の業務キーとレコードID
	OrderID    string `gorm:"type:varchar(20);not null;index" json:"order_id"`
	OrderDocID int64  `gorm:"not null;uniqueIndex" json:"order_doc_id"`
	CustomerID int64  `gorm:"not null;index" json:"customer_id"`
	// 顧客表示項目は発行時スナップショット（再JOINしない）
	CustomerName    string        `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail   string        `gorm:"type:varchar(255)" json:"customer_email"`
	CustomerAddress string        `gorm:"type:text" json:"customer_address"`
	Subtotal        float64       `gorm:"not null" json:"subtotal"`
	Tax             float64       `gorm:"not null" json:"tax"`
	TaxRate         float64       `gorm:"not null" json:"tax_rate"`
	Discount        float64       `gorm:"not null" json:"discount"`
	FinalAmount     float64       `gorm:"not null" json:"final_amount"`
	Status          InvoiceStatus `gorm:"type:varchar(20);not null" json:"status"`
	Notes           string        `gorm:"type:text" json:"notes"`
	GeneratedAt     time.Time     `gorm:"not null;index" json:"generated_at"`
	GeneratedByID   int64         `gorm:"not null" json:"generated_by_id"`
	GeneratedByName string        `gorm:"type:varchar(255)" json:"generated_by_name"`
}

// 注文明細に税注記を足した投影
type InvoiceItem struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceID   int64   `gorm:"not null;index" json:"invoice_id"`
	ProductID   int64   `gorm:"not null" json:"product_id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Qty         int64   `gorm:"not null" json:"qty"`
	MRP         float64 `gorm:"column:mrp;not null" json:"mrp"`
	Rate        float64 `gorm:"not null" json:"rate"`
	DiscountPct float64 `gorm:"not null" json:"discount_pct"`
	HSNCode     string  `gorm:"column:hsn_code;type:varchar(20);not null" json:"hsn_code"`
	GSTRatePct  float64 `gorm:"column:gst_rate_pct;not null" json:"gst_rate_pct"`
	Pack        string  `gorm:"type:varchar(50)" json:"pack"`
}
