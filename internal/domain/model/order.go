package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ステータス集合のメンバーかどうか
func IsValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// 作成後に変わるのはStatus/UpdatedAt/UpdatedByRoleだけ。
// 明細と金額は作成時スナップショットのまま。
type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	// 業務キー（FPW-YYYY-#####）
	OrderID       string      `gorm:"type:varchar(20);not null;uniqueIndex" json:"order_id"`
	CustomerID    int64       `gorm:"not null;index" json:"customer_id"`
	Status        OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount   float64     `gorm:"not null" json:"total_amount"`
	UpdatedByRole Role        `gorm:"type:varchar(20);not null" json:"updated_by_role"`
	CreatedAt     time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
