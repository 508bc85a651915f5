package model

import "time"

type AuditAction string

const (
	AuditActionUpdateStock       AuditAction = "UPDATE_STOCK"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionUpdateUserRole    AuditAction = "UPDATE_USER_ROLE"
	AuditActionUpdateUserStatus  AuditAction = "UPDATE_USER_STATUS"
	AuditActionGenerateInvoice   AuditAction = "GENERATE_INVOICE"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceUser    AuditResourceType = "user"
	AuditResourceInvoice AuditResourceType = "invoice"
)

// 監査ログ。「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID          int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID int64             `gorm:"not null;index" json:"actor_user_id"`
	// 操作した人のロール（認可の入力ではなく記録）
	ActorRole    Role              `gorm:"type:varchar(20);not null" json:"actor_role"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`
	// JSON文字列で保存する
	BeforeJSON string    `gorm:"type:text" json:"before_json"`
	AfterJSON  string    `gorm:"type:text" json:"after_json"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}
