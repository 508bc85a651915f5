package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Invoices() InvoiceRepository
	InvoiceItems() InvoiceItemRepository
	Inventory() InventoryRepository
	Products() ProductRepository
	Users() UserRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// 在庫チェック→減算→注文作成、存在チェック→請求書作成は
// 必ず同じTxの中で行う。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
