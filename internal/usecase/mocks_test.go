package usecase

import (
	"context"
	"time"

	"finepharma/internal/domain/model"
	repo "finepharma/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// txManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type txManagerMock struct {
	Repos repo.TxRepos
}

func (m *txManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.Repos)
}

type txReposMock struct {
	orders       repo.OrderRepository
	orderItems   repo.OrderItemRepository
	invoices     repo.InvoiceRepository
	invoiceItems repo.InvoiceItemRepository
	inventory    repo.InventoryRepository
	products     repo.ProductRepository
	users        repo.UserRepository
	auditLogs    repo.AuditLogRepository
}

func (r *txReposMock) Orders() repo.OrderRepository             { return r.orders }
func (r *txReposMock) OrderItems() repo.OrderItemRepository     { return r.orderItems }
func (r *txReposMock) Invoices() repo.InvoiceRepository         { return r.invoices }
func (r *txReposMock) InvoiceItems() repo.InvoiceItemRepository { return r.invoiceItems }
func (r *txReposMock) Inventory() repo.InventoryRepository      { return r.inventory }
func (r *txReposMock) Products() repo.ProductRepository         { return r.products }
func (r *txReposMock) Users() repo.UserRepository               { return r.users }
func (r *txReposMock) AuditLogs() repo.AuditLogRepository       { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type orderRepoMock struct{ mock.Mock }

func (m *orderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) FindByOrderID(ctx context.Context, orderID string) (model.Order, bool, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *orderRepoMock) ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	args := m.Called(ctx, customerID)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *orderRepoMock) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *orderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *orderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, byRole model.Role) error {
	args := m.Called(ctx, orderID, status, byRole)
	return args.Error(0)
}

func (m *orderRepoMock) Statistics(ctx context.Context, dayStart time.Time) (repo.OrderStats, error) {
	args := m.Called(ctx, dayStart)
	s, _ := args.Get(0).(repo.OrderStats)
	return s, args.Error(1)
}

type orderItemRepoMock struct{ mock.Mock }

func (m *orderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *orderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type inventoryRepoMock struct{ mock.Mock }

func (m *inventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

func (m *inventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *inventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *inventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.StockAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

type productRepoMock struct{ mock.Mock }

func (m *productRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *productRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *productRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *productRepoMock) SetStatus(ctx context.Context, id int64, status model.ProductStatus, actorID int64) error {
	args := m.Called(ctx, id, status, actorID)
	return args.Error(0)
}

func (m *productRepoMock) ListLowStock(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

type invoiceRepoMock struct{ mock.Mock }

func (m *invoiceRepoMock) FindByID(ctx context.Context, id int64) (model.Invoice, error) {
	args := m.Called(ctx, id)
	inv, _ := args.Get(0).(model.Invoice)
	return inv, args.Error(1)
}

func (m *invoiceRepoMock) FindByInvoiceID(ctx context.Context, invoiceID string) (model.Invoice, bool, error) {
	args := m.Called(ctx, invoiceID)
	inv, _ := args.Get(0).(model.Invoice)
	return inv, args.Bool(1), args.Error(2)
}

func (m *invoiceRepoMock) FindByOrderDocID(ctx context.Context, orderDocID int64) (model.Invoice, bool, error) {
	args := m.Called(ctx, orderDocID)
	inv, _ := args.Get(0).(model.Invoice)
	return inv, args.Bool(1), args.Error(2)
}

func (m *invoiceRepoMock) FindByOrderID(ctx context.Context, orderID string) (model.Invoice, bool, error) {
	args := m.Called(ctx, orderID)
	inv, _ := args.Get(0).(model.Invoice)
	return inv, args.Bool(1), args.Error(2)
}

func (m *invoiceRepoMock) ListByCustomer(ctx context.Context, customerID int64) ([]model.Invoice, error) {
	args := m.Called(ctx, customerID)
	items, _ := args.Get(0).([]model.Invoice)
	return items, args.Error(1)
}

func (m *invoiceRepoMock) ListAll(ctx context.Context) ([]model.Invoice, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Invoice)
	return items, args.Error(1)
}

func (m *invoiceRepoMock) Create(ctx context.Context, inv model.Invoice) (int64, error) {
	args := m.Called(ctx, inv)
	return args.Get(0).(int64), args.Error(1)
}

func (m *invoiceRepoMock) Statistics(ctx context.Context, dayStart time.Time) (repo.InvoiceStats, error) {
	args := m.Called(ctx, dayStart)
	s, _ := args.Get(0).(repo.InvoiceStats)
	return s, args.Error(1)
}

type invoiceItemRepoMock struct{ mock.Mock }

func (m *invoiceItemRepoMock) CreateBulk(ctx context.Context, invoiceID int64, items []model.InvoiceItem) error {
	args := m.Called(ctx, invoiceID, items)
	return args.Error(0)
}

func (m *invoiceItemRepoMock) ListByInvoiceID(ctx context.Context, invoiceID int64) ([]model.InvoiceItem, error) {
	args := m.Called(ctx, invoiceID)
	items, _ := args.Get(0).([]model.InvoiceItem)
	return items, args.Error(1)
}

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userRepoMock) FindByID(ctx context.Context, userID int64) (model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (model.User, bool, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Bool(1), args.Error(2)
}

func (m *userRepoMock) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *userRepoMock) UpdateRole(ctx context.Context, userID int64, role model.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *userRepoMock) UpdateStatus(ctx context.Context, userID int64, status model.UserStatus) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

func (m *userRepoMock) UpdateLastLogin(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *userRepoMock) CountByRole(ctx context.Context) (map[model.Role]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[model.Role]int64)
	return counts, args.Error(1)
}

type auditRepoMock struct{ mock.Mock }

func (m *auditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *auditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}
