package usecase

import (
	"context"
	"regexp"
	"testing"

	"finepharma/internal/domain/model"
	"finepharma/internal/infra/cache"
	repo "finepharma/internal/repository"
	"finepharma/internal/watch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newInvoiceUsecaseForTest(r *txReposMock) *InvoiceUsecase {
	tm := &txManagerMock{Repos: r}
	return NewInvoiceUsecase(tm, watch.NewHub(), cache.NoopStatsCache{})
}

func TestGenerate_FlatTaxConvention(t *testing.T) {
	orders := &orderRepoMock{}
	orderItems := &orderItemRepoMock{}
	invoices := &invoiceRepoMock{}
	invoiceItems := &invoiceItemRepoMock{}
	users := &userRepoMock{}
	audits := &auditRepoMock{}
	repos := &txReposMock{orders: orders, orderItems: orderItems, invoices: invoices, invoiceItems: invoiceItems, users: users, auditLogs: audits}
	uc := newInvoiceUsecaseForTest(repos)

	orders.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID: 1, OrderID: "FPW-2026-11111", CustomerID: 10, TotalAmount: 1050,
	}, nil)
	invoices.On("FindByOrderDocID", mock.Anything, int64(1)).Return(model.Invoice{}, false, nil)
	// 明細に税率なし→一律2.5%×2の慣行
	orderItems.On("ListByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{
		{ProductID: 1, Name: "Amoxicillin", Qty: 10, UnitPrice: 100},
	}, nil)
	users.On("FindByID", mock.Anything, int64(10)).Return(model.User{
		ID: 10, Name: "Ravi", Email: "ravi@example.com", Address: "12 MG Road",
	}, nil)
	invoices.On("FindByInvoiceID", mock.Anything, mock.Anything).Return(model.Invoice{}, false, nil)
	invoices.On("Create", mock.Anything, mock.Anything).Return(int64(77), nil)
	invoiceItems.On("CreateBulk", mock.Anything, int64(77), mock.Anything).Return(nil)
	audits.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.Generate(context.Background(), staff, GenerateInvoiceInput{OrderDocID: 1})
	require.NoError(t, err)

	// subtotal 1000 / 総GST 50 / 保存するtaxは片側成分の25
	assert.InDelta(t, 1000.0, out.Subtotal, 0.01)
	assert.InDelta(t, 25.0, out.Tax, 0.01)
	assert.InDelta(t, 2.5, out.TaxRate, 0.01)
	assert.InDelta(t, 1050.0, out.FinalAmount, 0.01)
	assert.Equal(t, "FPW-2026-11111", out.OrderID)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z]+-\d{4}-\d{5}$`), out.InvoiceID)
	assert.Equal(t, string(model.InvoiceStatusPending), out.Status)

	// 顧客スナップショット
	assert.Equal(t, "Ravi", out.CustomerName)
	assert.Equal(t, "12 MG Road", out.CustomerAddress)

	// 明細投影のデフォルト（HSN 3004 / GST 5.00 / 値引き0）
	require.Len(t, out.Items, 1)
	assert.Equal(t, "3004", out.Items[0].HSNCode)
	assert.InDelta(t, 5.0, out.Items[0].GSTRatePct, 0.01)
	assert.InDelta(t, 0.0, out.Items[0].DiscountPct, 0.01)
	assert.InDelta(t, 100.0, out.Items[0].MRP, 0.01)
	assert.InDelta(t, 100.0, out.Items[0].Rate, 0.01)
}

func TestGenerate_PerLineRates(t *testing.T) {
	orders := &orderRepoMock{}
	orderItems := &orderItemRepoMock{}
	invoices := &invoiceRepoMock{}
	invoiceItems := &invoiceItemRepoMock{}
	users := &userRepoMock{}
	audits := &auditRepoMock{}
	repos := &txReposMock{orders: orders, orderItems: orderItems, invoices: invoices, invoiceItems: invoiceItems, users: users, auditLogs: audits}
	uc := newInvoiceUsecaseForTest(repos)

	orders.On("FindByID", mock.Anything, int64(2)).Return(model.Order{
		ID: 2, OrderID: "FPW-2026-22222", CustomerID: 10, TotalAmount: 504,
	}, nil)
	invoices.On("FindByOrderDocID", mock.Anything, int64(2)).Return(model.Invoice{}, false, nil)
	// 12%の明細→行ごとの税率で計算する
	orderItems.On("ListByOrderID", mock.Anything, int64(2)).Return([]model.OrderItem{
		{ProductID: 3, Name: "Vitamin syrup", Qty: 3, UnitPrice: 150, TaxRatePct: 12, HSNCode: "2106"},
	}, nil)
	users.On("FindByID", mock.Anything, int64(10)).Return(model.User{ID: 10, Name: "Ravi"}, nil)
	invoices.On("FindByInvoiceID", mock.Anything, mock.Anything).Return(model.Invoice{}, false, nil)
	invoices.On("Create", mock.Anything, mock.Anything).Return(int64(78), nil)
	invoiceItems.On("CreateBulk", mock.Anything, int64(78), mock.Anything).Return(nil)
	audits.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.Generate(context.Background(), staff, GenerateInvoiceInput{OrderDocID: 2})
	require.NoError(t, err)

	// 450 + 12% = 504、保存するtaxは54/2=27
	assert.InDelta(t, 450.0, out.Subtotal, 0.01)
	assert.InDelta(t, 27.0, out.Tax, 0.01)
	assert.InDelta(t, 504.0, out.FinalAmount, 0.01)

	// 注文側の合計と一致していること
	assert.InDelta(t, 504.0, out.FinalAmount, 0.01)

	require.Len(t, out.Items, 1)
	assert.Equal(t, "2106", out.Items[0].HSNCode)
	assert.InDelta(t, 12.0, out.Items[0].GSTRatePct, 0.01)
}

func TestGenerate_DuplicateReturnsExisting(t *testing.T) {
	orders := &orderRepoMock{}
	invoices := &invoiceRepoMock{}
	invoiceItems := &invoiceItemRepoMock{}
	repos := &txReposMock{orders: orders, invoices: invoices, invoiceItems: invoiceItems}
	uc := newInvoiceUsecaseForTest(repos)

	orders.On("FindByID", mock.Anything, int64(1)).Return(model.Order{ID: 1, OrderID: "FPW-2026-11111", CustomerID: 10}, nil)
	existing := model.Invoice{ID: 77, InvoiceID: "FPW-2026-55555", OrderDocID: 1, FinalAmount: 1050}
	invoices.On("FindByOrderDocID", mock.Anything, int64(1)).Return(existing, true, nil)
	invoiceItems.On("ListByInvoiceID", mock.Anything, int64(77)).Return([]model.InvoiceItem{}, nil)

	out, err := uc.Generate(context.Background(), staff, GenerateInvoiceInput{OrderDocID: 1})
	require.NoError(t, err)

	// 二重発行しない。既存の1枚がそのまま返る。
	assert.Equal(t, "FPW-2026-55555", out.InvoiceID)
	invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGenerate_CustomerForbidden(t *testing.T) {
	uc := newInvoiceUsecaseForTest(&txReposMock{})

	_, err := uc.Generate(context.Background(), customer, GenerateInvoiceInput{OrderDocID: 1})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGenerate_OrderNotFound(t *testing.T) {
	orders := &orderRepoMock{}
	repos := &txReposMock{orders: orders}
	uc := newInvoiceUsecaseForTest(repos)

	orders.On("FindByID", mock.Anything, int64(404)).Return(model.Order{}, repo.ErrNotFound)

	_, err := uc.Generate(context.Background(), staff, GenerateInvoiceInput{OrderDocID: 404})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoiceGetByID_CustomerCannotSeeOthers(t *testing.T) {
	invoices := &invoiceRepoMock{}
	repos := &txReposMock{invoices: invoices, invoiceItems: &invoiceItemRepoMock{}}
	uc := newInvoiceUsecaseForTest(repos)

	invoices.On("FindByID", mock.Anything, int64(1)).Return(model.Invoice{ID: 1, CustomerID: 999}, nil)

	_, err := uc.GetByID(context.Background(), customer, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoiceGetByOrderID(t *testing.T) {
	invoices := &invoiceRepoMock{}
	invoiceItems := &invoiceItemRepoMock{}
	repos := &txReposMock{invoices: invoices, invoiceItems: invoiceItems}
	uc := newInvoiceUsecaseForTest(repos)

	invoices.On("FindByOrderID", mock.Anything, "FPW-2026-11111").Return(model.Invoice{
		ID: 77, InvoiceID: "FPW-2026-55555", OrderID: "FPW-2026-11111", CustomerID: customer.ID,
	}, true, nil)
	invoiceItems.On("ListByInvoiceID", mock.Anything, int64(77)).Return([]model.InvoiceItem{}, nil)

	out, err := uc.GetByOrderID(context.Background(), customer, "FPW-2026-11111")
	require.NoError(t, err)
	assert.Equal(t, "FPW-2026-55555", out.InvoiceID)
}
