package usecase

import (
	"context"
	"testing"

	"finepharma/internal/domain/model"
	"finepharma/internal/watch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProductUsecaseForTest(products *productRepoMock, inventory *inventoryRepoMock, audits *auditRepoMock) *ProductUsecase {
	return NewProductUsecase(products, inventory, audits, watch.NewHub())
}

func TestProductCreate_AppliesDefaults(t *testing.T) {
	products := &productRepoMock{}
	uc := newProductUsecaseForTest(products, &inventoryRepoMock{}, &auditRepoMock{})

	products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.HSNCode == "3004" && p.GSTRatePct == 5.0 && p.LowStockThreshold == 10 &&
			p.Status == model.ProductStatusActive
	})).Return(model.Product{ID: 1}, nil)

	_, err := uc.Create(context.Background(), admin, ProductInput{
		Name: "Paracetamol 500mg", Category: "analgesic", Price: 100, WholesalePrice: 80, Stock: 50,
	})
	require.NoError(t, err)
	products.AssertExpectations(t)
}

func TestProductCreate_StaffForbidden(t *testing.T) {
	uc := newProductUsecaseForTest(&productRepoMock{}, &inventoryRepoMock{}, &auditRepoMock{})

	_, err := uc.Create(context.Background(), staff, ProductInput{
		Name: "X", Category: "y", Price: 1,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestProductCreate_Validation(t *testing.T) {
	uc := newProductUsecaseForTest(&productRepoMock{}, &inventoryRepoMock{}, &auditRepoMock{})

	_, err := uc.Create(context.Background(), admin, ProductInput{Category: "y", Price: 1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = uc.Create(context.Background(), admin, ProductInput{Name: "X", Category: "y", Price: -5})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateStock_RecordsDeltaAndAudit(t *testing.T) {
	products := &productRepoMock{}
	inventory := &inventoryRepoMock{}
	audits := &auditRepoMock{}
	uc := newProductUsecaseForTest(products, inventory, audits)

	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Stock: 30}, nil)
	inventory.On("SetStock", mock.Anything, int64(1), int64(45)).Return(nil)
	inventory.On("CreateAdjustment", mock.Anything, mock.MatchedBy(func(a model.StockAdjustment) bool {
		return a.Delta == 15 && a.Reason == "restock"
	})).Return(nil)
	audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateStock && l.ResourceID == 1
	})).Return(nil)

	err := uc.UpdateStock(context.Background(), staff, 1, 45, "restock")
	require.NoError(t, err)
	inventory.AssertExpectations(t)
	audits.AssertExpectations(t)
}

func TestUpdateStock_CustomerForbidden(t *testing.T) {
	uc := newProductUsecaseForTest(&productRepoMock{}, &inventoryRepoMock{}, &auditRepoMock{})

	err := uc.UpdateStock(context.Background(), customer, 1, 45, "restock")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestProductGet_InactiveHiddenFromCustomer(t *testing.T) {
	products := &productRepoMock{}
	uc := newProductUsecaseForTest(products, &inventoryRepoMock{}, &auditRepoMock{})

	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{
		ID: 1, Status: model.ProductStatusInactive,
	}, nil)

	_, err := uc.Get(context.Background(), customer, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	// staffには見える
	p, err := uc.Get(context.Background(), staff, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
}

func TestProductDelete_IsSoftDelete(t *testing.T) {
	products := &productRepoMock{}
	uc := newProductUsecaseForTest(products, &inventoryRepoMock{}, &auditRepoMock{})

	products.On("SetStatus", mock.Anything, int64(1), model.ProductStatusInactive, admin.ID).Return(nil)

	err := uc.Delete(context.Background(), admin, 1)
	require.NoError(t, err)
	products.AssertExpectations(t)
}
