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

var admin = Actor{ID: 1, Name: "Admin", Role: model.RoleAdmin}

func newUserUsecaseForTest(users *userRepoMock, audits *auditRepoMock) *UserUsecase {
	return NewUserUsecase(users, audits, watch.NewHub())
}

func TestUpdateRole(t *testing.T) {
	users := &userRepoMock{}
	audits := &auditRepoMock{}
	uc := newUserUsecaseForTest(users, audits)

	users.On("FindByID", mock.Anything, int64(5)).Return(model.User{ID: 5, Role: model.RoleCustomer}, nil)
	users.On("UpdateRole", mock.Anything, int64(5), model.RoleStaff).Return(nil)
	audits.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.UpdateRole(context.Background(), admin, 5, model.RoleStaff)
	require.NoError(t, err)
	users.AssertExpectations(t)
	audits.AssertExpectations(t)
}

func TestUpdateRole_SelfProtection(t *testing.T) {
	users := &userRepoMock{}
	uc := newUserUsecaseForTest(users, &auditRepoMock{})

	// 自分自身のロールは変えられない
	err := uc.UpdateRole(context.Background(), admin, admin.ID, model.RoleCustomer)
	assert.ErrorIs(t, err, ErrUnauthorized)
	users.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateRole_StaffForbidden(t *testing.T) {
	uc := newUserUsecaseForTest(&userRepoMock{}, &auditRepoMock{})

	err := uc.UpdateRole(context.Background(), staff, 5, model.RoleAdmin)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateRole_UnknownRole(t *testing.T) {
	uc := newUserUsecaseForTest(&userRepoMock{}, &auditRepoMock{})

	err := uc.UpdateRole(context.Background(), admin, 5, model.Role("superadmin"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateStatus_SelfProtection(t *testing.T) {
	users := &userRepoMock{}
	uc := newUserUsecaseForTest(users, &auditRepoMock{})

	// 自分自身は無効化できない
	err := uc.UpdateStatus(context.Background(), admin, admin.ID, model.UserStatusDisabled)
	assert.ErrorIs(t, err, ErrUnauthorized)
	users.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_Disable(t *testing.T) {
	users := &userRepoMock{}
	audits := &auditRepoMock{}
	uc := newUserUsecaseForTest(users, audits)

	users.On("FindByID", mock.Anything, int64(5)).Return(model.User{ID: 5, Status: model.UserStatusActive}, nil)
	users.On("UpdateStatus", mock.Anything, int64(5), model.UserStatusDisabled).Return(nil)
	audits.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.UpdateStatus(context.Background(), admin, 5, model.UserStatusDisabled)
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestList_StaffForbidden(t *testing.T) {
	uc := newUserUsecaseForTest(&userRepoMock{}, &auditRepoMock{})

	_, err := uc.List(context.Background(), staff)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
