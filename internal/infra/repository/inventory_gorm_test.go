package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGormWithMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	return gdb, mock
}

func TestDecreaseStockIfEnough(t *testing.T) {
	gdb, mock := newGormWithMock(t)
	repo := NewInventoryGormRepository(gdb)

	t.Run("enough stock", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ok, err := repo.DecreaseStockIfEnough(context.Background(), 1, 5)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("not enough stock", func(t *testing.T) {
		// 条件付きUPDATEが1行も当たらない＝在庫不足
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		ok, err := repo.DecreaseStockIfEnough(context.Background(), 1, 9999)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStock_NotFound(t *testing.T) {
	gdb, mock := newGormWithMock(t)
	repo := NewInventoryGormRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "products" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.SetStock(context.Background(), 404, 10)
	assert.Error(t, err)
}

func TestIncreaseStock(t *testing.T) {
	gdb, mock := newGormWithMock(t)
	repo := NewInventoryGormRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "products" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.IncreaseStock(context.Background(), 1, 5)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
