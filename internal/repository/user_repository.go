package repository

import (
	"context"

	"finepharma/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, bool, error)
	List(ctx context.Context) ([]model.User, error)

	UpdateRole(ctx context.Context, userID int64, role model.Role) error
	UpdateStatus(ctx context.Context, userID int64, status model.UserStatus) error
	UpdateLastLogin(ctx context.Context, userID int64) error

	// ロールごとの人数
	CountByRole(ctx context.Context) (map[model.Role]int64, error)
}
