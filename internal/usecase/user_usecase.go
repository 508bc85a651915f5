package usecase

import (
	"context"
	"fmt"
	"time"

	"finepharma/internal/domain/model"
	"finepharma/internal/rbac"
	repo "finepharma/internal/repository"
	"finepharma/internal/watch"
)

type UserUsecase struct {
	users repo.UserRepository
	audit repo.AuditLogRepository
	hub   *watch.Hub
}

func NewUserUsecase(users repo.UserRepository, audit repo.AuditLogRepository, hub *watch.Hub) *UserUsecase {
	return &UserUsecase{users: users, audit: audit, hub: hub}
}

type UserOutput struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	Address     string     `json:"address"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toUserOutput(u model.User) UserOutput {
	return UserOutput{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		Status:      string(u.Status),
		Address:     u.Address,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func (u *UserUsecase) List(ctx context.Context, actor Actor) ([]UserOutput, error) {
	if !rbac.Can(actor.Role, rbac.ActionViewUsers) {
		return nil, ErrUnauthorized
	}
	users, err := u.users.List(ctx)
	if err != nil {
		return nil, err
	}
	outs := make([]UserOutput, 0, len(users))
	for _, usr := range users {
		outs = append(outs, toUserOutput(usr))
	}
	return outs, nil
}

func (u *UserUsecase) CountByRole(ctx context.Context, actor Actor) (map[model.Role]int64, error) {
	if !rbac.Can(actor.Role, rbac.ActionViewUsers) {
		return nil, ErrUnauthorized
	}
	return u.users.CountByRole(ctx)
}

func isValidRole(r model.Role) bool {
	switch r {
	case model.RoleAdmin, model.RoleStaff, model.RoleCustomer:
		return true
	}
	return false
}

// UpdateRole はロール変更。自分自身のロールは変えられない
// （最後のadminが自分を降格して詰むのを防ぐ）。
func (u *UserUsecase) UpdateRole(ctx context.Context, actor Actor, userID int64, newRole model.Role) error {
	if !rbac.Can(actor.Role, rbac.ActionUpdateUserRole) {
		return ErrUnauthorized
	}
	if userID <= 0 {
		return fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	if !isValidRole(newRole) {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, newRole)
	}
	if userID == actor.ID {
		return fmt.Errorf("%w: cannot change own role", ErrUnauthorized)
	}

	target, err := u.users.FindByID(ctx, userID)
	if err == repo.ErrNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if target.Role == newRole {
		return nil
	}

	if err := u.users.UpdateRole(ctx, userID, newRole); err != nil {
		return err
	}
	if err := u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  actor.ID,
		ActorRole:    actor.Role,
		Action:       model.AuditActionUpdateUserRole,
		ResourceType: model.AuditResourceUser,
		ResourceID:   userID,
		BeforeJSON:   fmt.Sprintf(`{"role":%q}`, target.Role),
		AfterJSON:    fmt.Sprintf(`{"role":%q}`, newRole),
		CreatedAt:    time.Now(),
	}); err != nil {
		return err
	}

	u.hub.Notify(watch.TopicUsers)
	return nil
}

// UpdateStatus は有効/無効の切り替え。自分自身は無効化できない。
func (u *UserUsecase) UpdateStatus(ctx context.Context, actor Actor, userID int64, newStatus model.UserStatus) error {
	if !rbac.Can(actor.Role, rbac.ActionUpdateUserStatus) {
		return ErrUnauthorized
	}
	if userID <= 0 {
		return fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	if newStatus != model.UserStatusActive && newStatus != model.UserStatusDisabled {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}
	if userID == actor.ID {
		return fmt.Errorf("%w: cannot change own status", ErrUnauthorized)
	}

	target, err := u.users.FindByID(ctx, userID)
	if err == repo.ErrNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if target.Status == newStatus {
		return nil
	}

	if err := u.users.UpdateStatus(ctx, userID, newStatus); err != nil {
		return err
	}
	if err := u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  actor.ID,
		ActorRole:    actor.Role,
		Action:       model.AuditActionUpdateUserStatus,
		ResourceType: model.AuditResourceUser,
		ResourceID:   userID,
		BeforeJSON:   fmt.Sprintf(`{"status":%q}`, target.Status),
		AfterJSON:    fmt.Sprintf(`{"status":%q}`, newStatus),
		CreatedAt:    time.Now(),
	}); err != nil {
		return err
	}

	u.hub.Notify(watch.TopicUsers)
	return nil
}

// AuditLogs は操作履歴の閲覧（adminのみ）
func (u *UserUsecase) AuditLogs(ctx context.Context, actor Actor, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if !rbac.Can(actor.Role, rbac.ActionViewUsers) {
		return nil, ErrUnauthorized
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}
	return u.audit.List(ctx, f)
}

// Subscribe はユーザー一覧のライブ購読（adminのみ）
func (u *UserUsecase) Subscribe(ctx context.Context, actor Actor, fn func([]UserOutput)) (func(), error) {
	if !rbac.Can(actor.Role, rbac.ActionViewUsers) {
		return nil, ErrUnauthorized
	}

	outs, err := u.List(ctx, actor)
	if err != nil {
		return nil, err
	}

	ch, cancel := u.hub.Subscribe(watch.TopicUsers)
	fn(outs)

	go func() {
		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				outs, err := u.List(ctx, actor)
				if err != nil {
					continue
				}
				fn(outs)
			}
		}
	}()
	return cancel, nil
}
