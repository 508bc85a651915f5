package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"finepharma/internal/domain/model"
	repo "finepharma/internal/repository"
	"finepharma/internal/watch"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = 15 * time.Minute

type AuthUsecase struct {
	users     repo.UserRepository
	hub       *watch.Hub
	jwtSecret []byte
}

func NewAuthUsecase(users repo.UserRepository, hub *watch.Hub, jwtSecret string) *AuthUsecase {
	return &AuthUsecase{users: users, hub: hub, jwtSecret: []byte(jwtSecret)}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthOutput struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      UserOutput `json:"user"`
}

// Register は顧客としてサインアップする。
// staff/adminへの昇格は既存adminの操作でのみ行う。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (AuthOutput, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" {
		return AuthOutput{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	if email == "" || !strings.Contains(email, "@") {
		return AuthOutput{}, fmt.Errorf("%w: valid email required", ErrValidation)
	}
	if len(in.Password) < 8 {
		return AuthOutput{}, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	if _, found, err := u.users.FindByEmail(ctx, email); err != nil {
		return AuthOutput{}, err
	} else if found {
		return AuthOutput{}, fmt.Errorf("%w: email already registered", ErrAlreadyExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthOutput{}, err
	}

	user := model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleCustomer,
		Status:       model.UserStatusActive,
		Address:      strings.TrimSpace(in.Address),
	}
	if err := u.users.Create(ctx, &user); err != nil {
		return AuthOutput{}, err
	}

	u.hub.Notify(watch.TopicUsers)
	return u.issue(user)
}

// Login はメール+パスワード認証。無効化済みアカウントは拒否する。
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (AuthOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return AuthOutput{}, fmt.Errorf("%w: email and password required", ErrValidation)
	}

	user, found, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return AuthOutput{}, err
	}
	if !found {
		return AuthOutput{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if user.Status == model.UserStatusDisabled {
		return AuthOutput{}, fmt.Errorf("%w: account disabled", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return AuthOutput{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	if err := u.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return AuthOutput{}, err
	}

	return u.issue(user)
}

// Me はトークン主体の現在情報を返す
func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserOutput, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err == repo.ErrNotFound {
		return UserOutput{}, ErrNotFound
	}
	if err != nil {
		return UserOutput{}, err
	}
	return toUserOutput(user), nil
}

func (u *AuthUsecase) issue(user model.User) (AuthOutput, error) {
	now := time.Now()
	exp := now.Add(accessTokenTTL)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": string(user.Role),
		"name": user.Name,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(u.jwtSecret)
	if err != nil {
		return AuthOutput{}, err
	}

	return AuthOutput{
		Token:     signed,
		ExpiresAt: exp,
		User:      toUserOutput(user),
	}, nil
}

// ParseToken は署名検証してActorに写す。
// ロールはクレームから取る（失効はトークン寿命で担保）。
func (u *AuthUsecase) ParseToken(tokenStr string) (Actor, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return u.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return Actor{}, ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return Actor{}, ErrUnauthorized
	}
	role, _ := claims["role"].(string)
	name, _ := claims["name"].(string)

	return Actor{ID: id, Name: name, Role: model.Role(role)}, nil
}
