package model

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// User 用户资料, 以 Email 作为身份标识
type User struct {
	DisplayName string
	FullName    string
	Email       string
	Phone       string
}

// Account 服务端持久化的用户记录
type Account struct {
	ID           int64
	User         User
	PasswordHash string
	CreatedAt    time.Time
}

// AuthTokens 远程会话凭证, 对客户端而言是不透明的
type AuthTokens struct {
	SessionID   string
	AccessToken string
	ExpiresAt   time.Time
}

// UserSession 已认证的用户会话, 只能由认证成功产生
type UserSession struct {
	User   User
	Tokens AuthTokens
}

// Expired 判断会话在 now 时刻是否已过期, ExpiresAt 为零值表示不过期
func (s UserSession) Expired(now time.Time) bool {
	return !s.Tokens.ExpiresAt.IsZero() && !now.Before(s.Tokens.ExpiresAt)
}

// NewAccount 注册输入
type NewAccount struct {
	FullName string
	Nickname string
	Email    string
	Phone    string
	Password string
}

// AuthUseCase 服务端认证用例接口
type AuthUseCase interface {
	SignIn(ctx context.Context, email, password string) (*UserSession, error)
	SignUp(ctx context.Context, account NewAccount) (*UserSession, error)
	GetSession(ctx context.Context, accessToken string) (*UserSession, error)
	SignOut(ctx context.Context, accessToken string) error
}

// SessionUseCase 客户端会话用例: 只产生一个会话或一个错误
type SessionUseCase interface {
	Start(ctx context.Context) (*UserSession, error)
}
