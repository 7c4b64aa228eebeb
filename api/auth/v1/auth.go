// Package v1 是 koober.auth.v1 的消息定义
package v1

import "time"

type User struct {
	DisplayName string `json:"display_name"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

type Session struct {
	User        *User     `json:"user"`
	SessionId   string    `json:"session_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SignInResponse struct {
	Session *Session `json:"session"`
}

type SignUpRequest struct {
	FullName string `json:"full_name"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type SignUpResponse struct {
	Session *Session `json:"session"`
}

type SignOutRequest struct {
	AccessToken string `json:"access_token"`
}

type SignOutResponse struct{}

type GetSessionRequest struct {
	AccessToken string `json:"access_token"`
}

type GetSessionResponse struct {
	Session *Session `json:"session"`
}
