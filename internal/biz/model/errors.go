package model

import (
	"errors"
	"fmt"
)

// ErrorMessage 面向用户展示的错误信息
type ErrorMessage struct {
	Title   string
	Message string
}

// MessageError 可以转换为展示信息的错误
type MessageError interface {
	error
	ErrorMessage() ErrorMessage
}

// ErrorMessageOf 从错误链中取出展示信息
func ErrorMessageOf(err error) (ErrorMessage, bool) {
	var me MessageError
	if errors.As(err, &me) {
		return me.ErrorMessage(), true
	}
	return ErrorMessage{}, false
}

type SignInErrorKind int

const (
	SignInErrorUnknown SignInErrorKind = iota
	SignInErrorUnauthorized
	SignInErrorUnavailable
)

func (k SignInErrorKind) String() string {
	switch k {
	case SignInErrorUnauthorized:
		return "unauthorized"
	case SignInErrorUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

func (k SignInErrorKind) ErrorMessage() ErrorMessage {
	switch k {
	case SignInErrorUnauthorized:
		return ErrorMessage{
			Title:   "Sign In Failed",
			Message: "The email or password you entered is incorrect.",
		}
	case SignInErrorUnavailable:
		return ErrorMessage{
			Title:   "Sign In Failed",
			Message: "Could not reach the server. Please check your connection and try again.",
		}
	default:
		return ErrorMessage{
			Title:   "Sign In Failed",
			Message: "Could not sign in. Please try again.",
		}
	}
}

// SignInError 远程认证失败
type SignInError struct {
	Kind SignInErrorKind
	Err  error
}

func NewSignInError(kind SignInErrorKind, err error) *SignInError {
	return &SignInError{Kind: kind, Err: err}
}

func (e *SignInError) Error() string {
	return e.Kind.ErrorMessage().Message
}

func (e *SignInError) Unwrap() error {
	return e.Err
}

func (e *SignInError) ErrorMessage() ErrorMessage {
	return e.Kind.ErrorMessage()
}

// Is 按错误种类比较, 使 errors.Is(err, &SignInError{Kind: SignInErrorUnauthorized}) 成立
func (e *SignInError) Is(target error) bool {
	t, ok := target.(*SignInError)
	return ok && t.Kind == e.Kind
}

type SignUpErrorKind int

const (
	SignUpErrorUnknown SignUpErrorKind = iota
	SignUpErrorAccountExists
	SignUpErrorInvalidInput
	SignUpErrorUnavailable
)

func (k SignUpErrorKind) String() string {
	switch k {
	case SignUpErrorAccountExists:
		return "account_exists"
	case SignUpErrorInvalidInput:
		return "invalid_input"
	case SignUpErrorUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

func (k SignUpErrorKind) ErrorMessage() ErrorMessage {
	switch k {
	case SignUpErrorAccountExists:
		return ErrorMessage{
			Title:   "Sign Up Failed",
			Message: "An account with this email already exists.",
		}
	case SignUpErrorInvalidInput:
		return ErrorMessage{
			Title:   "Sign Up Failed",
			Message: "Please check the account details you entered.",
		}
	case SignUpErrorUnavailable:
		return ErrorMessage{
			Title:   "Sign Up Failed",
			Message: "Could not reach the server. Please check your connection and try again.",
		}
	default:
		return ErrorMessage{
			Title:   "Sign Up Failed",
			Message: "Could not create your account. Please try again.",
		}
	}
}

// SignUpError 远程注册失败
type SignUpError struct {
	Kind SignUpErrorKind
	Err  error
}

func NewSignUpError(kind SignUpErrorKind, err error) *SignUpError {
	return &SignUpError{Kind: kind, Err: err}
}

func (e *SignUpError) Error() string {
	return e.Kind.ErrorMessage().Message
}

func (e *SignUpError) Unwrap() error {
	return e.Err
}

func (e *SignUpError) ErrorMessage() ErrorMessage {
	return e.Kind.ErrorMessage()
}

func (e *SignUpError) Is(target error) bool {
	t, ok := target.(*SignUpError)
	return ok && t.Kind == e.Kind
}

type StoreSessionErrorKind int

const (
	StoreSessionErrorUnknown StoreSessionErrorKind = iota
)

func (k StoreSessionErrorKind) String() string {
	return "unknown"
}

func (k StoreSessionErrorKind) ErrorMessage() ErrorMessage {
	return ErrorMessage{
		Title:   "Sign In Failed",
		Message: "Could not save your session on this device. Please try again.",
	}
}

// StoreSessionError 本地保存会话失败.
// Session 保留认证成功但未能保存的会话, 认证结果本身仍然有效.
type StoreSessionError struct {
	Kind    StoreSessionErrorKind
	Session *UserSession
	Err     error
}

func NewStoreSessionError(kind StoreSessionErrorKind, err error) *StoreSessionError {
	return &StoreSessionError{Kind: kind, Err: err}
}

func (e *StoreSessionError) Error() string {
	return e.Kind.ErrorMessage().Message
}

func (e *StoreSessionError) Unwrap() error {
	return e.Err
}

func (e *StoreSessionError) ErrorMessage() ErrorMessage {
	return e.Kind.ErrorMessage()
}

func (e *StoreSessionError) Is(target error) bool {
	t, ok := target.(*StoreSessionError)
	return ok && t.Kind == e.Kind
}

type GetStoredSessionErrorKind int

const (
	GetStoredSessionErrorUnknown GetStoredSessionErrorKind = iota
	GetStoredSessionErrorCorrupted
)

func (k GetStoredSessionErrorKind) String() string {
	if k == GetStoredSessionErrorCorrupted {
		return "corrupted"
	}
	return "unknown"
}

func (k GetStoredSessionErrorKind) ErrorMessage() ErrorMessage {
	if k == GetStoredSessionErrorCorrupted {
		return ErrorMessage{
			Title:   "Session Unavailable",
			Message: "The saved session is damaged. Please sign in again.",
		}
	}
	return ErrorMessage{
		Title:   "Session Unavailable",
		Message: "Could not read the saved session.",
	}
}

// GetStoredSessionError 读取本地会话失败
type GetStoredSessionError struct {
	Kind GetStoredSessionErrorKind
	Err  error
}

func NewGetStoredSessionError(kind GetStoredSessionErrorKind, err error) *GetStoredSessionError {
	return &GetStoredSessionError{Kind: kind, Err: err}
}

func (e *GetStoredSessionError) Error() string {
	return e.Kind.ErrorMessage().Message
}

func (e *GetStoredSessionError) Unwrap() error {
	return e.Err
}

func (e *GetStoredSessionError) ErrorMessage() ErrorMessage {
	return e.Kind.ErrorMessage()
}

func (e *GetStoredSessionError) Is(target error) bool {
	t, ok := target.(*GetStoredSessionError)
	return ok && t.Kind == e.Kind
}

// DetailedError 带底层原因的描述, 用于日志
func DetailedError(err error) string {
	if u := errors.Unwrap(err); u != nil {
		return fmt.Sprintf("%s: %v", err.Error(), u)
	}
	return err.Error()
}
