package service

import (
	"context"
	"errors"

	v1 "koober/api/auth/v1"
	"koober/api/auth/v1/authv1connect"
	"koober/internal/biz/model"

	"connectrpc.com/connect"
	"go.uber.org/zap"
)

// AuthService 实现 Connect 认证服务
type AuthService struct {
	uc model.AuthUseCase
	l  *zap.Logger
}

// 显式接口检查
var _ authv1connect.AuthServiceHandler = (*AuthService)(nil)

func NewAuthService(uc model.AuthUseCase, logger *zap.Logger) authv1connect.AuthServiceHandler {
	return &AuthService{
		uc: uc,
		l:  logger,
	}
}

func (s *AuthService) SignIn(ctx context.Context, req *connect.Request[v1.SignInRequest]) (*connect.Response[v1.SignInResponse], error) {
	if req.Msg.Username == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("username and password are required"))
	}

	session, err := s.uc.SignIn(ctx, req.Msg.Username, req.Msg.Password)
	if err != nil {
		return nil, s.toConnectError(err)
	}

	return connect.NewResponse(&v1.SignInResponse{
		Session: toProtoSession(session),
	}), nil
}

func (s *AuthService) SignUp(ctx context.Context, req *connect.Request[v1.SignUpRequest]) (*connect.Response[v1.SignUpResponse], error) {
	session, err := s.uc.SignUp(ctx, model.NewAccount{
		FullName: req.Msg.FullName,
		Nickname: req.Msg.Nickname,
		Email:    req.Msg.Email,
		Phone:    req.Msg.Phone,
		Password: req.Msg.Password,
	})
	if err != nil {
		return nil, s.toConnectError(err)
	}

	return connect.NewResponse(&v1.SignUpResponse{
		Session: toProtoSession(session),
	}), nil
}

func (s *AuthService) SignOut(ctx context.Context, req *connect.Request[v1.SignOutRequest]) (*connect.Response[v1.SignOutResponse], error) {
	if err := s.uc.SignOut(ctx, req.Msg.AccessToken); err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(&v1.SignOutResponse{}), nil
}

func (s *AuthService) GetSession(ctx context.Context, req *connect.Request[v1.GetSessionRequest]) (*connect.Response[v1.GetSessionResponse], error) {
	session, err := s.uc.GetSession(ctx, req.Msg.AccessToken)
	if err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(&v1.GetSessionResponse{
		Session: toProtoSession(session),
	}), nil
}

// toConnectError 内部错误不向客户端暴露细节
func (s *AuthService) toConnectError(err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrSessionNotFound),
		errors.Is(err, model.ErrSessionExpired):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, model.ErrUserAlreadyExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, model.ErrInvalidAccount):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		s.l.Error("Auth request failed", zap.Error(err))
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
}

func toProtoSession(session *model.UserSession) *v1.Session {
	return &v1.Session{
		User: &v1.User{
			DisplayName: session.User.DisplayName,
			FullName:    session.User.FullName,
			Email:       session.User.Email,
			Phone:       session.User.Phone,
		},
		SessionId:   session.Tokens.SessionID,
		AccessToken: session.Tokens.AccessToken,
		ExpiresAt:   session.Tokens.ExpiresAt,
	}
}
