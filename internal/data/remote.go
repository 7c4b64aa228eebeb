package data

import (
	"context"
	"errors"

	v1 "koober/api/auth/v1"
	"koober/api/auth/v1/authv1connect"
	"koober/internal/biz/model"

	"connectrpc.com/connect"
	"go.uber.org/zap"
)

// UserAuthenticationRemoteAPI 客户端访问远程认证服务的接口, 每次调用只产生一个结果
type UserAuthenticationRemoteAPI interface {
	SignIn(ctx context.Context, username, password string) (*model.UserSession, error)
	SignUp(ctx context.Context, account model.NewAccount) (*model.UserSession, error)
	SignOut(ctx context.Context, session *model.UserSession) error
}

type authRemoteAPI struct {
	client authv1connect.AuthServiceClient
	l      *zap.Logger
}

func NewUserAuthenticationRemoteAPI(httpClient connect.HTTPClient, baseURL string, logger *zap.Logger) UserAuthenticationRemoteAPI {
	return &authRemoteAPI{
		client: authv1connect.NewAuthServiceClient(httpClient, baseURL),
		l:      logger,
	}
}

func (a *authRemoteAPI) SignIn(ctx context.Context, username, password string) (*model.UserSession, error) {
	resp, err := a.client.SignIn(ctx, connect.NewRequest(&v1.SignInRequest{
		Username: username,
		Password: password,
	}))
	if err != nil {
		a.l.Debug("Remote sign in failed", zap.String("username", username), zap.Error(err))
		return nil, model.NewSignInError(signInErrorKind(err), err)
	}
	if resp.Msg.Session == nil || resp.Msg.Session.User == nil {
		return nil, model.NewSignInError(model.SignInErrorUnknown, errors.New("empty session in sign in response"))
	}
	return fromProtoSession(resp.Msg.Session), nil
}

func (a *authRemoteAPI) SignUp(ctx context.Context, account model.NewAccount) (*model.UserSession, error) {
	resp, err := a.client.SignUp(ctx, connect.NewRequest(&v1.SignUpRequest{
		FullName: account.FullName,
		Nickname: account.Nickname,
		Email:    account.Email,
		Phone:    account.Phone,
		Password: account.Password,
	}))
	if err != nil {
		a.l.Debug("Remote sign up failed", zap.String("email", account.Email), zap.Error(err))
		return nil, model.NewSignUpError(signUpErrorKind(err), err)
	}
	if resp.Msg.Session == nil || resp.Msg.Session.User == nil {
		return nil, model.NewSignUpError(model.SignUpErrorUnknown, errors.New("empty session in sign up response"))
	}
	return fromProtoSession(resp.Msg.Session), nil
}

func (a *authRemoteAPI) SignOut(ctx context.Context, session *model.UserSession) error {
	_, err := a.client.SignOut(ctx, connect.NewRequest(&v1.SignOutRequest{
		AccessToken: session.Tokens.AccessToken,
	}))
	return err
}

func signInErrorKind(err error) model.SignInErrorKind {
	switch connect.CodeOf(err) {
	// 缺少用户名或密码同样视为凭据错误
	case connect.CodeUnauthenticated, connect.CodeInvalidArgument:
		return model.SignInErrorUnauthorized
	case connect.CodeUnavailable, connect.CodeDeadlineExceeded:
		return model.SignInErrorUnavailable
	default:
		return model.SignInErrorUnknown
	}
}

func signUpErrorKind(err error) model.SignUpErrorKind {
	switch connect.CodeOf(err) {
	case connect.CodeAlreadyExists:
		return model.SignUpErrorAccountExists
	case connect.CodeInvalidArgument:
		return model.SignUpErrorInvalidInput
	case connect.CodeUnavailable, connect.CodeDeadlineExceeded:
		return model.SignUpErrorUnavailable
	default:
		return model.SignUpErrorUnknown
	}
}

func fromProtoSession(s *v1.Session) *model.UserSession {
	return &model.UserSession{
		User: model.User{
			DisplayName: s.User.DisplayName,
			FullName:    s.User.FullName,
			Email:       s.User.Email,
			Phone:       s.User.Phone,
		},
		Tokens: model.AuthTokens{
			SessionID:   s.SessionId,
			AccessToken: s.AccessToken,
			ExpiresAt:   s.ExpiresAt,
		},
	}
}
