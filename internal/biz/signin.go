package biz

import (
	"context"
	"errors"

	"koober/internal/biz/model"
	"koober/internal/data"

	"go.uber.org/zap"
)

// SignInUseCase 先远程认证再保存会话, 每次 Start 都是一次独立的认证
type SignInUseCase struct {
	username  string
	password  string
	remoteAPI data.UserAuthenticationRemoteAPI
	store     data.UserSessionStore
	l         *zap.Logger
}

var _ model.SessionUseCase = (*SignInUseCase)(nil)

func NewSignInUseCase(username, password string, remoteAPI data.UserAuthenticationRemoteAPI, store data.UserSessionStore, logger *zap.Logger) *SignInUseCase {
	return &SignInUseCase{
		username:  username,
		password:  password,
		remoteAPI: remoteAPI,
		store:     store,
		l:         logger,
	}
}

// Start 返回已保存的会话, 或认证错误, 或保存错误, 三者只出现其一
func (uc *SignInUseCase) Start(ctx context.Context) (*model.UserSession, error) {
	uc.l.Debug("Signing in", zap.String("username", uc.username))

	return authenticateAndStore(ctx, uc.store, uc.l, func(ctx context.Context) (*model.UserSession, error) {
		return uc.remoteAPI.SignIn(ctx, uc.username, uc.password)
	})
}

// SignUpUseCase 远程注册后保存会话, 失败传播规则与 SignInUseCase 相同
type SignUpUseCase struct {
	account   model.NewAccount
	remoteAPI data.UserAuthenticationRemoteAPI
	store     data.UserSessionStore
	l         *zap.Logger
}

var _ model.SessionUseCase = (*SignUpUseCase)(nil)

func NewSignUpUseCase(account model.NewAccount, remoteAPI data.UserAuthenticationRemoteAPI, store data.UserSessionStore, logger *zap.Logger) *SignUpUseCase {
	return &SignUpUseCase{
		account:   account,
		remoteAPI: remoteAPI,
		store:     store,
		l:         logger,
	}
}

func (uc *SignUpUseCase) Start(ctx context.Context) (*model.UserSession, error) {
	uc.l.Debug("Signing up", zap.String("email", uc.account.Email))

	return authenticateAndStore(ctx, uc.store, uc.l, func(ctx context.Context) (*model.UserSession, error) {
		return uc.remoteAPI.SignUp(ctx, uc.account)
	})
}

// authenticateAndStore 认证失败时不触碰存储; 保存失败不回滚远程会话,
// 未保存的会话随 StoreSessionError 一起返回
func authenticateAndStore(
	ctx context.Context,
	store data.UserSessionStore,
	l *zap.Logger,
	authenticate func(context.Context) (*model.UserSession, error),
) (*model.UserSession, error) {
	session, err := authenticate(ctx)
	if err != nil {
		l.Info("Authentication failed", zap.String("reason", model.DetailedError(err)))
		return nil, err
	}

	stored, err := store.Store(ctx, session)
	if err != nil {
		l.Warn("Authenticated session could not be stored",
			zap.String("email", session.User.Email),
			zap.String("reason", model.DetailedError(err)),
		)
		var storeErr *model.StoreSessionError
		if errors.As(err, &storeErr) {
			// 复制一份, 存储实现可能复用同一个错误值
			out := *storeErr
			if out.Session == nil {
				out.Session = session
			}
			return nil, &out
		}
		return nil, &model.StoreSessionError{Kind: model.StoreSessionErrorUnknown, Session: session, Err: err}
	}
	if stored == nil {
		l.Warn("Session store returned no session", zap.String("email", session.User.Email))
		return nil, &model.StoreSessionError{
			Kind:    model.StoreSessionErrorUnknown,
			Session: session,
			Err:     errors.New("session store returned no session"),
		}
	}

	l.Info("Signed in", zap.String("email", stored.User.Email))
	return stored, nil
}
