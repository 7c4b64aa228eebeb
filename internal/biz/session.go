package biz

import (
	"context"
	"fmt"

	"koober/internal/biz/model"
	"koober/internal/data"

	"go.uber.org/zap"
)

// StoredSessionUseCase 读取本地已保存的会话, 用于启动时恢复登录状态
type StoredSessionUseCase struct {
	store data.UserSessionStore
}

func NewStoredSessionUseCase(store data.UserSessionStore) *StoredSessionUseCase {
	return &StoredSessionUseCase{store: store}
}

// Start 没有已保存会话时返回 (nil, nil)
func (uc *StoredSessionUseCase) Start(ctx context.Context) (*model.UserSession, error) {
	return uc.store.GetStoredAuthenticatedSession(ctx)
}

// SignOutUseCase 吊销远程会话并删除本地会话, 远程失败只记录日志
type SignOutUseCase struct {
	remoteAPI data.UserAuthenticationRemoteAPI
	store     data.UserSessionStore
	l         *zap.Logger
}

func NewSignOutUseCase(remoteAPI data.UserAuthenticationRemoteAPI, store data.UserSessionStore, logger *zap.Logger) *SignOutUseCase {
	return &SignOutUseCase{
		remoteAPI: remoteAPI,
		store:     store,
		l:         logger,
	}
}

// Start 返回被注销的会话, 本来就没有登录时返回 (nil, nil)
func (uc *SignOutUseCase) Start(ctx context.Context) (*model.UserSession, error) {
	session, err := uc.store.GetStoredAuthenticatedSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	if err := uc.remoteAPI.SignOut(ctx, session); err != nil {
		uc.l.Warn("Remote sign out failed, removing local session anyway",
			zap.String("email", session.User.Email),
			zap.Error(err),
		)
	}

	if err := uc.store.Delete(ctx, session); err != nil {
		return nil, fmt.Errorf("delete stored session: %w", err)
	}

	uc.l.Info("Signed out", zap.String("email", session.User.Email))
	return session, nil
}
