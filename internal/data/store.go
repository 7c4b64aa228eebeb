package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"koober/internal/biz/model"

	"go.uber.org/zap"
)

// UserSessionStore 客户端本地会话存储, 同一时间只保存一个已认证会话
type UserSessionStore interface {
	// GetStoredAuthenticatedSession 没有已保存会话时返回 (nil, nil)
	GetStoredAuthenticatedSession(ctx context.Context) (*model.UserSession, error)
	// Store 成功时返回已保存的会话
	Store(ctx context.Context, session *model.UserSession) (*model.UserSession, error)
	Delete(ctx context.Context, session *model.UserSession) error
}

// sessionFile 会话文件的磁盘格式
type sessionFile struct {
	Version int `json:"version"`
	User    struct {
		DisplayName string `json:"display_name"`
		FullName    string `json:"full_name"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
	} `json:"user"`
	SessionID   string    `json:"session_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

const sessionFileVersion = 1

type fileSessionStore struct {
	mu   sync.Mutex
	path string
	l    *zap.Logger
}

// NewFileUserSessionStore 以 JSON 文件保存会话, 文件权限 0600
func NewFileUserSessionStore(path string, logger *zap.Logger) UserSessionStore {
	return &fileSessionStore{
		path: path,
		l:    logger,
	}
}

// DefaultSessionFile 用户配置目录下的默认会话文件
func DefaultSessionFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "koober", "session.json"), nil
}

func (s *fileSessionStore) GetStoredAuthenticatedSession(ctx context.Context) (*model.UserSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.NewGetStoredSessionError(model.GetStoredSessionErrorUnknown, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, model.NewGetStoredSessionError(model.GetStoredSessionErrorUnknown, err)
	}

	var f sessionFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, model.NewGetStoredSessionError(model.GetStoredSessionErrorCorrupted, err)
	}
	if f.Version != sessionFileVersion || f.User.Email == "" {
		return nil, model.NewGetStoredSessionError(model.GetStoredSessionErrorCorrupted,
			fmt.Errorf("unsupported session file version %d", f.Version))
	}

	return &model.UserSession{
		User: model.User{
			DisplayName: f.User.DisplayName,
			FullName:    f.User.FullName,
			Email:       f.User.Email,
			Phone:       f.User.Phone,
		},
		Tokens: model.AuthTokens{
			SessionID:   f.SessionID,
			AccessToken: f.AccessToken,
			ExpiresAt:   f.ExpiresAt,
		},
	}, nil
}

func (s *fileSessionStore) Store(ctx context.Context, session *model.UserSession) (*model.UserSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.NewStoreSessionError(model.StoreSessionErrorUnknown, err)
	}

	f := sessionFile{
		Version:     sessionFileVersion,
		SessionID:   session.Tokens.SessionID,
		AccessToken: session.Tokens.AccessToken,
		ExpiresAt:   session.Tokens.ExpiresAt,
	}
	f.User.DisplayName = session.User.DisplayName
	f.User.FullName = session.User.FullName
	f.User.Email = session.User.Email
	f.User.Phone = session.User.Phone

	b, err := json.MarshalIndent(&f, "", "  ")
	if err != nil {
		return nil, model.NewStoreSessionError(model.StoreSessionErrorUnknown, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(s.path, b); err != nil {
		s.l.Error("Failed to store session", zap.String("path", s.path), zap.Error(err))
		return nil, model.NewStoreSessionError(model.StoreSessionErrorUnknown, err)
	}

	s.l.Debug("Session stored", zap.String("path", s.path), zap.String("email", session.User.Email))
	stored := *session
	return &stored, nil
}

func (s *fileSessionStore) Delete(ctx context.Context, _ *model.UserSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete session file: %w", err)
	}
	return nil
}

// writeFileAtomic 先写临时文件再 rename, 避免留下半个会话文件
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
