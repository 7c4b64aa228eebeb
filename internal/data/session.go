package data

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"koober/internal/biz/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// 会话 hash 字段
	fieldDisplayName = "display_name"
	fieldFullName    = "full_name"
	fieldEmail       = "email"
	fieldPhone       = "phone"
	fieldExpiresAt   = "expires_at"
)

// SessionRepo 服务端已签发会话的登记表, 删除即吊销
type SessionRepo interface {
	Create(ctx context.Context, session *model.UserSession, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*model.UserSession, error)
	Delete(ctx context.Context, sessionID string) error
}

type sessionRepo struct {
	rdb    redis.Cmdable
	prefix string
	l      *zap.Logger
}

func NewSessionRepo(data *Data, logger *zap.Logger) SessionRepo {
	return newSessionRepo(data.rdb, data.keyPrefix, logger)
}

func newSessionRepo(rdb redis.Cmdable, prefix string, logger *zap.Logger) *sessionRepo {
	return &sessionRepo{
		rdb:    rdb,
		prefix: prefix,
		l:      logger,
	}
}

func (r *sessionRepo) key(sessionID string) string {
	return fmt.Sprintf("%s:session:%s", r.prefix, sessionID)
}

func (r *sessionRepo) Create(ctx context.Context, session *model.UserSession, ttl time.Duration) error {
	if session.Tokens.SessionID == "" {
		return errors.New("session id is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("invalid session ttl %s", ttl)
	}

	key := r.key(session.Tokens.SessionID)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			fieldDisplayName: session.User.DisplayName,
			fieldFullName:    session.User.FullName,
			fieldEmail:       session.User.Email,
			fieldPhone:       session.User.Phone,
			fieldExpiresAt:   strconv.FormatInt(session.Tokens.ExpiresAt.Unix(), 10),
		})
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, sessionID string) (*model.UserSession, error) {
	fields, err := r.rdb.HGetAll(ctx, r.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(fields) == 0 {
		return nil, model.ErrSessionNotFound
	}

	session := &model.UserSession{
		User: model.User{
			DisplayName: fields[fieldDisplayName],
			FullName:    fields[fieldFullName],
			Email:       fields[fieldEmail],
			Phone:       fields[fieldPhone],
		},
		Tokens: model.AuthTokens{SessionID: sessionID},
	}
	if v := fields[fieldExpiresAt]; v != "" {
		sec, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			r.l.Warn("Invalid session expiry", zap.String("session_id", sessionID), zap.String("value", v))
		} else {
			session.Tokens.ExpiresAt = time.Unix(sec, 0)
		}
	}
	return session, nil
}

func (r *sessionRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
