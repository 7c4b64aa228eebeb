package data

import (
	"context"

	"koober/internal/biz/model"

	"connectrpc.com/connect"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// dbPinger 由 *pgxpool.Pool 实现
type dbPinger interface {
	Ping(ctx context.Context) error
}

type checkRepo struct {
	pool dbPinger
	rdb  redis.Cmdable
	l    *zap.Logger
}

type CheckRepo interface {
	Ready(context.Context, model.HealthCheckReq) (model.HealthCheckReply, error)
}

func NewCheckRepo(data *Data, l *zap.Logger) CheckRepo {
	return &checkRepo{
		pool: data.db,
		rdb:  data.rdb,
		l:    l,
	}
}

func (c checkRepo) Ready(ctx context.Context, _ model.HealthCheckReq) (model.HealthCheckReply, error) {
	if err := c.pool.Ping(ctx); err != nil {
		c.l.Warn("Database not ready", zap.Error(err))
		return model.HealthCheckReply{
			Status: model.StatusUnhealthy,
			Details: map[string]string{
				"Components": "PostgreSQL",
				"Message":    err.Error(),
			},
		}, connect.NewError(connect.CodeUnavailable, err)
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		c.l.Warn("Redis not ready", zap.Error(err))
		return model.HealthCheckReply{
			Status: model.StatusUnhealthy,
			Details: map[string]string{
				"Components": "Redis",
				"Message":    err.Error(),
			},
		}, connect.NewError(connect.CodeUnavailable, err)
	}
	return model.HealthCheckReply{
		Status:  model.StatusReady,
		Details: nil,
	}, nil
}
