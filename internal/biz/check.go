package biz

import (
	"context"
	"time"

	"koober/internal/biz/model"
	"koober/internal/data"

	"go.uber.org/zap"
)

// readyTimeout 单次就绪检查的上限, 避免探针被慢依赖拖住
const readyTimeout = 3 * time.Second

type CheckUseCase struct {
	repo data.CheckRepo
	l    *zap.Logger
}

func NewCheckUseCase(repo data.CheckRepo, logger *zap.Logger) (model.CheckUseCase, error) {
	return &CheckUseCase{
		repo: repo,
		l:    logger,
	}, nil
}

// Ready 失败时仍返回依赖的状态详情
func (c *CheckUseCase) Ready(ctx context.Context, req model.HealthCheckReq) (model.HealthCheckReply, error) {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	reply, err := c.repo.Ready(ctx, req)
	if err != nil {
		c.l.Warn("Readiness check failed",
			zap.String("status", reply.Status),
			zap.Any("details", reply.Details),
			zap.Error(err),
		)
		return reply, err
	}
	return model.HealthCheckReply{
		Status:  reply.Status,
		Details: reply.Details,
	}, nil
}
