package service

import (
	"context"
	"errors"

	v1 "koober/api/check/v1"
	"koober/api/check/v1/checkv1connect"
	"koober/internal/biz/model"

	"connectrpc.com/connect"
)

var _ checkv1connect.CheckServiceHandler = (*CheckService)(nil)

type CheckService struct {
	uc model.CheckUseCase
}

func NewCheckService(uc model.CheckUseCase) checkv1connect.CheckServiceHandler {
	return &CheckService{
		uc: uc,
	}
}

// Ready 依赖不可用时返回 Unavailable, 失败的组件写入错误元数据
func (c *CheckService) Ready(ctx context.Context, _ *connect.Request[v1.ReadyCheckReq]) (*connect.Response[v1.ReadyCheckReply], error) {
	ready, err := c.uc.Ready(ctx, model.HealthCheckReq{})
	if err != nil {
		var connectErr *connect.Error
		if !errors.As(err, &connectErr) {
			connectErr = connect.NewError(connect.CodeUnavailable, err)
		}
		if component := ready.Details["Components"]; component != "" {
			connectErr.Meta().Set("X-Unhealthy-Component", component)
		}
		return nil, connectErr
	}
	return connect.NewResponse(&v1.ReadyCheckReply{
		Status:  ready.Status,
		Details: ready.Details,
	}), nil
}
