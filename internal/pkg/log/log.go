// Package log 提供 zap 日志的 Fx 模块
package log

import (
	"context"
	"fmt"

	conf "koober/internal/conf/v1"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Module 提供 *zap.Logger, 应用停止时刷新缓冲
var Module = fx.Module("log",
	fx.Provide(NewLogger),
)

// NewLogger 按配置创建 logger, 未配置时使用生产环境 info 级别
func NewLogger(lc fx.Lifecycle, cfg *conf.Bootstrap, serviceName conf.ServiceName) (*zap.Logger, error) {
	logCfg := &conf.Log{}
	if cfg != nil && cfg.Log != nil {
		logCfg = cfg.Log
	}

	logger, err := New(logCfg)
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("service", string(serviceName)))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// 输出到终端时 Sync 可能返回 EINVAL, 忽略
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}

// New 创建 logger, 客户端命令行也直接使用
func New(cfg *conf.Log) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
