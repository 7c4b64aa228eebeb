package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"

	"koober/internal/biz"
	confv1 "koober/internal/conf/v1"
	"koober/internal/data"
	"koober/internal/pkg/config"
	logger "koober/internal/pkg/log"
	"koober/internal/pkg/otel"
	"koober/internal/pkg/registry"
	"koober/internal/server"
	"koober/internal/service"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const serviceName confv1.ServiceName = "koober-server"

func main() {
	flag.Parse()

	fxApp := NewApp()

	// 启动应用
	if err := fxApp.Start(context.Background()); err != nil {
		log.Printf("Failed to start app: %v\n", err)
		os.Exit(1)
	}

	// 等待中断信号
	<-fxApp.Done()

	// 优雅关闭
	if err := fxApp.Stop(context.Background()); err != nil {
		log.Printf("Failed to stop app gracefully: %v\n", err)
		os.Exit(1)
	}
}

// NewApp 创建并配置 FX 应用
func NewApp() *fx.App {
	return fx.New(
		config.Module,
		logger.Module,
		registry.Module,

		// 按依赖顺序
		data.Module,
		biz.Module,
		service.Module,
		server.MiddlewareModule,
		server.Module,

		fx.Supply(serviceName),

		fx.Invoke(
			func(conf *confv1.Bootstrap) error {
				return config.ValidateConfig(conf)
			},

			func(_ *registry.ConsulRegistry) {},

			func(lc fx.Lifecycle, conf *confv1.Bootstrap, name confv1.ServiceName, logger *zap.Logger, srv *http.Server) error {
				otelShutdown, err := otel.SetupOTelSDK(context.Background(), conf.Trace, string(name), logger)
				if err != nil {
					return err
				}

				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
						go func() {
							if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
								logger.Fatal("Failed to start HTTP server", zap.Error(err))
							}
						}()
						return nil
					},
					OnStop: func(ctx context.Context) error {
						// 服务器本身由 server 模块关闭
						if otelShutdown != nil {
							if err := otelShutdown(ctx); err != nil {
								logger.Error("Failed to shutdown OTel", zap.Error(err))
							}
						}
						return nil
					},
				})
				return nil
			},
		),
	)
}
