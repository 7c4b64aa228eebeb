package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const instrumentationName = "koober/server"

// 监控指标
var (
	requestCounter  metric.Int64Counter
	requestDuration metric.Float64Histogram
	errorCounter    metric.Int64Counter
)

// initMetrics 初始化监控指标
func initMetrics() error {
	meter := otel.GetMeterProvider().Meter(instrumentationName)

	var err error
	requestCounter, err = meter.Int64Counter(
		"koober.server.request.count",
		metric.WithDescription("请求总数"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create request counter: %w", err)
	}

	requestDuration, err = meter.Float64Histogram(
		"koober.server.request.duration",
		metric.WithDescription("请求耗时"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter(
		"koober.server.error.count",
		metric.WithDescription("错误总数"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create error counter: %w", err)
	}

	return nil
}

func record(ctx context.Context, start time.Time, failed bool, attrs ...attribute.KeyValue) {
	if requestCounter == nil {
		return
	}
	opt := metric.WithAttributes(attrs...)
	requestCounter.Add(ctx, 1, opt)
	requestDuration.Record(ctx, float64(time.Since(start).Milliseconds()), opt)
	if failed {
		errorCounter.Add(ctx, 1, opt)
	}
}

// MonitoringMiddleware HTTP 层链路追踪与访问日志
func MonitoringMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	if err := initMetrics(); err != nil {
		logger.Error("Failed to initialize metrics", zap.Error(err))
	}
	tracer := otel.GetTracerProvider().Tracer(instrumentationName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx, span := tracer.Start(r.Context(), fmt.Sprintf("%s %s", r.Method, r.URL.Path))
			defer span.End()

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(ctx))

			failed := ww.statusCode >= http.StatusBadRequest
			record(ctx, start, failed,
				attribute.String("http.method", r.Method),
				attribute.String("http.route", r.URL.Path),
				attribute.Int("http.status_code", ww.statusCode),
			)
			span.SetAttributes(attribute.Int("http.status_code", ww.statusCode))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.statusCode),
				zap.Duration("duration", time.Since(start)),
			}
			if failed {
				span.SetStatus(codes.Error, http.StatusText(ww.statusCode))
				logger.Warn("HTTP request error", append(fields, zap.String("user_agent", r.UserAgent()))...)
				return
			}
			span.SetStatus(codes.Ok, "OK")
			logger.Debug("HTTP request completed", fields...)
		})
	}
}

// ConnectMonitoringInterceptor 记录 RPC 指标与日志, span 由 otelconnect 负责
func ConnectMonitoringInterceptor(logger *zap.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			record(ctx, start, err != nil,
				attribute.String("rpc.system", "connect"),
				attribute.String("rpc.procedure", procedure),
				attribute.String("rpc.code", code),
			)

			fields := []zap.Field{
				zap.String("procedure", procedure),
				zap.String("peer", req.Peer().Addr),
				zap.String("code", code),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil && serverFault(connect.CodeOf(err)) {
				logger.Error("RPC request failed", append(fields, zap.Error(err))...)
			} else {
				logger.Info("RPC request completed", fields...)
			}

			return resp, err
		}
	}
}

// serverFault 客户端错误 (如凭证错误) 不按错误级别记录
func serverFault(code connect.Code) bool {
	switch code {
	case connect.CodeUnknown, connect.CodeInternal, connect.CodeUnavailable, connect.CodeDataLoss:
		return true
	default:
		return false
	}
}

// responseWriter 包装 http.ResponseWriter 来捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// Flush 流式响应需要
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// MiddlewareModule 提供 Fx 模块
var MiddlewareModule = fx.Module("server.middleware",
	fx.Provide(
		func(logger *zap.Logger) func(http.Handler) http.Handler {
			return MonitoringMiddleware(logger)
		},
		ConnectMonitoringInterceptor,
	),
)
