package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	v1auth "koober/api/auth/v1"
	"koober/api/auth/v1/authv1connect"
	v1check "koober/api/check/v1"
	"koober/api/check/v1/checkv1connect"
	conf "koober/internal/conf/v1"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	_ authv1connect.AuthServiceHandler   = (*MockAuthService)(nil)
	_ checkv1connect.CheckServiceHandler = (*MockCheckService)(nil)
)

// MockAuthService 是 AuthService 的模拟实现
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignIn(ctx context.Context, req *connect.Request[v1auth.SignInRequest]) (*connect.Response[v1auth.SignInResponse], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connect.Response[v1auth.SignInResponse]), args.Error(1)
}

func (m *MockAuthService) SignUp(ctx context.Context, req *connect.Request[v1auth.SignUpRequest]) (*connect.Response[v1auth.SignUpResponse], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connect.Response[v1auth.SignUpResponse]), args.Error(1)
}

func (m *MockAuthService) SignOut(ctx context.Context, req *connect.Request[v1auth.SignOutRequest]) (*connect.Response[v1auth.SignOutResponse], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connect.Response[v1auth.SignOutResponse]), args.Error(1)
}

func (m *MockAuthService) GetSession(ctx context.Context, req *connect.Request[v1auth.GetSessionRequest]) (*connect.Response[v1auth.GetSessionResponse], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connect.Response[v1auth.GetSessionResponse]), args.Error(1)
}

// MockCheckService 是 CheckService 的模拟实现
type MockCheckService struct {
	mock.Mock
}

func (m *MockCheckService) Ready(ctx context.Context, req *connect.Request[v1check.ReadyCheckReq]) (*connect.Response[v1check.ReadyCheckReply], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connect.Response[v1check.ReadyCheckReply]), args.Error(1)
}

// testLifecycle 是用于测试的简单生命周期实现
type testLifecycle struct {
	hooks []fx.Hook
}

func (tl *testLifecycle) Append(hook fx.Hook) {
	tl.hooks = append(tl.hooks, hook)
}

func testConfig() *conf.Bootstrap {
	return &conf.Bootstrap{
		Server: &conf.Server{
			Http: &conf.HTTP{
				Addr: ":8080",
			},
		},
	}
}

// ServerTestSuite 是 Server 的测试套件
type ServerTestSuite struct {
	suite.Suite
	authService  *MockAuthService
	checkService *MockCheckService
	logger       *zap.Logger
	lc           *testLifecycle
	server       *http.Server
}

func (suite *ServerTestSuite) SetupTest() {
	suite.authService = new(MockAuthService)
	suite.checkService = new(MockCheckService)
	suite.logger = zap.NewNop()

	otel.SetTracerProvider(nooptrace.NewTracerProvider())
	otel.SetMeterProvider(noop.NewMeterProvider())

	suite.lc = &testLifecycle{}
	suite.server = NewHTTPServer(
		suite.lc,
		testConfig(),
		suite.authService,
		suite.checkService,
		suite.logger,
		MonitoringMiddleware(suite.logger),
		ConnectMonitoringInterceptor(suite.logger),
	)
}

func (suite *ServerTestSuite) TestServerLifecycle() {
	assert.Equal(suite.T(), ":8080", suite.server.Addr)
	assert.NotNil(suite.T(), suite.server.Handler)
	// 未启动的服务器也可以安全关闭
	require.Len(suite.T(), suite.lc.hooks, 1)
	assert.NoError(suite.T(), suite.lc.hooks[0].OnStop(context.Background()))
}

func (suite *ServerTestSuite) TestSignInThroughHandlerChain() {
	ts := httptest.NewServer(suite.server.Handler)
	defer ts.Close()

	suite.authService.On("SignIn", mock.Anything, mock.MatchedBy(func(req *connect.Request[v1auth.SignInRequest]) bool {
		return req.Msg.Username == "test@test.com" && req.Msg.Password == "password123"
	})).Return(connect.NewResponse(&v1auth.SignInResponse{
		Session: &v1auth.Session{
			User:        &v1auth.User{Email: "test@test.com", DisplayName: "Tester"},
			SessionId:   "sid-1",
			AccessToken: "token-1",
		},
	}), nil)

	client := authv1connect.NewAuthServiceClient(ts.Client(), ts.URL)
	resp, err := client.SignIn(context.Background(), connect.NewRequest(&v1auth.SignInRequest{
		Username: "test@test.com",
		Password: "password123",
	}))

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "sid-1", resp.Msg.Session.SessionId)
	assert.Equal(suite.T(), "Tester", resp.Msg.Session.User.DisplayName)
}

func (suite *ServerTestSuite) TestErrorCodePropagates() {
	ts := httptest.NewServer(suite.server.Handler)
	defer ts.Close()

	suite.authService.On("SignIn", mock.Anything, mock.Anything).
		Return(nil, connect.NewError(connect.CodeUnauthenticated, errors.New("invalid username or password")))

	client := authv1connect.NewAuthServiceClient(ts.Client(), ts.URL)
	_, err := client.SignIn(context.Background(), connect.NewRequest(&v1auth.SignInRequest{
		Username: "wrong@test.com",
		Password: "wrong",
	}))

	assert.Equal(suite.T(), connect.CodeUnauthenticated, connect.CodeOf(err))
}

func (suite *ServerTestSuite) TestReadyThroughHandlerChain() {
	ts := httptest.NewServer(suite.server.Handler)
	defer ts.Close()

	suite.checkService.On("Ready", mock.Anything, mock.Anything).
		Return(connect.NewResponse(&v1check.ReadyCheckReply{Status: "Ready"}), nil)

	client := checkv1connect.NewCheckServiceClient(ts.Client(), ts.URL)
	resp, err := client.Ready(context.Background(), connect.NewRequest(&v1check.ReadyCheckReq{}))

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Ready", resp.Msg.Status)
}

func (suite *ServerTestSuite) TestUnknownPath() {
	ts := httptest.NewServer(suite.server.Handler)
	defer ts.Close()

	resp, err := ts.Client().Post(ts.URL+"/koober.auth.v1.AuthService/Missing", "application/json", nil)
	require.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)
}

func (suite *ServerTestSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, authv1connect.AuthServiceSignInProcedure, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	recorder := httptest.NewRecorder()

	suite.server.Handler.ServeHTTP(recorder, req)

	assert.Equal(suite.T(), "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func (suite *ServerTestSuite) TestMiddlewareModule() {
	app := fx.New(
		MiddlewareModule,
		fx.Provide(zap.NewNop),
		fx.Invoke(func(monitoringMiddleware func(http.Handler) http.Handler, connectInterceptor connect.UnaryInterceptorFunc) {
			assert.NotNil(suite.T(), monitoringMiddleware)
			assert.NotNil(suite.T(), connectInterceptor)
		}),
	)

	assert.NoError(suite.T(), app.Err())
}

func (suite *ServerTestSuite) TestInitMetrics() {
	reader := metric.NewManualReader()
	otel.SetMeterProvider(metric.NewMeterProvider(metric.WithReader(reader)))

	err := initMetrics()

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), requestCounter)
	assert.NotNil(suite.T(), requestDuration)
	assert.NotNil(suite.T(), errorCounter)
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func TestMonitoringMiddleware(t *testing.T) {
	logger := zap.NewNop()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	recorder := httptest.NewRecorder()
	MonitoringMiddleware(logger)(handler).ServeHTTP(recorder, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "OK", recorder.Body.String())

	errorHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Error"))
	})
	recorder = httptest.NewRecorder()
	MonitoringMiddleware(logger)(errorHandler).ServeHTTP(recorder, httptest.NewRequest("GET", "/error", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, "Error", recorder.Body.String())
}

func TestConnectMonitoringInterceptor(t *testing.T) {
	interceptor := ConnectMonitoringInterceptor(zap.NewNop())
	req := connect.NewRequest(&v1check.ReadyCheckReq{})

	ok := interceptor(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&v1check.ReadyCheckReply{Status: "Ready"}), nil
	})
	resp, err := ok(context.Background(), req)
	assert.NoError(t, err)
	assert.NotNil(t, resp)

	failing := interceptor(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeInternal, errors.New("internal error"))
	})
	resp, err = failing(context.Background(), req)
	assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
	assert.Nil(t, resp)
}

func TestServerFault(t *testing.T) {
	assert.True(t, serverFault(connect.CodeInternal))
	assert.True(t, serverFault(connect.CodeUnavailable))
	assert.False(t, serverFault(connect.CodeUnauthenticated))
	assert.False(t, serverFault(connect.CodeAlreadyExists))
}

func TestResponseWriter(t *testing.T) {
	recorder := httptest.NewRecorder()
	wrapped := &responseWriter{ResponseWriter: recorder, statusCode: http.StatusOK}

	wrapped.WriteHeader(http.StatusNotFound)
	wrapped.WriteHeader(http.StatusOK)
	assert.Equal(t, http.StatusNotFound, wrapped.statusCode)

	n, err := wrapped.Write([]byte("test"))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "test", recorder.Body.String())

	wrapped.Flush()
	assert.True(t, recorder.Flushed)
}
