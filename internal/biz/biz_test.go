package biz

import (
	"context"
	"time"

	"koober/internal/biz/model"

	"github.com/stretchr/testify/mock"
)

// MockUserRepo 是 UserRepo 的模拟实现
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockUserRepo) CreateUser(ctx context.Context, user model.User, passwordHash string) (*model.Account, error) {
	args := m.Called(ctx, user, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

// MockSessionRepo 是 SessionRepo 的模拟实现
type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) Create(ctx context.Context, session *model.UserSession, ttl time.Duration) error {
	args := m.Called(ctx, session, ttl)
	return args.Error(0)
}

func (m *MockSessionRepo) Get(ctx context.Context, sessionID string) (*model.UserSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserSession), args.Error(1)
}

func (m *MockSessionRepo) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// MockCheckRepo 是 CheckRepo 的模拟实现
type MockCheckRepo struct {
	mock.Mock
}

func (m *MockCheckRepo) Ready(ctx context.Context, req model.HealthCheckReq) (model.HealthCheckReply, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.HealthCheckReply), args.Error(1)
}

// MockRemoteAPI 是 UserAuthenticationRemoteAPI 的模拟实现
type MockRemoteAPI struct {
	mock.Mock
}

func (m *MockRemoteAPI) SignIn(ctx context.Context, username, password string) (*model.UserSession, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserSession), args.Error(1)
}

func (m *MockRemoteAPI) SignUp(ctx context.Context, account model.NewAccount) (*model.UserSession, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserSession), args.Error(1)
}

func (m *MockRemoteAPI) SignOut(ctx context.Context, session *model.UserSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// MockSessionStore 是 UserSessionStore 的模拟实现
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) GetStoredAuthenticatedSession(ctx context.Context) (*model.UserSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserSession), args.Error(1)
}

func (m *MockSessionStore) Store(ctx context.Context, session *model.UserSession) (*model.UserSession, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserSession), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, session *model.UserSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func fakeSession() *model.UserSession {
	return &model.UserSession{
		User: model.User{
			DisplayName: "Tester",
			FullName:    "Test User",
			Email:       "test@test.com",
			Phone:       "+1 555 0100",
		},
		Tokens: model.AuthTokens{
			SessionID:   "session-1",
			AccessToken: "token-1",
			ExpiresAt:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}
