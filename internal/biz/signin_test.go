package biz

import (
	"context"
	"errors"
	"testing"

	"koober/internal/biz/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type SignInUseCaseTestSuite struct {
	suite.Suite
	remote *MockRemoteAPI
	store  *MockSessionStore
	logger *zap.Logger
}

func (suite *SignInUseCaseTestSuite) SetupTest() {
	suite.remote = new(MockRemoteAPI)
	suite.store = new(MockSessionStore)
	suite.logger = zap.NewNop()
}

func (suite *SignInUseCaseTestSuite) TestStart_Success() {
	ctx := context.Background()
	session := fakeSession()

	suite.remote.On("SignIn", ctx, "test@test.com", "password123").Return(session, nil).Once()
	suite.store.On("Store", ctx, session).Return(session, nil).Once()

	useCase := NewSignInUseCase("test@test.com", "password123", suite.remote, suite.store, suite.logger)
	result, err := useCase.Start(ctx)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), session.User.DisplayName, result.User.DisplayName)
	assert.Equal(suite.T(), session.User.FullName, result.User.FullName)
	assert.Equal(suite.T(), session.User.Email, result.User.Email)
	assert.Equal(suite.T(), session.User.Phone, result.User.Phone)
	suite.store.AssertNumberOfCalls(suite.T(), "Store", 1)
	suite.store.AssertCalled(suite.T(), "Store", ctx, session)
}

func (suite *SignInUseCaseTestSuite) TestStart_Unauthorized() {
	ctx := context.Background()
	authErr := model.NewSignInError(model.SignInErrorUnauthorized, errors.New("unauthenticated"))

	suite.remote.On("SignIn", ctx, "wrong@test.com", "wrong").Return(nil, authErr).Once()

	useCase := NewSignInUseCase("wrong@test.com", "wrong", suite.remote, suite.store, suite.logger)
	result, err := useCase.Start(ctx)

	assert.Nil(suite.T(), result)
	assert.Equal(suite.T(), model.SignInErrorUnauthorized.ErrorMessage().Message, err.Error())
	assert.ErrorIs(suite.T(), err, &model.SignInError{Kind: model.SignInErrorUnauthorized})
	suite.store.AssertNotCalled(suite.T(), "Store", mock.Anything, mock.Anything)
}

func (suite *SignInUseCaseTestSuite) TestStart_StoreFailure() {
	ctx := context.Background()
	session := fakeSession()
	storeErr := model.NewStoreSessionError(model.StoreSessionErrorUnknown, errors.New("disk full"))

	suite.remote.On("SignIn", ctx, "test@test.com", "password123").Return(session, nil).Once()
	suite.store.On("Store", ctx, session).Return(nil, storeErr).Once()

	useCase := NewSignInUseCase("test@test.com", "password123", suite.remote, suite.store, suite.logger)
	result, err := useCase.Start(ctx)

	assert.Nil(suite.T(), result)
	assert.Equal(suite.T(), model.StoreSessionErrorUnknown.ErrorMessage().Message, err.Error())
	suite.store.AssertNumberOfCalls(suite.T(), "Store", 1)

	var got *model.StoreSessionError
	require.ErrorAs(suite.T(), err, &got)
	assert.Equal(suite.T(), session, got.Session)
}

func (suite *SignInUseCaseTestSuite) TestStart_UntypedStoreFailureIsWrapped() {
	ctx := context.Background()
	session := fakeSession()
	cause := errors.New("permission denied")

	suite.remote.On("SignIn", ctx, "test@test.com", "password123").Return(session, nil)
	suite.store.On("Store", ctx, session).Return(nil, cause)

	_, err := NewSignInUseCase("test@test.com", "password123", suite.remote, suite.store, suite.logger).Start(ctx)

	var got *model.StoreSessionError
	require.ErrorAs(suite.T(), err, &got)
	assert.Equal(suite.T(), model.StoreSessionErrorUnknown, got.Kind)
	assert.Equal(suite.T(), session, got.Session)
	assert.ErrorIs(suite.T(), err, cause)
}

func (suite *SignInUseCaseTestSuite) TestStart_StoreReturnsNoSession() {
	ctx := context.Background()
	session := fakeSession()

	suite.remote.On("SignIn", ctx, "test@test.com", "password123").Return(session, nil)
	suite.store.On("Store", ctx, session).Return(nil, nil)

	var (
		result *model.UserSession
		err    error
	)
	require.NotPanics(suite.T(), func() {
		result, err = NewSignInUseCase("test@test.com", "password123", suite.remote, suite.store, suite.logger).Start(ctx)
	})

	assert.Nil(suite.T(), result)
	var got *model.StoreSessionError
	require.ErrorAs(suite.T(), err, &got)
	assert.Equal(suite.T(), model.StoreSessionErrorUnknown, got.Kind)
	assert.Equal(suite.T(), session, got.Session)
}

func (suite *SignInUseCaseTestSuite) TestStart_SharedStoreErrorIsNotModified() {
	ctx := context.Background()
	first := fakeSession()
	second := fakeSession()
	second.Tokens.SessionID = "session-2"
	shared := model.NewStoreSessionError(model.StoreSessionErrorUnknown, errors.New("disk full"))

	suite.remote.On("SignIn", ctx, "test@test.com", "password123").Return(first, nil).Once()
	suite.remote.On("SignIn", ctx, "test@test.com", "password123").Return(second, nil).Once()
	suite.store.On("Store", ctx, mock.AnythingOfType("*model.UserSession")).Return(nil, shared)

	useCase := NewSignInUseCase("test@test.com", "password123", suite.remote, suite.store, suite.logger)

	var got *model.StoreSessionError
	_, err := useCase.Start(ctx)
	require.ErrorAs(suite.T(), err, &got)
	assert.Equal(suite.T(), "session-1", got.Session.Tokens.SessionID)

	_, err = useCase.Start(ctx)
	require.ErrorAs(suite.T(), err, &got)
	assert.Equal(suite.T(), "session-2", got.Session.Tokens.SessionID)

	assert.Nil(suite.T(), shared.Session)
}

func (suite *SignInUseCaseTestSuite) TestStart_EachCallAuthenticatesAgain() {
	ctx := context.Background()
	session := fakeSession()

	suite.remote.On("SignIn", ctx, "test@test.com", "password123").Return(session, nil)
	suite.store.On("Store", ctx, session).Return(session, nil)

	useCase := NewSignInUseCase("test@test.com", "password123", suite.remote, suite.store, suite.logger)
	_, err := useCase.Start(ctx)
	require.NoError(suite.T(), err)
	_, err = useCase.Start(ctx)
	require.NoError(suite.T(), err)

	suite.remote.AssertNumberOfCalls(suite.T(), "SignIn", 2)
	suite.store.AssertNumberOfCalls(suite.T(), "Store", 2)
}

func (suite *SignInUseCaseTestSuite) TestSignUp_Success() {
	ctx := context.Background()
	session := fakeSession()
	account := model.NewAccount{
		FullName: "Test User",
		Email:    "test@test.com",
		Password: "password123",
	}

	suite.remote.On("SignUp", ctx, account).Return(session, nil).Once()
	suite.store.On("Store", ctx, session).Return(session, nil).Once()

	result, err := NewSignUpUseCase(account, suite.remote, suite.store, suite.logger).Start(ctx)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), session, result)
}

func (suite *SignInUseCaseTestSuite) TestSignUp_AccountExists() {
	ctx := context.Background()
	account := model.NewAccount{FullName: "Test User", Email: "test@test.com", Password: "password123"}
	signUpErr := model.NewSignUpError(model.SignUpErrorAccountExists, errors.New("already exists"))

	suite.remote.On("SignUp", ctx, account).Return(nil, signUpErr)

	result, err := NewSignUpUseCase(account, suite.remote, suite.store, suite.logger).Start(ctx)

	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, &model.SignUpError{Kind: model.SignUpErrorAccountExists})
	suite.store.AssertNotCalled(suite.T(), "Store", mock.Anything, mock.Anything)
}

func TestSignInUseCaseTestSuite(t *testing.T) {
	suite.Run(t, new(SignInUseCaseTestSuite))
}
