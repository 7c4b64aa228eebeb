// Package authv1connect 是 koober.auth.v1.AuthService 的 Connect 客户端与处理器,
// 结构与 protoc-gen-connect-go 的输出保持一致, 编解码使用 JSON
package authv1connect

import (
	"context"
	"net/http"
	"strings"

	v1 "koober/api/auth/v1"
	"koober/internal/pkg/codec"

	"connectrpc.com/connect"
)

const AuthServiceName = "koober.auth.v1.AuthService"

const (
	AuthServiceSignInProcedure     = "/koober.auth.v1.AuthService/SignIn"
	AuthServiceSignUpProcedure     = "/koober.auth.v1.AuthService/SignUp"
	AuthServiceSignOutProcedure    = "/koober.auth.v1.AuthService/SignOut"
	AuthServiceGetSessionProcedure = "/koober.auth.v1.AuthService/GetSession"
)

type AuthServiceClient interface {
	SignIn(context.Context, *connect.Request[v1.SignInRequest]) (*connect.Response[v1.SignInResponse], error)
	SignUp(context.Context, *connect.Request[v1.SignUpRequest]) (*connect.Response[v1.SignUpResponse], error)
	SignOut(context.Context, *connect.Request[v1.SignOutRequest]) (*connect.Response[v1.SignOutResponse], error)
	GetSession(context.Context, *connect.Request[v1.GetSessionRequest]) (*connect.Response[v1.GetSessionResponse], error)
}

func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(codec.JSON{})}, opts...)
	return &authServiceClient{
		signIn: connect.NewClient[v1.SignInRequest, v1.SignInResponse](
			httpClient, baseURL+AuthServiceSignInProcedure, opts...,
		),
		signUp: connect.NewClient[v1.SignUpRequest, v1.SignUpResponse](
			httpClient, baseURL+AuthServiceSignUpProcedure, opts...,
		),
		signOut: connect.NewClient[v1.SignOutRequest, v1.SignOutResponse](
			httpClient, baseURL+AuthServiceSignOutProcedure, opts...,
		),
		getSession: connect.NewClient[v1.GetSessionRequest, v1.GetSessionResponse](
			httpClient, baseURL+AuthServiceGetSessionProcedure, opts...,
		),
	}
}

type authServiceClient struct {
	signIn     *connect.Client[v1.SignInRequest, v1.SignInResponse]
	signUp     *connect.Client[v1.SignUpRequest, v1.SignUpResponse]
	signOut    *connect.Client[v1.SignOutRequest, v1.SignOutResponse]
	getSession *connect.Client[v1.GetSessionRequest, v1.GetSessionResponse]
}

func (c *authServiceClient) SignIn(ctx context.Context, req *connect.Request[v1.SignInRequest]) (*connect.Response[v1.SignInResponse], error) {
	return c.signIn.CallUnary(ctx, req)
}

func (c *authServiceClient) SignUp(ctx context.Context, req *connect.Request[v1.SignUpRequest]) (*connect.Response[v1.SignUpResponse], error) {
	return c.signUp.CallUnary(ctx, req)
}

func (c *authServiceClient) SignOut(ctx context.Context, req *connect.Request[v1.SignOutRequest]) (*connect.Response[v1.SignOutResponse], error) {
	return c.signOut.CallUnary(ctx, req)
}

func (c *authServiceClient) GetSession(ctx context.Context, req *connect.Request[v1.GetSessionRequest]) (*connect.Response[v1.GetSessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

type AuthServiceHandler interface {
	SignIn(context.Context, *connect.Request[v1.SignInRequest]) (*connect.Response[v1.SignInResponse], error)
	SignUp(context.Context, *connect.Request[v1.SignUpRequest]) (*connect.Response[v1.SignUpResponse], error)
	SignOut(context.Context, *connect.Request[v1.SignOutRequest]) (*connect.Response[v1.SignOutResponse], error)
	GetSession(context.Context, *connect.Request[v1.GetSessionRequest]) (*connect.Response[v1.GetSessionResponse], error)
}

func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(codec.JSON{})}, opts...)
	signInHandler := connect.NewUnaryHandler(AuthServiceSignInProcedure, svc.SignIn, opts...)
	signUpHandler := connect.NewUnaryHandler(AuthServiceSignUpProcedure, svc.SignUp, opts...)
	signOutHandler := connect.NewUnaryHandler(AuthServiceSignOutProcedure, svc.SignOut, opts...)
	getSessionHandler := connect.NewUnaryHandler(AuthServiceGetSessionProcedure, svc.GetSession, opts...)
	return "/" + AuthServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AuthServiceSignInProcedure:
			signInHandler.ServeHTTP(w, r)
		case AuthServiceSignUpProcedure:
			signUpHandler.ServeHTTP(w, r)
		case AuthServiceSignOutProcedure:
			signOutHandler.ServeHTTP(w, r)
		case AuthServiceGetSessionProcedure:
			getSessionHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
