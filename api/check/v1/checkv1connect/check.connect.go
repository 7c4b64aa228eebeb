package checkv1connect

import (
	"context"
	"net/http"
	"strings"

	v1 "koober/api/check/v1"
	"koober/internal/pkg/codec"

	"connectrpc.com/connect"
)

const CheckServiceName = "koober.check.v1.CheckService"

const CheckServiceReadyProcedure = "/koober.check.v1.CheckService/Ready"

type CheckServiceClient interface {
	Ready(context.Context, *connect.Request[v1.ReadyCheckReq]) (*connect.Response[v1.ReadyCheckReply], error)
}

func NewCheckServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) CheckServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(codec.JSON{})}, opts...)
	return &checkServiceClient{
		ready: connect.NewClient[v1.ReadyCheckReq, v1.ReadyCheckReply](
			httpClient, baseURL+CheckServiceReadyProcedure, opts...,
		),
	}
}

type checkServiceClient struct {
	ready *connect.Client[v1.ReadyCheckReq, v1.ReadyCheckReply]
}

func (c *checkServiceClient) Ready(ctx context.Context, req *connect.Request[v1.ReadyCheckReq]) (*connect.Response[v1.ReadyCheckReply], error) {
	return c.ready.CallUnary(ctx, req)
}

type CheckServiceHandler interface {
	Ready(context.Context, *connect.Request[v1.ReadyCheckReq]) (*connect.Response[v1.ReadyCheckReply], error)
}

func NewCheckServiceHandler(svc CheckServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(codec.JSON{})}, opts...)
	readyHandler := connect.NewUnaryHandler(CheckServiceReadyProcedure, svc.Ready, opts...)
	return "/" + CheckServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CheckServiceReadyProcedure:
			readyHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
