package delegatepb

import (
	"context"

	"google.golang.org/grpc"
)

// BackendDelegateClient is the scheduler's outbound call surface to a
// registered backend node. The node's own server implementation lives in
// the backend process, outside this module.
type BackendDelegateClient interface {
	LoadModel(ctx context.Context, in *LoadModelMessage, opts ...grpc.CallOption) (*Ack, error)
	UnloadModel(ctx context.Context, in *UnloadModelMessage, opts ...grpc.CallOption) (*Ack, error)
	UpdateModelThroughput(ctx context.Context, in *UpdateModelThroughputMessage, opts ...grpc.CallOption) (*Ack, error)
}

type backendDelegateClient struct {
	cc *grpc.ClientConn
}

func NewBackendDelegateClient(cc *grpc.ClientConn) BackendDelegateClient {
	return &backendDelegateClient{cc: cc}
}

func (c *backendDelegateClient) LoadModel(ctx context.Context, in *LoadModelMessage, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	err := c.cc.Invoke(ctx, "/delegatepb.BackendDelegate/LoadModel", in, out, opts...)
	return out, err
}

func (c *backendDelegateClient) UnloadModel(ctx context.Context, in *UnloadModelMessage, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	err := c.cc.Invoke(ctx, "/delegatepb.BackendDelegate/UnloadModel", in, out, opts...)
	return out, err
}

func (c *backendDelegateClient) UpdateModelThroughput(ctx context.Context, in *UpdateModelThroughputMessage, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	err := c.cc.Invoke(ctx, "/delegatepb.BackendDelegate/UpdateModelThroughput", in, out, opts...)
	return out, err
}

// FrontendDelegateClient is the scheduler's outbound call surface to a
// registered frontend node.
type FrontendDelegateClient interface {
	UpdateModelRoute(ctx context.Context, in *UpdateModelRouteMessage, opts ...grpc.CallOption) (*Ack, error)
}

type frontendDelegateClient struct {
	cc *grpc.ClientConn
}

func NewFrontendDelegateClient(cc *grpc.ClientConn) FrontendDelegateClient {
	return &frontendDelegateClient{cc: cc}
}

func (c *frontendDelegateClient) UpdateModelRoute(ctx context.Context, in *UpdateModelRouteMessage, opts ...grpc.CallOption) (*Ack, error) {
	out := new(Ack)
	err := c.cc.Invoke(ctx, "/delegatepb.FrontendDelegate/UpdateModelRoute", in, out, opts...)
	return out, err
}
