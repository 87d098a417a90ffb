package schedulerpb

import (
	"context"

	"google.golang.org/grpc"
)

// SchedulerServer is the scheduler's RPC surface, implemented by
// internal/scheduler's gRPC glue on top of RegistryCore.
type SchedulerServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterReply, error)
	Unregister(context.Context, *UnregisterRequest) (*RpcReply, error)
	LoadModel(context.Context, *LoadModelRequest) (*LoadModelReply, error)
	UpdateBackendStats(context.Context, *UpdateBackendStatsRequest) (*RpcReply, error)
	KeepAlive(context.Context, *KeepAliveRequest) (*RpcReply, error)
}

// SchedulerClient is the matching client stub, used by frontend/backend
// connections dialing the scheduler; kept here so test doubles and future
// callers share one wire contract.
type SchedulerClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterReply, error)
	Unregister(ctx context.Context, in *UnregisterRequest, opts ...grpc.CallOption) (*RpcReply, error)
	LoadModel(ctx context.Context, in *LoadModelRequest, opts ...grpc.CallOption) (*LoadModelReply, error)
	UpdateBackendStats(ctx context.Context, in *UpdateBackendStatsRequest, opts ...grpc.CallOption) (*RpcReply, error)
	KeepAlive(ctx context.Context, in *KeepAliveRequest, opts ...grpc.CallOption) (*RpcReply, error)
}

type schedulerClient struct {
	cc *grpc.ClientConn
}

func NewSchedulerClient(cc *grpc.ClientConn) SchedulerClient {
	return &schedulerClient{cc: cc}
}

func (c *schedulerClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterReply, error) {
	out := new(RegisterReply)
	err := c.cc.Invoke(ctx, "/schedulerpb.Scheduler/Register", in, out, opts...)
	return out, err
}

func (c *schedulerClient) Unregister(ctx context.Context, in *UnregisterRequest, opts ...grpc.CallOption) (*RpcReply, error) {
	out := new(RpcReply)
	err := c.cc.Invoke(ctx, "/schedulerpb.Scheduler/Unregister", in, out, opts...)
	return out, err
}

func (c *schedulerClient) LoadModel(ctx context.Context, in *LoadModelRequest, opts ...grpc.CallOption) (*LoadModelReply, error) {
	out := new(LoadModelReply)
	err := c.cc.Invoke(ctx, "/schedulerpb.Scheduler/LoadModel", in, out, opts...)
	return out, err
}

func (c *schedulerClient) UpdateBackendStats(ctx context.Context, in *UpdateBackendStatsRequest, opts ...grpc.CallOption) (*RpcReply, error) {
	out := new(RpcReply)
	err := c.cc.Invoke(ctx, "/schedulerpb.Scheduler/UpdateBackendStats", in, out, opts...)
	return out, err
}

func (c *schedulerClient) KeepAlive(ctx context.Context, in *KeepAliveRequest, opts ...grpc.CallOption) (*RpcReply, error) {
	out := new(RpcReply)
	err := c.cc.Invoke(ctx, "/schedulerpb.Scheduler/KeepAlive", in, out, opts...)
	return out, err
}

func RegisterSchedulerServer(s *grpc.Server, srv SchedulerServer) {
	s.RegisterService(&_Scheduler_serviceDesc, srv)
}

func _Scheduler_Register_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RegisterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).Register(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/schedulerpb.Scheduler/Register"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SchedulerServer).Register(ctx, req.(*RegisterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_Unregister_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UnregisterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).Unregister(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/schedulerpb.Scheduler/Unregister"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SchedulerServer).Unregister(ctx, req.(*UnregisterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_LoadModel_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(LoadModelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).LoadModel(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/schedulerpb.Scheduler/LoadModel"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SchedulerServer).LoadModel(ctx, req.(*LoadModelRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_UpdateBackendStats_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UpdateBackendStatsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).UpdateBackendStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/schedulerpb.Scheduler/UpdateBackendStats"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SchedulerServer).UpdateBackendStats(ctx, req.(*UpdateBackendStatsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Scheduler_KeepAlive_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(KeepAliveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulerServer).KeepAlive(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/schedulerpb.Scheduler/KeepAlive"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SchedulerServer).KeepAlive(ctx, req.(*KeepAliveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var _Scheduler_serviceDesc = grpc.ServiceDesc{
	ServiceName: "schedulerpb.Scheduler",
	HandlerType: (*SchedulerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: _Scheduler_Register_Handler},
		{MethodName: "Unregister", Handler: _Scheduler_Unregister_Handler},
		{MethodName: "LoadModel", Handler: _Scheduler_LoadModel_Handler},
		{MethodName: "UpdateBackendStats", Handler: _Scheduler_UpdateBackendStats_Handler},
		{MethodName: "KeepAlive", Handler: _Scheduler_KeepAlive_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scheduler.proto",
}
