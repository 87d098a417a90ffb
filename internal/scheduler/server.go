package scheduler

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/nexus-project/scheduler/pkg/schedulerpb"
)

// Dialer opens the scheduler's outbound connection to a newly registered
// node's delegate server. Exactly one of the two returned connections is
// used, depending on role.
type Dialer func(address string, role schedulerpb.NodeRole) (BackendConnection, FrontendConnection, error)

// grpcServer implements schedulerpb.SchedulerServer on top of a
// RegistryCore, translating wire requests into core calls and core errors
// into RpcStatus values. It holds no state of its own.
type grpcServer struct {
	registry *RegistryCore
	dial     Dialer
}

// NewGRPCServer wires registry behind the scheduler's gRPC service. dial
// opens outbound connections to newly registered nodes; see DialBackend and
// DialFrontend for the production implementation.
func NewGRPCServer(registry *RegistryCore, dial Dialer) schedulerpb.SchedulerServer {
	return &grpcServer{registry: registry, dial: dial}
}

func (s *grpcServer) Register(ctx context.Context, req *schedulerpb.RegisterRequest) (*schedulerpb.RegisterReply, error) {
	now := time.Now()
	cfg := s.registry.cfg

	switch req.Role {
	case schedulerpb.NodeRole_BACKEND:
		backendConn, _, err := s.dial(req.Address, req.Role)
		if err != nil {
			return nil, errors.Wrapf(err, "dial backend %s", req.Address)
		}
		id, err := s.registry.RegisterBackend(ctx, backendConn, req.GpuType, req.DeclaredCapacity, now)
		if err != nil {
			return nil, err
		}
		return &schedulerpb.RegisterReply{
			NodeId:            uint32(id),
			BeaconIntervalSec: cfg.BeaconIntervalSec,
			EpochIntervalSec:  cfg.EpochIntervalSec,
			Status:            schedulerpb.RpcStatus_OK,
		}, nil
	case schedulerpb.NodeRole_FRONTEND:
		_, frontendConn, err := s.dial(req.Address, req.Role)
		if err != nil {
			return nil, errors.Wrapf(err, "dial frontend %s", req.Address)
		}
		id := s.registry.RegisterFrontend(frontendConn, now)
		return &schedulerpb.RegisterReply{
			NodeId:            uint32(id),
			BeaconIntervalSec: cfg.BeaconIntervalSec,
			EpochIntervalSec:  cfg.EpochIntervalSec,
			Status:            schedulerpb.RpcStatus_OK,
		}, nil
	default:
		return &schedulerpb.RegisterReply{Status: schedulerpb.RpcStatus_INVALID_REQUEST}, nil
	}
}

func (s *grpcServer) Unregister(ctx context.Context, req *schedulerpb.UnregisterRequest) (*schedulerpb.RpcReply, error) {
	err := s.registry.UnregisterNode(ctx, NodeID(req.NodeId))
	if err == errUnknownNode {
		return &schedulerpb.RpcReply{Status: schedulerpb.RpcStatus_UNKNOWN_NODE}, nil
	}
	if err != nil {
		return nil, err
	}
	return &schedulerpb.RpcReply{Status: schedulerpb.RpcStatus_OK}, nil
}

func (s *grpcServer) LoadModel(ctx context.Context, req *schedulerpb.LoadModelRequest) (*schedulerpb.LoadModelReply, error) {
	sess := ModelSession{
		Framework:        req.Framework,
		ModelName:        req.ModelName,
		Version:          int(req.Version),
		LatencySLOMillis: int(req.LatencySlaMillis),
	}
	route, partial, err := s.registry.LoadModel(ctx, NodeID(req.FrontendId), sess, req.EstimatedRps)
	if err == errUnknownNode {
		return &schedulerpb.LoadModelReply{Status: schedulerpb.RpcStatus_UNKNOWN_NODE}, nil
	}
	if err != nil {
		return nil, err
	}
	status := schedulerpb.RpcStatus_OK
	if partial {
		status = schedulerpb.RpcStatus_NOT_ENOUGH_BACKENDS
	}
	return &schedulerpb.LoadModelReply{Status: status, Route: toModelRouteProto(route)}, nil
}

func (s *grpcServer) UpdateBackendStats(ctx context.Context, req *schedulerpb.UpdateBackendStatsRequest) (*schedulerpb.RpcReply, error) {
	samples := make([]RPSSample, 0, len(req.Samples))
	for _, sample := range req.Samples {
		samples = append(samples, RPSSample{
			Session:     ModelSessionID(sample.ModelSessionId),
			WindowStart: time.UnixMilli(sample.WindowStart),
			WindowEnd:   time.UnixMilli(sample.WindowEnd),
			RPS:         sample.Rps,
		})
	}
	err := s.registry.UpdateBackendStats(NodeID(req.BackendId), samples)
	if err == errUnknownNode {
		return &schedulerpb.RpcReply{Status: schedulerpb.RpcStatus_UNKNOWN_NODE}, nil
	}
	if err != nil {
		return nil, err
	}
	return &schedulerpb.RpcReply{Status: schedulerpb.RpcStatus_OK}, nil
}

func (s *grpcServer) KeepAlive(ctx context.Context, req *schedulerpb.KeepAliveRequest) (*schedulerpb.RpcReply, error) {
	err := s.registry.KeepAlive(NodeID(req.NodeId), time.Now())
	if err == errUnknownNode {
		return &schedulerpb.RpcReply{Status: schedulerpb.RpcStatus_UNKNOWN_NODE}, nil
	}
	if err != nil {
		return nil, err
	}
	return &schedulerpb.RpcReply{Status: schedulerpb.RpcStatus_OK}, nil
}
