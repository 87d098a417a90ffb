package scheduler

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"

	"github.com/nexus-project/scheduler/pkg/delegatepb"
	"github.com/nexus-project/scheduler/pkg/schedulerpb"
)

// grpcBackendConn is the production BackendConnection: it dials the
// backend's own delegate server and tags every call with a correlation id
// for cross-process log correlation.
type grpcBackendConn struct {
	address string
	client  delegatepb.BackendDelegateClient
}

// DialBackend opens a gRPC connection to a backend's delegate server.
func DialBackend(address string, opts ...grpc.DialOption) (BackendConnection, *grpc.ClientConn, error) {
	cc, err := grpc.Dial(address, opts...)
	if err != nil {
		return nil, nil, err
	}
	return &grpcBackendConn{address: address, client: delegatepb.NewBackendDelegateClient(cc)}, cc, nil
}

func (c *grpcBackendConn) Address() string { return c.address }

func (c *grpcBackendConn) LoadModel(ctx context.Context, cfg ModelInstanceConfig) error {
	_, err := c.client.LoadModel(ctx, &delegatepb.LoadModelMessage{
		CorrelationId: uuid.NewString(),
		Config: &delegatepb.ModelInstanceConfigProto{
			SessionId:        string(cfg.Session),
			Framework:        cfg.Framework,
			ModelName:        cfg.ModelName,
			Version:          int32(cfg.Version),
			BatchSize:        int32(cfg.BatchSize),
			ReservedRps:      cfg.ReservedRPS,
			MemoryMb:         cfg.MemoryMB,
			LatencySloMillis: int32(cfg.LatencySLOMillis),
		},
	})
	return err
}

func (c *grpcBackendConn) UnloadModel(ctx context.Context, session ModelSessionID) error {
	_, err := c.client.UnloadModel(ctx, &delegatepb.UnloadModelMessage{
		CorrelationId: uuid.NewString(),
		SessionId:     string(session),
	})
	return err
}

func (c *grpcBackendConn) UpdateModelThroughput(ctx context.Context, session ModelSessionID, newRPS float64) error {
	_, err := c.client.UpdateModelThroughput(ctx, &delegatepb.UpdateModelThroughputMessage{
		CorrelationId: uuid.NewString(),
		SessionId:     string(session),
		NewRps:        newRPS,
	})
	return err
}

// grpcFrontendConn is the production FrontendConnection.
type grpcFrontendConn struct {
	address string
	client  delegatepb.FrontendDelegateClient
}

// DialFrontend opens a gRPC connection to a frontend's delegate server.
func DialFrontend(address string, opts ...grpc.DialOption) (FrontendConnection, *grpc.ClientConn, error) {
	cc, err := grpc.Dial(address, opts...)
	if err != nil {
		return nil, nil, err
	}
	return &grpcFrontendConn{address: address, client: delegatepb.NewFrontendDelegateClient(cc)}, cc, nil
}

func (c *grpcFrontendConn) Address() string { return c.address }

func (c *grpcFrontendConn) UpdateModelRoute(ctx context.Context, route ModelRoute) error {
	_, err := c.client.UpdateModelRoute(ctx, &delegatepb.UpdateModelRouteMessage{
		CorrelationId: uuid.NewString(),
		Route:         toModelRouteProto(route),
	})
	return err
}

// NewProductionDialer returns a Dialer that opens a real gRPC connection to
// the node's address, choosing the connection type from role. dialOpts are
// passed through to grpc.Dial (e.g. grpc.WithTransportCredentials).
func NewProductionDialer(dialOpts ...grpc.DialOption) Dialer {
	return func(address string, role schedulerpb.NodeRole) (BackendConnection, FrontendConnection, error) {
		switch role {
		case schedulerpb.NodeRole_BACKEND:
			conn, _, err := DialBackend(address, dialOpts...)
			return conn, nil, err
		case schedulerpb.NodeRole_FRONTEND:
			conn, _, err := DialFrontend(address, dialOpts...)
			return nil, conn, err
		default:
			return nil, nil, errUnknownRole
		}
	}
}

func toModelRouteProto(route ModelRoute) *schedulerpb.ModelRouteProto {
	out := &schedulerpb.ModelRouteProto{
		ModelSessionId: string(route.ModelSessionID),
		Backends:       make([]*schedulerpb.BackendRouteEntry, 0, len(route.Backends)),
	}
	for _, b := range route.Backends {
		out.Backends = append(out.Backends, &schedulerpb.BackendRouteEntry{
			NodeId:        uint32(b.NodeID),
			Address:       b.Address,
			ThroughputRps: b.ThroughputRPS,
		})
	}
	return out
}
