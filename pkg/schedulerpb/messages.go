// Package schedulerpb holds the wire messages for the scheduler's RPC
// surface, hand-written instead of protoc-generated so the service can be
// exposed over gRPC without requiring a protoc toolchain. They follow the
// same reflection-based gogo/protobuf message shape generated stubs use.
package schedulerpb

import (
	"fmt"

	"github.com/gogo/protobuf/proto"
)

// RpcStatus enumerates the outcomes an RPC handler can report back to a
// caller beyond a plain transport-level error.
type RpcStatus int32

const (
	RpcStatus_OK                       RpcStatus = 0
	RpcStatus_UNKNOWN_NODE             RpcStatus = 1
	RpcStatus_MODEL_SESSION_NOT_LOADED RpcStatus = 2
	RpcStatus_NOT_ENOUGH_BACKENDS      RpcStatus = 3
	RpcStatus_INVALID_REQUEST          RpcStatus = 4
)

func (s RpcStatus) String() string {
	switch s {
	case RpcStatus_OK:
		return "OK"
	case RpcStatus_UNKNOWN_NODE:
		return "UNKNOWN_NODE"
	case RpcStatus_MODEL_SESSION_NOT_LOADED:
		return "MODEL_SESSION_NOT_LOADED"
	case RpcStatus_NOT_ENOUGH_BACKENDS:
		return "NOT_ENOUGH_BACKENDS"
	case RpcStatus_INVALID_REQUEST:
		return "INVALID_REQUEST"
	default:
		return fmt.Sprintf("RpcStatus(%d)", int32(s))
	}
}

// NodeRole distinguishes frontends from backends at Register time.
type NodeRole int32

const (
	NodeRole_FRONTEND NodeRole = 0
	NodeRole_BACKEND  NodeRole = 1
)

type RegisterRequest struct {
	Role             NodeRole `protobuf:"varint,1,opt,name=role,proto3" json:"role,omitempty"`
	Address          string   `protobuf:"bytes,2,opt,name=address,proto3" json:"address,omitempty"`
	GpuType          string   `protobuf:"bytes,3,opt,name=gpu_type,json=gpuType,proto3" json:"gpu_type,omitempty"`
	DeclaredCapacity float64  `protobuf:"fixed64,4,opt,name=declared_capacity,json=declaredCapacity,proto3" json:"declared_capacity,omitempty"`
}

func (m *RegisterRequest) Reset()         { *m = RegisterRequest{} }
func (m *RegisterRequest) String() string { return proto.CompactTextString(m) }
func (*RegisterRequest) ProtoMessage()    {}

type RegisterReply struct {
	NodeId            uint32    `protobuf:"varint,1,opt,name=node_id,json=nodeId,proto3" json:"node_id,omitempty"`
	BeaconIntervalSec uint32    `protobuf:"varint,2,opt,name=beacon_interval_sec,json=beaconIntervalSec,proto3" json:"beacon_interval_sec,omitempty"`
	EpochIntervalSec  uint32    `protobuf:"varint,3,opt,name=epoch_interval_sec,json=epochIntervalSec,proto3" json:"epoch_interval_sec,omitempty"`
	Status            RpcStatus `protobuf:"varint,4,opt,name=status,proto3,enum=schedulerpb.RpcStatus" json:"status,omitempty"`
}

func (m *RegisterReply) Reset()         { *m = RegisterReply{} }
func (m *RegisterReply) String() string { return proto.CompactTextString(m) }
func (*RegisterReply) ProtoMessage()    {}

type UnregisterRequest struct {
	NodeId uint32 `protobuf:"varint,1,opt,name=node_id,json=nodeId,proto3" json:"node_id,omitempty"`
}

func (m *UnregisterRequest) Reset()         { *m = UnregisterRequest{} }
func (m *UnregisterRequest) String() string { return proto.CompactTextString(m) }
func (*UnregisterRequest) ProtoMessage()    {}

type RpcReply struct {
	Status RpcStatus `protobuf:"varint,1,opt,name=status,proto3,enum=schedulerpb.RpcStatus" json:"status,omitempty"`
}

func (m *RpcReply) Reset()         { *m = RpcReply{} }
func (m *RpcReply) String() string { return proto.CompactTextString(m) }
func (*RpcReply) ProtoMessage()    {}

type LoadModelRequest struct {
	FrontendId       uint32  `protobuf:"varint,1,opt,name=frontend_id,json=frontendId,proto3" json:"frontend_id,omitempty"`
	Framework        string  `protobuf:"bytes,2,opt,name=framework,proto3" json:"framework,omitempty"`
	ModelName        string  `protobuf:"bytes,3,opt,name=model_name,json=modelName,proto3" json:"model_name,omitempty"`
	Version          int32   `protobuf:"varint,4,opt,name=version,proto3" json:"version,omitempty"`
	LatencySlaMillis int32   `protobuf:"varint,5,opt,name=latency_sla_millis,json=latencySlaMillis,proto3" json:"latency_sla_millis,omitempty"`
	EstimatedRps     float64 `protobuf:"fixed64,6,opt,name=estimated_rps,json=estimatedRps,proto3" json:"estimated_rps,omitempty"`
}

func (m *LoadModelRequest) Reset()         { *m = LoadModelRequest{} }
func (m *LoadModelRequest) String() string { return proto.CompactTextString(m) }
func (*LoadModelRequest) ProtoMessage()    {}

type BackendRouteEntry struct {
	NodeId        uint32  `protobuf:"varint,1,opt,name=node_id,json=nodeId,proto3" json:"node_id,omitempty"`
	Address       string  `protobuf:"bytes,2,opt,name=address,proto3" json:"address,omitempty"`
	ThroughputRps float64 `protobuf:"fixed64,3,opt,name=throughput_rps,json=throughputRps,proto3" json:"throughput_rps,omitempty"`
}

func (m *BackendRouteEntry) Reset()         { *m = BackendRouteEntry{} }
func (m *BackendRouteEntry) String() string { return proto.CompactTextString(m) }
func (*BackendRouteEntry) ProtoMessage()    {}

type ModelRouteProto struct {
	ModelSessionId string               `protobuf:"bytes,1,opt,name=model_session_id,json=modelSessionId,proto3" json:"model_session_id,omitempty"`
	Backends       []*BackendRouteEntry `protobuf:"bytes,2,rep,name=backends,proto3" json:"backends,omitempty"`
}

func (m *ModelRouteProto) Reset()         { *m = ModelRouteProto{} }
func (m *ModelRouteProto) String() string { return proto.CompactTextString(m) }
func (*ModelRouteProto) ProtoMessage()    {}

type LoadModelReply struct {
	Status RpcStatus        `protobuf:"varint,1,opt,name=status,proto3,enum=schedulerpb.RpcStatus" json:"status,omitempty"`
	Route  *ModelRouteProto `protobuf:"bytes,2,opt,name=route,proto3" json:"route,omitempty"`
}

func (m *LoadModelReply) Reset()         { *m = LoadModelReply{} }
func (m *LoadModelReply) String() string { return proto.CompactTextString(m) }
func (*LoadModelReply) ProtoMessage()    {}

type RpsSample struct {
	ModelSessionId string  `protobuf:"bytes,1,opt,name=model_session_id,json=modelSessionId,proto3" json:"model_session_id,omitempty"`
	WindowStart    int64   `protobuf:"varint,2,opt,name=window_start,json=windowStart,proto3" json:"window_start,omitempty"`
	WindowEnd      int64   `protobuf:"varint,3,opt,name=window_end,json=windowEnd,proto3" json:"window_end,omitempty"`
	Rps            float64 `protobuf:"fixed64,4,opt,name=rps,proto3" json:"rps,omitempty"`
}

func (m *RpsSample) Reset()         { *m = RpsSample{} }
func (m *RpsSample) String() string { return proto.CompactTextString(m) }
func (*RpsSample) ProtoMessage()    {}

type UpdateBackendStatsRequest struct {
	BackendId uint32       `protobuf:"varint,1,opt,name=backend_id,json=backendId,proto3" json:"backend_id,omitempty"`
	Samples   []*RpsSample `protobuf:"bytes,2,rep,name=samples,proto3" json:"samples,omitempty"`
}

func (m *UpdateBackendStatsRequest) Reset()         { *m = UpdateBackendStatsRequest{} }
func (m *UpdateBackendStatsRequest) String() string { return proto.CompactTextString(m) }
func (*UpdateBackendStatsRequest) ProtoMessage()    {}

type KeepAliveRequest struct {
	NodeId uint32 `protobuf:"varint,1,opt,name=node_id,json=nodeId,proto3" json:"node_id,omitempty"`
}

func (m *KeepAliveRequest) Reset()         { *m = KeepAliveRequest{} }
func (m *KeepAliveRequest) String() string { return proto.CompactTextString(m) }
func (*KeepAliveRequest) ProtoMessage()    {}
