// Package delegatepb holds the wire messages for the scheduler's outbound
// calls to backend and frontend nodes, hand-written in the same
// reflection-based gogo/protobuf shape as pkg/schedulerpb.
package delegatepb

import (
	"github.com/gogo/protobuf/proto"

	"github.com/nexus-project/scheduler/pkg/schedulerpb"
)

type ModelInstanceConfigProto struct {
	SessionId        string  `protobuf:"bytes,1,opt,name=session_id,json=sessionId,proto3" json:"session_id,omitempty"`
	Framework        string  `protobuf:"bytes,2,opt,name=framework,proto3" json:"framework,omitempty"`
	ModelName        string  `protobuf:"bytes,3,opt,name=model_name,json=modelName,proto3" json:"model_name,omitempty"`
	Version          int32   `protobuf:"varint,4,opt,name=version,proto3" json:"version,omitempty"`
	BatchSize        int32   `protobuf:"varint,5,opt,name=batch_size,json=batchSize,proto3" json:"batch_size,omitempty"`
	ReservedRps      float64 `protobuf:"fixed64,6,opt,name=reserved_rps,json=reservedRps,proto3" json:"reserved_rps,omitempty"`
	MemoryMb         uint64  `protobuf:"varint,7,opt,name=memory_mb,json=memoryMb,proto3" json:"memory_mb,omitempty"`
	LatencySloMillis int32   `protobuf:"varint,8,opt,name=latency_slo_millis,json=latencySloMillis,proto3" json:"latency_slo_millis,omitempty"`
}

func (m *ModelInstanceConfigProto) Reset()         { *m = ModelInstanceConfigProto{} }
func (m *ModelInstanceConfigProto) String() string { return proto.CompactTextString(m) }
func (*ModelInstanceConfigProto) ProtoMessage()    {}

type LoadModelMessage struct {
	CorrelationId string                     `protobuf:"bytes,1,opt,name=correlation_id,json=correlationId,proto3" json:"correlation_id,omitempty"`
	Config        *ModelInstanceConfigProto  `protobuf:"bytes,2,opt,name=config,proto3" json:"config,omitempty"`
}

func (m *LoadModelMessage) Reset()         { *m = LoadModelMessage{} }
func (m *LoadModelMessage) String() string { return proto.CompactTextString(m) }
func (*LoadModelMessage) ProtoMessage()    {}

type UnloadModelMessage struct {
	CorrelationId string `protobuf:"bytes,1,opt,name=correlation_id,json=correlationId,proto3" json:"correlation_id,omitempty"`
	SessionId     string `protobuf:"bytes,2,opt,name=session_id,json=sessionId,proto3" json:"session_id,omitempty"`
}

func (m *UnloadModelMessage) Reset()         { *m = UnloadModelMessage{} }
func (m *UnloadModelMessage) String() string { return proto.CompactTextString(m) }
func (*UnloadModelMessage) ProtoMessage()    {}

type UpdateModelThroughputMessage struct {
	CorrelationId string  `protobuf:"bytes,1,opt,name=correlation_id,json=correlationId,proto3" json:"correlation_id,omitempty"`
	SessionId     string  `protobuf:"bytes,2,opt,name=session_id,json=sessionId,proto3" json:"session_id,omitempty"`
	NewRps        float64 `protobuf:"fixed64,3,opt,name=new_rps,json=newRps,proto3" json:"new_rps,omitempty"`
}

func (m *UpdateModelThroughputMessage) Reset()         { *m = UpdateModelThroughputMessage{} }
func (m *UpdateModelThroughputMessage) String() string { return proto.CompactTextString(m) }
func (*UpdateModelThroughputMessage) ProtoMessage()    {}

type UpdateModelRouteMessage struct {
	CorrelationId string                        `protobuf:"bytes,1,opt,name=correlation_id,json=correlationId,proto3" json:"correlation_id,omitempty"`
	Route         *schedulerpb.ModelRouteProto `protobuf:"bytes,2,opt,name=route,proto3" json:"route,omitempty"`
}

func (m *UpdateModelRouteMessage) Reset()         { *m = UpdateModelRouteMessage{} }
func (m *UpdateModelRouteMessage) String() string { return proto.CompactTextString(m) }
func (*UpdateModelRouteMessage) ProtoMessage()    {}

type Ack struct{}

func (m *Ack) Reset()         { *m = Ack{} }
func (m *Ack) String() string { return proto.CompactTextString(m) }
func (*Ack) ProtoMessage()    {}
