package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(staticWorkloads []SlotGroup) *RegistryCore {
	return NewRegistryCore(DefaultConfig(), staticWorkloads, nil, nil)
}

func mustRegisterBackend(t *testing.T, r *RegistryCore, conn BackendConnection, gpuType string, capacity float64) NodeID {
	t.Helper()
	id, err := r.RegisterBackend(context.Background(), conn, gpuType, capacity, time.Now())
	require.NoError(t, err)
	return id
}

func TestRegisterBackendAndFrontendAssignIncreasingIDs(t *testing.T) {
	r := newTestRegistry(nil)
	b1 := mustRegisterBackend(t, r, newFakeBackendConn("b1:9000"), "a100", 100)
	f1 := r.RegisterFrontend(newFakeFrontendConn("f1:9000"), time.Now())
	b2 := mustRegisterBackend(t, r, newFakeBackendConn("b2:9000"), "a100", 100)

	assert.Less(t, b1, f1)
	assert.Less(t, b1, b2)
	assert.Less(t, f1, b2)
}

func TestLoadModelUnknownFrontendReturnsError(t *testing.T) {
	r := newTestRegistry(nil)
	sess := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: 100}
	_, _, err := r.LoadModel(context.Background(), NodeID(999), sess, 10)
	assert.Equal(t, errUnknownNode, err)
}

func TestLoadModelAllocatesCapacityAndPushesRoute(t *testing.T) {
	r := newTestRegistry(nil)
	backendConn := newFakeBackendConn("backend:9000")
	mustRegisterBackend(t, r, backendConn, "a100", 100)

	frontendConn := newFakeFrontendConn("frontend:9000")
	frontendID := r.RegisterFrontend(frontendConn, time.Now())

	sess := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: 100}
	route, pending, err := r.LoadModel(context.Background(), frontendID, sess, 10)
	require.NoError(t, err)
	assert.False(t, pending)
	require.Len(t, route.Backends, 1)
	assert.Equal(t, 10.0, route.Backends[0].ThroughputRPS)

	require.Len(t, backendConn.loads, 1)
	assert.Equal(t, sess.ID(), backendConn.loads[0].Session)

	pushed, ok := frontendConn.lastRoute()
	require.True(t, ok)
	assert.Equal(t, route, pushed)
}

func TestLoadModelWithNoCapacityStaysPending(t *testing.T) {
	r := newTestRegistry(nil)
	frontendConn := newFakeFrontendConn("frontend:9000")
	frontendID := r.RegisterFrontend(frontendConn, time.Now())

	sess := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: 100}
	route, pending, err := r.LoadModel(context.Background(), frontendID, sess, 10)
	require.NoError(t, err)
	assert.True(t, pending)
	assert.Empty(t, route.Backends)
	assert.True(t, r.hasPendingWorkload(sess.ID()))
}

func TestUnregisterUnknownNodeReturnsError(t *testing.T) {
	r := newTestRegistry(nil)
	err := r.UnregisterNode(context.Background(), NodeID(42))
	assert.Equal(t, errUnknownNode, err)
}

func TestKeepAliveUnknownNodeReturnsError(t *testing.T) {
	r := newTestRegistry(nil)
	err := r.KeepAlive(NodeID(1), time.Now())
	assert.Equal(t, errUnknownNode, err)
}

func TestKeepAliveStampsBackendAndFrontend(t *testing.T) {
	r := newTestRegistry(nil)
	backendID := mustRegisterBackend(t, r, newFakeBackendConn("b:9000"), "a100", 100)
	frontendID := r.RegisterFrontend(newFakeFrontendConn("f:9000"), time.Now())

	now := time.Now().Add(time.Minute)
	require.NoError(t, r.KeepAlive(backendID, now))
	require.NoError(t, r.KeepAlive(frontendID, now))

	assert.Equal(t, now, r.backends[backendID].LastBeacon)
	assert.Equal(t, now, r.frontends[frontendID].LastBeacon)
}

func TestUpdateBackendStatsUnknownBackend(t *testing.T) {
	r := newTestRegistry(nil)
	err := r.UpdateBackendStats(NodeID(1), nil)
	assert.Equal(t, errUnknownNode, err)
}

func TestUpdateBackendStatsPushesHistoryForKnownSessions(t *testing.T) {
	r := newTestRegistry(nil)
	backendID := mustRegisterBackend(t, r, newFakeBackendConn("b:9000"), "a100", 100)
	frontendID := r.RegisterFrontend(newFakeFrontendConn("f:9000"), time.Now())
	sess := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: 100}
	_, _, err := r.LoadModel(context.Background(), frontendID, sess, 10)
	require.NoError(t, err)

	err = r.UpdateBackendStats(backendID, []RPSSample{{Session: sess.ID(), RPS: 42}})
	require.NoError(t, err)

	info := r.modelTable[sess.ID()]
	require.NotNil(t, info)
	assert.Equal(t, []float64{42}, info.RPSHistory)
}
