package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindBestBackendPicksTightestFit(t *testing.T) {
	r := newTestRegistry(nil)
	mustRegisterBackend(t, r, newFakeBackendConn("roomy:9000"), "a100", 1000)
	mustRegisterBackend(t, r, newFakeBackendConn("tight:9000"), "a100", 20)

	sess := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: 100}

	r.mu.Lock()
	backend, cfg, found := r.findBestBackend(sess, 10, nil)
	r.mu.Unlock()

	require.True(t, found)
	assert.Equal(t, 20.0, backend.DeclaredCapacity)
	assert.Equal(t, 10.0, cfg.ReservedRPS)
}

func TestFindBestBackendTiesBreakByAscendingNodeID(t *testing.T) {
	r := newTestRegistry(nil)
	first := mustRegisterBackend(t, r, newFakeBackendConn("b1:9000"), "a100", 100)
	second := mustRegisterBackend(t, r, newFakeBackendConn("b2:9000"), "a100", 100)

	sess := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: 100}

	r.mu.Lock()
	backend, _, found := r.findBestBackend(sess, 10, nil)
	r.mu.Unlock()

	require.True(t, found)
	assert.Equal(t, first, backend.NodeID)
	assert.Less(t, first, second)
}

func TestFindBestBackendSkipsExcludedAndInfeasible(t *testing.T) {
	r := newTestRegistry(nil)
	excluded := mustRegisterBackend(t, r, newFakeBackendConn("excluded:9000"), "a100", 100)
	mustRegisterBackend(t, r, newFakeBackendConn("tiny:9000"), "a100", 1)

	sess := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: 100}

	r.mu.Lock()
	_, _, found := r.findBestBackend(sess, 10, map[NodeID]struct{}{excluded: {}})
	r.mu.Unlock()

	assert.False(t, found)
}

func TestAddBackendClaimsMatchingStaticSlot(t *testing.T) {
	group := SlotGroup{{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLAMillis: 100, BatchSize: 8}}
	r := newTestRegistry([]SlotGroup{group})

	conn := newFakeBackendConn("static:9000")
	mustRegisterBackend(t, r, conn, "a100", 1000)

	require.Len(t, conn.loads, 1)
	sess := group[0].Session()
	info := r.modelTable[sess.ID()]
	require.NotNil(t, info)
	assert.Equal(t, 0, info.staticSlot)
}

func TestAddBackendWithoutMatchingStaticSlotAbsorbsUnassigned(t *testing.T) {
	r := newTestRegistry(nil)
	frontendID := r.RegisterFrontend(newFakeFrontendConn("f:9000"), time.Now())
	sess := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: 100}
	_, pending, err := r.LoadModel(context.Background(), frontendID, sess, 10)
	require.NoError(t, err)
	require.True(t, pending)

	conn := newFakeBackendConn("late:9000")
	mustRegisterBackend(t, r, conn, "a100", 100)

	require.Len(t, conn.loads, 1)
	assert.False(t, r.hasPendingWorkload(sess.ID()))
}

func TestLoadModelSplitsOversizedRequestAcrossBackendsAndQueuesResidual(t *testing.T) {
	r := newTestRegistry(nil)
	b1Conn := newFakeBackendConn("b1:9000")
	b1 := mustRegisterBackend(t, r, b1Conn, "a100", 100)
	b2Conn := newFakeBackendConn("b2:9000")
	b2 := mustRegisterBackend(t, r, b2Conn, "a100", 100)
	frontendID := r.RegisterFrontend(newFakeFrontendConn("f:9000"), time.Now())

	sess := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: 100}
	_, pending, err := r.LoadModel(context.Background(), frontendID, sess, 300)
	require.NoError(t, err)
	assert.True(t, pending, "300 rps exceeds total capacity of 200, so the request stays partially pending")

	info := r.modelTable[sess.ID()]
	require.NotNil(t, info)
	assert.InDelta(t, 100.0, info.BackendThroughputs[b1], 1e-6)
	assert.InDelta(t, 100.0, info.BackendThroughputs[b2], 1e-6)
	require.True(t, r.hasPendingWorkload(sess.ID()))

	r.mu.Lock()
	var residual float64
	for _, w := range r.unassignedWorkloads {
		if w.Session == sess.ID() {
			residual = w.RequestedRPS
		}
	}
	r.mu.Unlock()
	assert.InDelta(t, 100.0, residual, 1e-6, "both backends should be packed full before anything is left pending")
}

func TestRemoveBackendRehomesWorkloadToAnotherBackend(t *testing.T) {
	r := newTestRegistry(nil)
	losingConn := newFakeBackendConn("losing:9000")
	losingID := mustRegisterBackend(t, r, losingConn, "a100", 100)
	winningConn := newFakeBackendConn("winning:9000")
	mustRegisterBackend(t, r, winningConn, "a100", 100)

	frontendID := r.RegisterFrontend(newFakeFrontendConn("f:9000"), time.Now())
	sess := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: 100}

	// Both backends tie on remaining-capacity fraction, so the lower node id
	// (losingID, registered first) wins the initial placement.
	_, _, err := r.LoadModel(context.Background(), frontendID, sess, 10)
	require.NoError(t, err)

	require.NoError(t, r.UnregisterNode(context.Background(), losingID))

	info := r.modelTable[sess.ID()]
	require.NotNil(t, info)
	assert.NotContains(t, info.BackendThroughputs, losingID)
	assert.Len(t, info.BackendThroughputs, 1)
}

func TestRemoveFrontendUnloadsOrphanedSession(t *testing.T) {
	r := newTestRegistry(nil)
	backendConn := newFakeBackendConn("b:9000")
	mustRegisterBackend(t, r, backendConn, "a100", 100)
	frontendConn := newFakeFrontendConn("f:9000")
	frontendID := r.RegisterFrontend(frontendConn, time.Now())

	sess := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: 100}
	_, _, err := r.LoadModel(context.Background(), frontendID, sess, 10)
	require.NoError(t, err)

	require.NoError(t, r.UnregisterNode(context.Background(), frontendID))

	_, stillTracked := r.modelTable[sess.ID()]
	assert.False(t, stillTracked)
	assert.Len(t, backendConn.unloads, 1)
	assert.Equal(t, sess.ID(), backendConn.unloads[0])
}
