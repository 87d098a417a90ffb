package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetModelRouteSortsBackendsByNodeID(t *testing.T) {
	r := newTestRegistry(nil)
	second := mustRegisterBackend(t, r, newFakeBackendConn("second:9000"), "a100", 1000)
	first := mustRegisterBackend(t, r, newFakeBackendConn("first:9000"), "a100", 1000)
	frontendID := r.RegisterFrontend(newFakeFrontendConn("f:9000"), time.Now())

	sess := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: 100}
	route, _, err := r.LoadModel(context.Background(), frontendID, sess, 10)
	require.NoError(t, err)
	require.Len(t, route.Backends, 1)

	// Only one backend actually got the reservation (best-fit tie winner);
	// exercise the sort directly with a synthetic two-backend route.
	r.mu.Lock()
	info := r.modelTable[sess.ID()]
	info.BackendThroughputs[second] = 5
	info.BackendThroughputs[first] = 5
	built := r.getModelRoute(sess.ID())
	r.mu.Unlock()

	require.Len(t, built.Backends, 2)
	for i := 1; i < len(built.Backends); i++ {
		assert.Less(t, built.Backends[i-1].NodeID, built.Backends[i].NodeID)
	}
}

func TestDispatchRoutesPushesToAllSubscribers(t *testing.T) {
	r := newTestRegistry(nil)
	mustRegisterBackend(t, r, newFakeBackendConn("b:9000"), "a100", 1000)
	frontendConn := newFakeFrontendConn("f:9000")
	frontendID := r.RegisterFrontend(frontendConn, time.Now())

	sess := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: 100}
	_, _, err := r.LoadModel(context.Background(), frontendID, sess, 10)
	require.NoError(t, err)

	route, ok := frontendConn.lastRoute()
	require.True(t, ok)
	assert.Equal(t, sess.ID(), route.ModelSessionID)
	require.Len(t, route.Backends, 1)
}

func TestUpdateModelRoutesSkipsSessionsWithNoSubscribers(t *testing.T) {
	r := newTestRegistry(nil)
	// No frontends registered at all; updateModelRoutes must not panic or
	// attempt any push.
	r.updateModelRoutes(context.Background(), map[ModelSessionID]struct{}{"nonexistent": {}})
}
