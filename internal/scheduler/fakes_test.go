package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/nexus-project/scheduler/pkg/schedulerpb"
)

// fakeBackendConn is an in-memory BackendConnection recording every call it
// receives, for assertions in tests that don't need a real network stack.
type fakeBackendConn struct {
	mu       sync.Mutex
	address  string
	loads    []ModelInstanceConfig
	unloads  []ModelSessionID
	updates  map[ModelSessionID]float64
	failNext bool
}

func newFakeBackendConn(address string) *fakeBackendConn {
	return &fakeBackendConn{address: address, updates: make(map[ModelSessionID]float64)}
}

func (c *fakeBackendConn) Address() string { return c.address }

func (c *fakeBackendConn) LoadModel(_ context.Context, cfg ModelInstanceConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failNext {
		c.failNext = false
		return fmt.Errorf("fake load failure")
	}
	c.loads = append(c.loads, cfg)
	return nil
}

func (c *fakeBackendConn) UnloadModel(_ context.Context, session ModelSessionID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unloads = append(c.unloads, session)
	return nil
}

func (c *fakeBackendConn) UpdateModelThroughput(_ context.Context, session ModelSessionID, newRPS float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates[session] = newRPS
	return nil
}

// fakeFrontendConn is an in-memory FrontendConnection recording every route
// it was pushed.
type fakeFrontendConn struct {
	mu      sync.Mutex
	address string
	routes  []ModelRoute
}

func newFakeFrontendConn(address string) *fakeFrontendConn {
	return &fakeFrontendConn{address: address}
}

func (c *fakeFrontendConn) Address() string { return c.address }

func (c *fakeFrontendConn) UpdateModelRoute(_ context.Context, route ModelRoute) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes = append(c.routes, route)
	return nil
}

func (c *fakeFrontendConn) lastRoute() (ModelRoute, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.routes) == 0 {
		return ModelRoute{}, false
	}
	return c.routes[len(c.routes)-1], true
}

// testDialer returns a Dialer that hands back the given fakes for every
// address, ignoring role except to pick which side to populate.
func testDialer(backendConns map[string]*fakeBackendConn, frontendConns map[string]*fakeFrontendConn) Dialer {
	return func(address string, role schedulerpb.NodeRole) (BackendConnection, FrontendConnection, error) {
		if conn, ok := backendConns[address]; ok {
			return conn, nil, nil
		}
		if conn, ok := frontendConns[address]; ok {
			return nil, conn, nil
		}
		return nil, nil, fmt.Errorf("no fake connection registered for %s", address)
	}
}
