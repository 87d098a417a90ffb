package scheduler

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// FrontendConnection is the opaque outbound handle to a frontend node.
type FrontendConnection interface {
	Address() string
	UpdateModelRoute(ctx context.Context, route ModelRoute) error
}

// FrontendDelegate is the behavior the registry needs from a registered
// frontend, kept separate from FrontendConnection so tests can substitute a
// fake transport without reimplementing subscription bookkeeping.
type FrontendDelegate interface {
	Subscribe(session ModelSessionID)
	Unsubscribe(session ModelSessionID)
	PushRoute(ctx context.Context, route ModelRoute) error
	IsAlive(now time.Time, timeout time.Duration) bool
	Subscriptions() []ModelSessionID
}

// Frontend is both the registry's record of a frontend node and its
// FrontendDelegate implementation, mirroring Backend.
type Frontend struct {
	NodeID        NodeID
	Conn          FrontendConnection
	LastBeacon    time.Time
	subscriptions map[ModelSessionID]struct{}
}

func newFrontend(id NodeID, conn FrontendConnection, now time.Time) *Frontend {
	return &Frontend{
		NodeID:        id,
		Conn:          conn,
		LastBeacon:    now,
		subscriptions: make(map[ModelSessionID]struct{}),
	}
}

func (f *Frontend) Subscribe(session ModelSessionID) {
	f.subscriptions[session] = struct{}{}
}

func (f *Frontend) Unsubscribe(session ModelSessionID) {
	delete(f.subscriptions, session)
}

func (f *Frontend) PushRoute(ctx context.Context, route ModelRoute) error {
	if err := f.Conn.UpdateModelRoute(ctx, route); err != nil {
		return errors.Wrapf(err, "push route %s to frontend %d", route.ModelSessionID, f.NodeID)
	}
	return nil
}

func (f *Frontend) IsAlive(now time.Time, timeout time.Duration) bool {
	return now.Sub(f.LastBeacon) <= timeout
}

func (f *Frontend) Subscriptions() []ModelSessionID {
	out := make([]ModelSessionID, 0, len(f.subscriptions))
	for session := range f.subscriptions {
		out = append(out, session)
	}
	return out
}
