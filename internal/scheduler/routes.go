package scheduler

import (
	"context"
	"sort"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
)

// BackendRoute is one entry of a ModelRoute.
type BackendRoute struct {
	NodeID        NodeID
	Address       string
	ThroughputRPS float64
}

// ModelRoute is a snapshot of (session, [(backend, rps)...]) pushed to
// subscribers.
type ModelRoute struct {
	ModelSessionID ModelSessionID
	Backends       []BackendRoute
}

// getModelRoute builds a ModelRoute snapshot for session. Callers must hold
// r.mu.
func (r *RegistryCore) getModelRoute(session ModelSessionID) ModelRoute {
	route := ModelRoute{ModelSessionID: session}
	info, ok := r.modelTable[session]
	if !ok {
		return route
	}
	route.Backends = make([]BackendRoute, 0, len(info.BackendThroughputs))
	for nodeID, rps := range info.BackendThroughputs {
		backend, ok := r.backends[nodeID]
		if !ok {
			continue
		}
		route.Backends = append(route.Backends, BackendRoute{
			NodeID:        nodeID,
			Address:       backend.Conn.Address(),
			ThroughputRPS: rps,
		})
	}
	sort.Slice(route.Backends, func(i, j int) bool { return route.Backends[i].NodeID < route.Backends[j].NodeID })
	return route
}

// routePush is a snapshot of one route paired with the frontends it must be
// pushed to, computed under the mutex and executed after it is released.
type routePush struct {
	route      ModelRoute
	frontendID []NodeID
}

// snapshotRoutes computes route pushes for the given sessions. Callers must
// hold r.mu; the returned pushes are executed later, outside the lock, by
// dispatchRoutes.
func (r *RegistryCore) snapshotRoutes(sessions map[ModelSessionID]struct{}) []routePush {
	pushes := make([]routePush, 0, len(sessions))
	for session := range sessions {
		info, ok := r.modelTable[session]
		if !ok {
			continue
		}
		ids := make([]NodeID, 0, len(info.Subscribers))
		for id := range info.Subscribers {
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			continue
		}
		pushes = append(pushes, routePush{route: r.getModelRoute(session), frontendID: ids})
	}
	return pushes
}

// dispatchRoutes pushes previously-snapshotted routes to their subscribers.
// It must run outside r.mu: a slow or dead frontend must never stall the
// registry mutex. Push failures are logged and never roll back state. A
// failed push is not retried: the frontend next receives that session's
// route only when a later mutation or epoch pass marks the session changed.
func (r *RegistryCore) dispatchRoutes(ctx context.Context, pushes []routePush) {
	for _, push := range pushes {
		var errs *multierror.Error
		for _, id := range push.frontendID {
			r.mu.Lock()
			frontend, ok := r.frontends[id]
			r.mu.Unlock()
			if !ok {
				continue
			}
			pushCtx, cancel := context.WithTimeout(ctx, r.rpcTimeout())
			err := frontend.PushRoute(pushCtx, push.route)
			cancel()
			if err != nil {
				errs = multierror.Append(errs, err)
				if r.metrics != nil {
					r.metrics.RouteDispatchErrors.Inc()
				}
			}
		}
		if errs != nil {
			log.WithError(errs).WithField("session", push.route.ModelSessionID).
				Warn("failed to push route to one or more subscribers")
		}
	}
}

// updateModelRoutes is the combined snapshot+dispatch operation for a set of
// sessions. It must be called without r.mu held.
func (r *RegistryCore) updateModelRoutes(ctx context.Context, sessions map[ModelSessionID]struct{}) {
	if len(sessions) == 0 {
		return
	}
	r.mu.Lock()
	pushes := r.snapshotRoutes(sessions)
	r.mu.Unlock()
	r.dispatchRoutes(ctx, pushes)
}
