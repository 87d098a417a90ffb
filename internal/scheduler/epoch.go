package scheduler

import (
	"context"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/clock"
)

// EpochLoop runs the periodic re-scheduling pass: grow sessions whose
// measured load has outgrown their current assignment, shrink sessions that
// have settled below it, then absorb whatever that freed or orphaned into
// unassigned_workloads and push the resulting routes.
type EpochLoop struct {
	registry *RegistryCore
	interval time.Duration
	clock    clock.Clock
}

func NewEpochLoop(registry *RegistryCore, interval time.Duration) *EpochLoop {
	return &EpochLoop{registry: registry, interval: interval, clock: clock.RealClock{}}
}

func (e *EpochLoop) Run(ctx context.Context) error {
	ticker := e.clock.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			e.cycle(ctx)
		}
	}
}

func (e *EpochLoop) cycle(ctx context.Context) {
	start := e.clock.Now()
	r := e.registry

	r.mu.Lock()
	eff := newEffects()
	for session, info := range r.modelTable {
		r.planSession(session, info, &eff)
	}
	allocEffects := r.allocateUnassignedWorkloads(eff.changedRoutes)
	eff.merge(allocEffects)
	changed := eff.changedRoutes
	r.mu.Unlock()

	r.applyEffects(ctx, eff)
	r.updateModelRoutes(ctx, changed)

	if r.metrics != nil {
		r.metrics.EpochCyclesTotal.Inc()
		r.metrics.EpochDurationSeconds.Observe(e.clock.Now().Sub(start).Seconds())
		r.mu.Lock()
		r.metrics.UnassignedWorkloads.Set(float64(len(r.unassignedWorkloads)))
		r.mu.Unlock()
	}
	log.WithField("changed_sessions", len(changed)).Debug("epoch cycle complete")
}

// planSession applies the grow/shrink decision for one session. Callers must
// hold r.mu.
func (r *RegistryCore) planSession(session ModelSessionID, info *ModelInfo, eff *effects) {
	total := info.TotalThroughput()
	measured, ok := info.peakHistory()
	if !ok {
		measured = total
	}

	switch {
	case measured > total*(1+r.cfg.OverProvisionSlack):
		r.unassignedWorkloads = append(r.unassignedWorkloads, unassignedWorkload{
			Session:      session,
			RequestedRPS: measured - total,
		})
		eff.markChanged(session)
	case total > 0 && measured < total*(1-r.cfg.UnderProvisionSlack):
		r.shrinkSession(session, info, total-measured, eff)
	}
}

// shrinkSession removes reduction worth of throughput from session's
// backends, smallest-assignment-first (ties broken by ascending node id),
// unloading a backend outright when its whole assignment fits within the
// remaining reduction and trimming the final backend's assignment down to
// what's left over.
func (r *RegistryCore) shrinkSession(session ModelSessionID, info *ModelInfo, reduction float64, eff *effects) {
	type assignment struct {
		nodeID NodeID
		rps    float64
	}
	assignments := make([]assignment, 0, len(info.BackendThroughputs))
	for id, rps := range info.BackendThroughputs {
		assignments = append(assignments, assignment{id, rps})
	}
	sort.Slice(assignments, func(i, j int) bool {
		if assignments[i].rps != assignments[j].rps {
			return assignments[i].rps < assignments[j].rps
		}
		return assignments[i].nodeID < assignments[j].nodeID
	})

	for _, a := range assignments {
		if reduction <= 1e-9 {
			break
		}
		backend, ok := r.backends[a.nodeID]
		if !ok {
			continue
		}
		if a.rps <= reduction {
			backend.Release(session)
			delete(info.BackendThroughputs, a.nodeID)
			eff.unloads = append(eff.unloads, unloadPush{backendID: a.nodeID, session: session})
			reduction -= a.rps
			continue
		}
		newRPS := a.rps - reduction
		cfg, ok := backend.UpdateThroughput(session, newRPS)
		if !ok {
			continue
		}
		info.BackendThroughputs[a.nodeID] = cfg.ReservedRPS
		eff.updates = append(eff.updates, updatePush{backendID: a.nodeID, session: session, newRPS: cfg.ReservedRPS})
		reduction = 0
	}
	eff.markChanged(session)

	if info.isEmpty() {
		delete(r.modelTable, session)
	}
}
