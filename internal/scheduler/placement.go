package scheduler

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// loadPush, unloadPush and updatePush are outbound backend RPCs decided
// while the mutex is held and executed after it is released.
type loadPush struct {
	backendID NodeID
	cfg       ModelInstanceConfig
}

type unloadPush struct {
	backendID NodeID
	session   ModelSessionID
}

type updatePush struct {
	backendID NodeID
	session   ModelSessionID
	newRPS    float64
}

// effects batches the outbound work decided by a mutation so it can run
// after the registry mutex is released.
type effects struct {
	loads        []loadPush
	unloads      []unloadPush
	updates      []updatePush
	changedRoutes map[ModelSessionID]struct{}
}

func newEffects() effects {
	return effects{changedRoutes: make(map[ModelSessionID]struct{})}
}

func (e *effects) markChanged(session ModelSessionID) {
	e.changedRoutes[session] = struct{}{}
}

func (e *effects) merge(other effects) {
	e.loads = append(e.loads, other.loads...)
	e.unloads = append(e.unloads, other.unloads...)
	e.updates = append(e.updates, other.updates...)
	for s := range other.changedRoutes {
		e.changedRoutes[s] = struct{}{}
	}
}

// applyEffects performs the network I/O decided by a mutation. It must be
// called without r.mu held.
func (r *RegistryCore) applyEffects(ctx context.Context, e effects) {
	for _, p := range e.loads {
		r.mu.Lock()
		backend, ok := r.backends[p.backendID]
		r.mu.Unlock()
		if !ok {
			continue
		}
		pushCtx, cancel := context.WithTimeout(ctx, r.rpcTimeout())
		err := backend.PushLoad(pushCtx, p.cfg)
		cancel()
		if err != nil {
			log.WithError(err).WithFields(log.Fields{"backend_id": p.backendID, "session": p.cfg.Session}).
				Warn("load model rpc failed, next periodic pass will reconcile")
			if r.metrics != nil {
				r.metrics.BackendPushErrors.WithLabelValues("load").Inc()
			}
		}
	}
	for _, p := range e.unloads {
		r.mu.Lock()
		backend, ok := r.backends[p.backendID]
		r.mu.Unlock()
		if !ok {
			continue
		}
		pushCtx, cancel := context.WithTimeout(ctx, r.rpcTimeout())
		err := backend.PushUnload(pushCtx, p.session)
		cancel()
		if err != nil {
			log.WithError(err).WithFields(log.Fields{"backend_id": p.backendID, "session": p.session}).
				Warn("unload model rpc failed, next periodic pass will reconcile")
			if r.metrics != nil {
				r.metrics.BackendPushErrors.WithLabelValues("unload").Inc()
			}
		}
	}
	for _, p := range e.updates {
		r.mu.Lock()
		backend, ok := r.backends[p.backendID]
		r.mu.Unlock()
		if !ok {
			continue
		}
		pushCtx, cancel := context.WithTimeout(ctx, r.rpcTimeout())
		err := backend.PushUpdateThroughput(pushCtx, p.session, p.newRPS)
		cancel()
		if err != nil {
			log.WithError(err).WithFields(log.Fields{"backend_id": p.backendID, "session": p.session}).
				Warn("update throughput rpc failed, next periodic pass will reconcile")
			if r.metrics != nil {
				r.metrics.BackendPushErrors.WithLabelValues("update").Inc()
			}
		}
	}
}

// findBestBackend picks the tightest-fit backend for sess at requestRate:
// the feasible backend leaving the smallest remaining-capacity fraction
// after loading, breaking ties by ascending node id. When no backend can
// satisfy requestRate in full, the returned config is capped to whatever
// that backend has left (see Backend.PrepareLoadModel); callers that need
// requestRate met in full must loop, excluding backends already used, until
// satisfied or no backend remains. Callers must hold r.mu.
func (r *RegistryCore) findBestBackend(sess ModelSession, requestRate float64, skips map[NodeID]struct{}) (*Backend, ModelInstanceConfig, bool) {
	var best *Backend
	var bestCfg ModelInstanceConfig
	bestRemainingFrac := 0.0
	found := false

	for id, backend := range r.backends {
		if _, skip := skips[id]; skip {
			continue
		}
		cfg, occupancy, feasible := backend.PrepareLoadModel(sess, requestRate)
		if !feasible {
			continue
		}
		remainingFrac := 1 - occupancy
		if !found ||
			remainingFrac < bestRemainingFrac ||
			(remainingFrac == bestRemainingFrac && id < best.NodeID) {
			best = backend
			bestCfg = cfg
			bestRemainingFrac = remainingFrac
			found = true
		}
	}
	return best, bestCfg, found
}

// applyPlacement records cfg against backend for the session it names,
// merging into any existing reservation for that session on that same
// backend rather than overwriting it. findBestBackend's tightest-fit rule
// can return an already-serving backend when the caller only asked for
// incremental capacity (an epoch growth delta, or the next slice of a
// request being split across backends), and Backend.Reserve replaces a
// session's instance outright, so merging has to happen one level up. ok is
// false only if the backend rejects the merged total outright, which should
// not happen for a cfg this function itself produced via PrepareLoadModel.
func (r *RegistryCore) applyPlacement(backend *Backend, info *ModelInfo, cfg ModelInstanceConfig) (final ModelInstanceConfig, wasNew bool, ok bool) {
	if existing, has := backend.Instances[cfg.Session]; has {
		merged, ok := backend.UpdateThroughput(cfg.Session, existing.ReservedRPS+cfg.ReservedRPS)
		if !ok {
			return ModelInstanceConfig{}, false, false
		}
		info.BackendThroughputs[backend.NodeID] = merged.ReservedRPS
		return merged, false, true
	}
	backend.Reserve(cfg)
	info.BackendThroughputs[backend.NodeID] = cfg.ReservedRPS
	return cfg, true, true
}

// placeWorkload tries to satisfy requestedRPS for session across as many
// feasible backends as it takes, excluding any node id in skip, and returns
// the RPS actually placed. Each iteration hands findBestBackend whatever is
// still unmet, so a request larger than any single backend's capacity fills
// every feasible backend in turn instead of being declared unplaceable the
// moment the first one can't take it all. Callers must hold r.mu.
func (r *RegistryCore) placeWorkload(session ModelSessionID, sess ModelSession, requestedRPS float64, skip map[NodeID]struct{}, e *effects) float64 {
	info, ok := r.modelTable[session]
	if !ok {
		info = newModelInfo()
		r.modelTable[session] = info
	}
	used := make(map[NodeID]struct{}, len(skip))
	for id := range skip {
		used[id] = struct{}{}
	}

	remaining := requestedRPS
	served := 0.0
	for remaining > 1e-9 {
		backend, cfg, found := r.findBestBackend(sess, remaining, used)
		if !found {
			break
		}
		delta := cfg.ReservedRPS
		final, wasNew, ok := r.applyPlacement(backend, info, cfg)
		used[backend.NodeID] = struct{}{}
		if !ok {
			continue
		}
		if wasNew {
			e.loads = append(e.loads, loadPush{backendID: backend.NodeID, cfg: final})
		} else {
			e.updates = append(e.updates, updatePush{backendID: backend.NodeID, session: session, newRPS: final.ReservedRPS})
		}
		remaining -= delta
		served += delta
	}
	if served > 0 {
		e.markChanged(session)
	}
	return served
}

// addBackend claims a static slot if one fits the new backend, else lets it
// absorb pending unassigned workloads.
func (r *RegistryCore) addBackend(backend *Backend) effects {
	if idx, group, ok := r.claimableStaticSlot(backend); ok {
		e := newEffects()
		backend.Exclusive = true
		r.assignedStaticWorkloads[idx] = backend.NodeID
		for _, decl := range group {
			sess := decl.Session()
			cfg, ok := r.oracle.Prepare(backend.GPUType, sess, staticSlotNominalRPS)
			if !ok {
				continue
			}
			if decl.BatchSize > 0 {
				cfg.BatchSize = decl.BatchSize
			}
			backend.Reserve(cfg)
			info, exists := r.modelTable[cfg.Session]
			if !exists {
				info = newModelInfo()
				r.modelTable[cfg.Session] = info
			}
			info.staticSlot = idx
			e.loads = append(e.loads, loadPush{backendID: backend.NodeID, cfg: cfg})
		}
		return e
	}
	return r.allocateUnassignedWorkloads(map[ModelSessionID]struct{}{})
}

// staticSlotNominalRPS is the placeholder request rate passed to the oracle
// for static instances. It sets each instance's reservation and memory
// estimate, and claimableStaticSlot sums those reservations to decide whether
// a slot group fits a backend; a declared batch size overrides the oracle's.
// Static instances are pinned regardless of measured load and their
// exclusive backends never take part in best-fit selection.
const staticSlotNominalRPS = 1.0

// claimableStaticSlot returns the lowest-index unassigned slot group whose
// declarations all fit the backend's declared capacity, if any.
func (r *RegistryCore) claimableStaticSlot(backend *Backend) (int, SlotGroup, bool) {
	for idx, group := range r.staticWorkloads {
		if existing, ok := r.assignedStaticWorkloads[idx]; ok && existing != NoNode {
			continue
		}
		total := 0.0
		fits := true
		for _, decl := range group {
			cfg, ok := r.oracle.Prepare(backend.GPUType, decl.Session(), staticSlotNominalRPS)
			if !ok {
				fits = false
				break
			}
			total += cfg.ReservedRPS
		}
		if fits && total <= backend.DeclaredCapacity {
			return idx, group, true
		}
	}
	return 0, nil, false
}

// removeBackend releases every workload the backend was carrying, tries to
// re-home each onto another backend, and falls back to the unassigned
// workload list for anything that no longer fits anywhere.
func (r *RegistryCore) removeBackend(backend *Backend) effects {
	e := newEffects()
	for session, rps := range backend.WorkloadAssignments() {
		if info, ok := r.modelTable[session]; ok {
			delete(info.BackendThroughputs, backend.NodeID)
		}
		backend.Release(session)

		sess, ok := ParseModelSessionID(session)
		if !ok {
			e.markChanged(session)
			continue
		}
		served := r.placeWorkload(session, sess, rps, map[NodeID]struct{}{backend.NodeID: {}}, &e)
		if shortfall := rps - served; shortfall > 1e-9 {
			r.unassignedWorkloads = append(r.unassignedWorkloads, unassignedWorkload{Session: session, RequestedRPS: shortfall})
		}
		e.markChanged(session)
	}

	for idx, assigned := range r.assignedStaticWorkloads {
		if assigned == backend.NodeID {
			r.assignedStaticWorkloads[idx] = NoNode
		}
	}

	return e
}

// removeFrontend drops the frontend's subscriptions and unloads any session
// left with no subscribers and no static backing.
func (r *RegistryCore) removeFrontend(frontend *Frontend) effects {
	e := newEffects()
	for _, session := range frontend.Subscriptions() {
		info, ok := r.modelTable[session]
		if !ok {
			continue
		}
		delete(info.Subscribers, frontend.NodeID)
		frontend.Unsubscribe(session)

		if info.isEmpty() {
			// No static slot and no backends either; nothing to unload.
			delete(r.modelTable, session)
			continue
		}
		if len(info.Subscribers) == 0 && info.staticSlot < 0 {
			for backendID := range info.BackendThroughputs {
				if backend, ok := r.backends[backendID]; ok {
					backend.Release(session)
					e.unloads = append(e.unloads, unloadPush{backendID: backendID, session: session})
				}
			}
			delete(r.modelTable, session)
			continue
		}
		e.markChanged(session)
	}
	return e
}

// allocateUnassignedWorkloads walks the unassigned workload list in order,
// placing what fits (across as many backends as it takes, per placeWorkload)
// and leaving any shortfall pending. It is idempotent when no backend's
// state has changed between calls, since a rerun over the same pending list
// with unchanged capacities makes the same placement decisions.
func (r *RegistryCore) allocateUnassignedWorkloads(changedRoutes map[ModelSessionID]struct{}) effects {
	e := newEffects()
	remaining := r.unassignedWorkloads[:0]
	for _, w := range r.unassignedWorkloads {
		sess, ok := ParseModelSessionID(w.Session)
		if !ok {
			remaining = append(remaining, w)
			continue
		}
		served := r.placeWorkload(w.Session, sess, w.RequestedRPS, nil, &e)
		if served > 0 && changedRoutes != nil {
			changedRoutes[w.Session] = struct{}{}
		}
		if shortfall := w.RequestedRPS - served; shortfall > 1e-9 {
			remaining = append(remaining, unassignedWorkload{Session: w.Session, RequestedRPS: shortfall})
		}
	}
	r.unassignedWorkloads = remaining
	return e
}
