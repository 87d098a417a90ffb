package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// RegistryCore owns the frontend table, backend table, and model table, plus
// the static and unassigned workload vectors, and serializes every mutation
// under mu. RPC handlers and the periodic loops share it from separate
// goroutines, but every read or write of the tables happens with mu held,
// which is what lets the rest of the package reason about placement and
// routing as plain sequential code.
type RegistryCore struct {
	mu sync.Mutex

	nextNodeID NodeID

	frontends  map[NodeID]*Frontend
	backends   map[NodeID]*Backend
	modelTable map[ModelSessionID]*ModelInfo

	staticWorkloads         []SlotGroup
	assignedStaticWorkloads map[int]NodeID // slot index -> backend node id, 0 == unassigned
	unassignedWorkloads     []unassignedWorkload

	oracle ProfileOracle

	cfg Config

	metrics *Metrics
}

// Config bundles the scheduler's tunables.
type Config struct {
	BeaconIntervalSec      uint32
	EpochIntervalSec       uint32
	HistoryLen             int
	OverProvisionSlack     float64
	UnderProvisionSlack    float64
	BeaconTimeoutMultiplier float64
}

// DefaultConfig returns defensible defaults for the epoch re-scheduling
// slack coefficients and beacon timing; callers are free to override any of
// them per deployment.
func DefaultConfig() Config {
	return Config{
		BeaconIntervalSec:       2,
		EpochIntervalSec:        30,
		HistoryLen:              10,
		OverProvisionSlack:      0.1,
		UnderProvisionSlack:     0.1,
		BeaconTimeoutMultiplier: 1.5,
	}
}

func NewRegistryCore(cfg Config, staticWorkloads []SlotGroup, oracle ProfileOracle, metrics *Metrics) *RegistryCore {
	if oracle == nil {
		oracle = NewSimpleProfileOracle()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &RegistryCore{
		nextNodeID:              1,
		frontends:               make(map[NodeID]*Frontend),
		backends:                make(map[NodeID]*Backend),
		modelTable:              make(map[ModelSessionID]*ModelInfo),
		staticWorkloads:         staticWorkloads,
		assignedStaticWorkloads: make(map[int]NodeID),
		oracle:                  oracle,
		cfg:                     cfg,
		metrics:                 metrics,
	}
}

func (r *RegistryCore) allocNodeID() NodeID {
	id := r.nextNodeID
	r.nextNodeID++
	return id
}

func (r *RegistryCore) beaconTimeout() time.Duration {
	seconds := float64(r.cfg.BeaconIntervalSec) * r.cfg.BeaconTimeoutMultiplier
	return time.Duration(seconds * float64(time.Second))
}

func (r *RegistryCore) rpcTimeout() time.Duration {
	return time.Duration(r.cfg.BeaconIntervalSec) * time.Second
}

// RegisterBackend allocates a node id for a new backend, absorbs it into
// placement (static slot claim or pending workload absorption), and returns
// the assigned id.
func (r *RegistryCore) RegisterBackend(ctx context.Context, conn BackendConnection, gpuType string, declaredCapacity float64, now time.Time) (NodeID, error) {
	r.mu.Lock()
	id := r.allocNodeID()
	backend := newBackend(id, conn, gpuType, declaredCapacity, r.oracle, now)
	r.backends[id] = backend
	effects := r.addBackend(backend)
	r.mu.Unlock()

	r.applyEffects(ctx, effects)
	if r.metrics != nil {
		r.metrics.BackendsRegistered.Inc()
	}
	log.WithFields(log.Fields{"node_id": id, "gpu_type": gpuType, "capacity": declaredCapacity}).
		Info("backend registered")
	return id, nil
}

// RegisterFrontend allocates a node id for a new frontend.
func (r *RegistryCore) RegisterFrontend(conn FrontendConnection, now time.Time) NodeID {
	r.mu.Lock()
	id := r.allocNodeID()
	r.frontends[id] = newFrontend(id, conn, now)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.FrontendsRegistered.Inc()
	}
	log.WithField("node_id", id).Info("frontend registered")
	return id
}

// UnregisterNode removes either a backend or a frontend, triggering the full
// route-repair flow.
func (r *RegistryCore) UnregisterNode(ctx context.Context, id NodeID) error {
	r.mu.Lock()
	backend, isBackend := r.backends[id]
	frontend, isFrontend := r.frontends[id]
	if !isBackend && !isFrontend {
		r.mu.Unlock()
		return errUnknownNode
	}
	var effects effects
	if isBackend {
		delete(r.backends, id)
		effects = r.removeBackend(backend)
	} else {
		delete(r.frontends, id)
		effects = r.removeFrontend(frontend)
	}
	r.mu.Unlock()

	r.applyEffects(ctx, effects)
	log.WithField("node_id", id).Info("node unregistered")
	return nil
}

var errUnknownNode = errors.New("unknown node id")
var errUnknownRole = errors.New("unknown node role")

// LoadModel subscribes the frontend to sess, ensures the model table entry
// exists, appends an unassigned workload if the session isn't already
// backed by any capacity, allocates, and reports the resulting route.
func (r *RegistryCore) LoadModel(ctx context.Context, frontendID NodeID, sess ModelSession, requestedRPS float64) (ModelRoute, bool, error) {
	r.mu.Lock()
	frontend, ok := r.frontends[frontendID]
	if !ok {
		r.mu.Unlock()
		return ModelRoute{}, false, errUnknownNode
	}
	session := sess.ID()
	frontend.Subscribe(session)

	info, exists := r.modelTable[session]
	if !exists {
		info = newModelInfo()
		r.modelTable[session] = info
	}
	info.Subscribers[frontendID] = struct{}{}

	if info.TotalThroughput() == 0 && !r.hasPendingWorkload(session) {
		r.unassignedWorkloads = append(r.unassignedWorkloads, unassignedWorkload{Session: session, RequestedRPS: requestedRPS})
	}

	changed := map[ModelSessionID]struct{}{}
	loadEffects := r.allocateUnassignedWorkloads(changed)
	changed[session] = struct{}{}

	route := r.getModelRoute(session)
	fullyAssigned := info.TotalThroughput() >= requestedRPS-1e-9 && !r.hasPendingWorkload(session)
	r.mu.Unlock()

	r.applyEffects(ctx, loadEffects)
	r.updateModelRoutes(ctx, changed)

	return route, !fullyAssigned, nil
}

func (r *RegistryCore) hasPendingWorkload(session ModelSessionID) bool {
	for _, w := range r.unassignedWorkloads {
		if w.Session == session {
			return true
		}
	}
	return false
}

// UpdateBackendStats appends RPS samples to the relevant sessions' history,
// truncating to historyLen.
func (r *RegistryCore) UpdateBackendStats(backendID NodeID, samples []RPSSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.backends[backendID]; !ok {
		return errUnknownNode
	}
	for _, sample := range samples {
		info, ok := r.modelTable[sample.Session]
		if !ok {
			continue
		}
		info.pushHistory(sample.RPS, r.cfg.HistoryLen)
	}
	return nil
}

// RPSSample is one (session, window, measured rps) sample reported by a
// backend.
type RPSSample struct {
	Session     ModelSessionID
	WindowStart time.Time
	WindowEnd   time.Time
	RPS         float64
}

// KeepAlive stamps the last-beacon time for the given node.
func (r *RegistryCore) KeepAlive(id NodeID, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if backend, ok := r.backends[id]; ok {
		backend.LastBeacon = now
		return nil
	}
	if frontend, ok := r.frontends[id]; ok {
		frontend.LastBeacon = now
		return nil
	}
	return errUnknownNode
}
