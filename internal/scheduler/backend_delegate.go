package scheduler

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// BackendConnection is the opaque outbound handle to a backend node. A real
// implementation dials the backend over gRPC; this package only depends on
// the interface.
type BackendConnection interface {
	Address() string
	LoadModel(ctx context.Context, cfg ModelInstanceConfig) error
	UnloadModel(ctx context.Context, session ModelSessionID) error
	UpdateModelThroughput(ctx context.Context, session ModelSessionID, newRPS float64) error
}

// ProfileOracle answers "what would it cost to serve model M on backend B at
// rate R". The registry only depends on this interface; real profiling
// would query a measured-throughput service instead.
type ProfileOracle interface {
	// Prepare returns the instance configuration that would satisfy
	// requestRate on a backend of the given GPU type, and whether that rate
	// is feasible at all for this model/GPU combination (independent of the
	// backend's remaining capacity, which the caller checks separately).
	Prepare(gpuType string, sess ModelSession, requestRate float64) (ModelInstanceConfig, bool)
}

// BackendDelegate is the behavior the registry needs from a registered
// backend: pure in-memory mutations it can call under its mutex, plus the
// network-I/O push methods it must call only after releasing it.
type BackendDelegate interface {
	PrepareLoadModel(sess ModelSession, requestRate float64) (cfg ModelInstanceConfig, occupancyFraction float64, feasible bool)
	Reserve(cfg ModelInstanceConfig)
	Release(session ModelSessionID)
	UpdateThroughput(session ModelSessionID, newRPS float64) (ModelInstanceConfig, bool)
	PushLoad(ctx context.Context, cfg ModelInstanceConfig) error
	PushUnload(ctx context.Context, session ModelSessionID) error
	PushUpdateThroughput(ctx context.Context, session ModelSessionID, newRPS float64) error
	WorkloadAssignments() map[ModelSessionID]float64
	Throughput(session ModelSessionID) float64
	IsAlive(now time.Time, timeout time.Duration) bool
}

// Backend is both the registry's record of a backend node and its
// BackendDelegate implementation: the registry stores pointers to it
// directly rather than keeping a separate record type, since the two views
// describe the same entity.
//
// All bookkeeping fields are mutated only while the registry mutex is held;
// PushLoad/PushUnload/PushUpdateThroughput perform network I/O and must be
// called after the mutex has been released.
type Backend struct {
	NodeID              NodeID
	Conn                BackendConnection
	GPUType             string
	DeclaredCapacity    float64
	LastBeacon          time.Time
	Instances           map[ModelSessionID]ModelInstanceConfig
	AvailableThroughput float64
	Exclusive           bool
	Oracle              ProfileOracle
}

func newBackend(id NodeID, conn BackendConnection, gpuType string, declaredCapacity float64, oracle ProfileOracle, now time.Time) *Backend {
	return &Backend{
		NodeID:              id,
		Conn:                conn,
		GPUType:             gpuType,
		DeclaredCapacity:    declaredCapacity,
		LastBeacon:          now,
		Instances:           make(map[ModelSessionID]ModelInstanceConfig),
		AvailableThroughput: declaredCapacity,
		Oracle:              oracle,
	}
}

// PrepareLoadModel does not mutate; it answers the largest instance
// configuration this backend could host for sess at up to requestRate, along
// with the fraction of its *remaining* capacity that would consume. When
// requestRate's full cost exceeds what's left, the config is capped to
// exactly fill the backend's remaining capacity instead of being rejected,
// so a caller can place the residual elsewhere rather than treat the whole
// request as unplaceable. feasible is false only when even a capped
// fraction cannot be served: the backend is exclusive, the session/GPU
// combination is infeasible for any rate, or no capacity remains at all.
func (b *Backend) PrepareLoadModel(sess ModelSession, requestRate float64) (ModelInstanceConfig, float64, bool) {
	if b.Exclusive {
		return ModelInstanceConfig{}, 0, false
	}
	cfg, ok := b.Oracle.Prepare(b.GPUType, sess, requestRate)
	if !ok {
		return ModelInstanceConfig{}, 0, false
	}
	if cfg.ReservedRPS > b.AvailableThroughput {
		if b.AvailableThroughput <= 0 || cfg.ReservedRPS <= 0 {
			return ModelInstanceConfig{}, 0, false
		}
		cappedRate := requestRate * (b.AvailableThroughput / cfg.ReservedRPS)
		capped, ok := b.Oracle.Prepare(b.GPUType, sess, cappedRate)
		if !ok || capped.ReservedRPS <= 0 {
			return ModelInstanceConfig{}, 0, false
		}
		if capped.ReservedRPS > b.AvailableThroughput {
			// Floating-point safety net: never claim more than what's left.
			capped.ReservedRPS = b.AvailableThroughput
		}
		cfg = capped
	}
	occupancy := 0.0
	if b.AvailableThroughput > 0 {
		occupancy = cfg.ReservedRPS / b.AvailableThroughput
	}
	return cfg, occupancy, true
}

// Reserve records cfg against the backend's capacity. Callers must have
// already verified feasibility via PrepareLoadModel.
func (b *Backend) Reserve(cfg ModelInstanceConfig) {
	if old, ok := b.Instances[cfg.Session]; ok {
		b.AvailableThroughput += old.ReservedRPS
	}
	b.Instances[cfg.Session] = cfg
	b.AvailableThroughput -= cfg.ReservedRPS
}

// Release frees the capacity reserved for session, if any.
func (b *Backend) Release(session ModelSessionID) {
	if cfg, ok := b.Instances[session]; ok {
		b.AvailableThroughput += cfg.ReservedRPS
		delete(b.Instances, session)
	}
}

// UpdateThroughput re-reserves session at newRPS, recomputing batch config
// via the oracle.
func (b *Backend) UpdateThroughput(session ModelSessionID, newRPS float64) (ModelInstanceConfig, bool) {
	old, ok := b.Instances[session]
	if !ok {
		return ModelInstanceConfig{}, false
	}
	candidateAvailable := b.AvailableThroughput + old.ReservedRPS
	cfg, ok := b.Oracle.Prepare(b.GPUType, old.ModelSession(), newRPS)
	if !ok {
		return ModelInstanceConfig{}, false
	}
	cfg.Session = session
	if cfg.ReservedRPS > candidateAvailable {
		return ModelInstanceConfig{}, false
	}
	b.AvailableThroughput = candidateAvailable - cfg.ReservedRPS
	b.Instances[session] = cfg
	return cfg, true
}

func (b *Backend) PushLoad(ctx context.Context, cfg ModelInstanceConfig) error {
	if err := b.Conn.LoadModel(ctx, cfg); err != nil {
		return errors.Wrapf(err, "load model %s on backend %d", cfg.Session, b.NodeID)
	}
	return nil
}

func (b *Backend) PushUnload(ctx context.Context, session ModelSessionID) error {
	if err := b.Conn.UnloadModel(ctx, session); err != nil {
		return errors.Wrapf(err, "unload model %s on backend %d", session, b.NodeID)
	}
	return nil
}

func (b *Backend) PushUpdateThroughput(ctx context.Context, session ModelSessionID, newRPS float64) error {
	if err := b.Conn.UpdateModelThroughput(ctx, session, newRPS); err != nil {
		return errors.Wrapf(err, "update throughput for %s on backend %d", session, b.NodeID)
	}
	return nil
}

func (b *Backend) WorkloadAssignments() map[ModelSessionID]float64 {
	out := make(map[ModelSessionID]float64, len(b.Instances))
	for session, cfg := range b.Instances {
		out[session] = cfg.ReservedRPS
	}
	return out
}

func (b *Backend) Throughput(session ModelSessionID) float64 {
	return b.Instances[session].ReservedRPS
}

func (b *Backend) IsAlive(now time.Time, timeout time.Duration) bool {
	return now.Sub(b.LastBeacon) <= timeout
}
