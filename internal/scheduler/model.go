package scheduler

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeID is a globally-unique, scheduler-assigned identifier for a frontend
// or a backend. Zero is reserved for "none" and is never handed out by
// allocNodeID.
type NodeID uint32

// NoNode is the reserved "none" node id.
const NoNode NodeID = 0

// ModelSessionID is the canonical (framework, model, version, latency SLO)
// string id. Two sessions are the same iff their ids are byte-equal.
type ModelSessionID string

// ModelSession identifies a concrete model binding that can be routed to.
type ModelSession struct {
	Framework        string
	ModelName        string
	Version          int
	LatencySLOMillis int
}

// ID derives the canonical session id from the session's fields.
func (s ModelSession) ID() ModelSessionID {
	return ModelSessionID(fmt.Sprintf("%s:%s:%d:%dms", s.Framework, s.ModelName, s.Version, s.LatencySLOMillis))
}

// ParseModelSessionID recovers a ModelSession from its canonical id. It
// splits on ":", so it returns false for an id whose framework or model name
// contains ":"; ModelSession.ID neither rejects nor escapes such names.
func ParseModelSessionID(id ModelSessionID) (ModelSession, bool) {
	parts := strings.Split(string(id), ":")
	if len(parts) != 4 {
		return ModelSession{}, false
	}
	version, err := strconv.Atoi(parts[2])
	if err != nil {
		return ModelSession{}, false
	}
	latency := strings.TrimSuffix(parts[3], "ms")
	slo, err := strconv.Atoi(latency)
	if err != nil {
		return ModelSession{}, false
	}
	return ModelSession{
		Framework:        parts[0],
		ModelName:        parts[1],
		Version:          version,
		LatencySLOMillis: slo,
	}, true
}

// ModelInstanceConfig is the batch/latency/memory configuration a backend
// would load to satisfy a given reserved throughput for a session. It
// carries the originating ModelSession's fields so a later re-reservation
// (UpdateThroughput) can re-query the ProfileOracle without the caller
// having to thread the session through separately.
type ModelInstanceConfig struct {
	Session          ModelSessionID
	Framework        string
	ModelName        string
	Version          int
	BatchSize        int
	ReservedRPS      float64
	MemoryMB         uint64
	LatencySLOMillis int
}

func (c ModelInstanceConfig) ModelSession() ModelSession {
	return ModelSession{
		Framework:        c.Framework,
		ModelName:        c.ModelName,
		Version:          c.Version,
		LatencySLOMillis: c.LatencySLOMillis,
	}
}

// ModelInstanceDeclaration is one entry of a static workload slot group,
// loaded from the workload configuration file.
type ModelInstanceDeclaration struct {
	Framework        string
	ModelName        string
	Version          int
	LatencySLAMillis int
	BatchSize        int
}

func (d ModelInstanceDeclaration) Session() ModelSession {
	return ModelSession{
		Framework:        d.Framework,
		ModelName:        d.ModelName,
		Version:          d.Version,
		LatencySLOMillis: d.LatencySLAMillis,
	}
}

// SlotGroup is a list of model-instance declarations hosted by one dedicated
// exclusive backend.
type SlotGroup []ModelInstanceDeclaration

// unassignedWorkload is a pending (session, requested rps) entry awaiting
// backend capacity.
type unassignedWorkload struct {
	Session      ModelSessionID
	RequestedRPS float64
}

// ModelInfo is the value stored in the model table for a given session.
type ModelInfo struct {
	// BackendThroughputs maps backend node id to the RPS currently assigned
	// to it for this session.
	BackendThroughputs map[NodeID]float64
	// Subscribers is the set of frontend node ids subscribed to this session.
	Subscribers map[NodeID]struct{}
	// RPSHistory is a bounded deque of recent per-epoch aggregate RPS
	// measurements, oldest first, length <= historyLen.
	RPSHistory []float64
	// staticSlot is >=0 if this session is backed by a static workload slot
	// group, -1 otherwise. Kept so existence accounting treats a statically
	// backed session as live even with zero subscribers and zero backend
	// instances.
	staticSlot int
}

func newModelInfo() *ModelInfo {
	return &ModelInfo{
		BackendThroughputs: make(map[NodeID]float64),
		Subscribers:        make(map[NodeID]struct{}),
		staticSlot:         -1,
	}
}

// TotalThroughput is the derived sum of BackendThroughputs.
func (m *ModelInfo) TotalThroughput() float64 {
	total := 0.0
	for _, rps := range m.BackendThroughputs {
		total += rps
	}
	return total
}

// pushHistory appends a measurement, truncating to historyLen from the
// front (oldest first) so the deque never exceeds historyLen entries.
func (m *ModelInfo) pushHistory(rps float64, historyLen int) {
	m.RPSHistory = append(m.RPSHistory, rps)
	if overflow := len(m.RPSHistory) - historyLen; overflow > 0 {
		m.RPSHistory = m.RPSHistory[overflow:]
	}
}

// peakHistory returns the maximum of the history entries, used as a robust
// headroom estimate that ignores which sample is most recent.
func (m *ModelInfo) peakHistory() (float64, bool) {
	if len(m.RPSHistory) == 0 {
		return 0, false
	}
	peak := m.RPSHistory[0]
	for _, v := range m.RPSHistory[1:] {
		if v > peak {
			peak = v
		}
	}
	return peak, true
}

// isEmpty reports whether this session is no longer live: no subscribers,
// no backend instances, and no static backing.
func (m *ModelInfo) isEmpty() bool {
	return len(m.Subscribers) == 0 && len(m.BackendThroughputs) == 0 && m.staticSlot < 0
}
