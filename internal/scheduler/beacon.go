package scheduler

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/clock"
)

// recentExpiryCacheSize bounds the diagnostic record of recently expired
// node ids; it exists for operators inspecting a live process, not for any
// scheduling decision.
const recentExpiryCacheSize = 256

// BeaconLoop runs the periodic liveness sweep: any backend or frontend whose
// last keep-alive is older than the beacon timeout is treated as an implicit
// Unregister, which triggers the usual route-repair flow.
type BeaconLoop struct {
	registry *RegistryCore
	interval time.Duration
	clock    clock.Clock

	// recentlyExpired is a diagnostic-only record of the most recently
	// expired node ids, keyed by id, valued by expiry time. It is not
	// consulted by any scheduling or registration decision.
	recentlyExpired *lru.Cache
}

func NewBeaconLoop(registry *RegistryCore, interval time.Duration) *BeaconLoop {
	cache, err := lru.New(recentExpiryCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size, which recentExpiryCacheSize never is
	}
	return &BeaconLoop{registry: registry, interval: interval, clock: clock.RealClock{}, recentlyExpired: cache}
}

// RecentlyExpired reports the expiry time recorded for id, if the beacon
// loop has evicted it within the diagnostic cache's retention window.
func (b *BeaconLoop) RecentlyExpired(id NodeID) (time.Time, bool) {
	v, ok := b.recentlyExpired.Get(id)
	if !ok {
		return time.Time{}, false
	}
	return v.(time.Time), true
}

// Run blocks until ctx is canceled, firing one sweep per tick. It is not
// cancellable mid-pass: shutdown waits for the in-flight sweep to finish.
func (b *BeaconLoop) Run(ctx context.Context) error {
	ticker := b.clock.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			b.sweep(ctx)
		}
	}
}

func (b *BeaconLoop) sweep(ctx context.Context) {
	now := b.clock.Now()
	timeout := b.registry.beaconTimeout()

	b.registry.mu.Lock()
	var expiredBackends, expiredFrontends []NodeID
	for id, backend := range b.registry.backends {
		if !backend.IsAlive(now, timeout) {
			expiredBackends = append(expiredBackends, id)
		}
	}
	for id, frontend := range b.registry.frontends {
		if !frontend.IsAlive(now, timeout) {
			expiredFrontends = append(expiredFrontends, id)
		}
	}
	b.registry.mu.Unlock()

	for _, id := range expiredBackends {
		if err := b.registry.UnregisterNode(ctx, id); err != nil {
			log.WithError(err).WithField("node_id", id).Warn("beacon sweep: failed to unregister expired backend")
			continue
		}
		b.recentlyExpired.Add(id, now)
		if b.registry.metrics != nil {
			b.registry.metrics.NodesExpired.WithLabelValues("backend").Inc()
		}
		log.WithField("node_id", id).Warn("backend beacon expired, unregistering")
	}
	for _, id := range expiredFrontends {
		if err := b.registry.UnregisterNode(ctx, id); err != nil {
			log.WithError(err).WithField("node_id", id).Warn("beacon sweep: failed to unregister expired frontend")
			continue
		}
		b.recentlyExpired.Add(id, now)
		if b.registry.metrics != nil {
			b.registry.metrics.NodesExpired.WithLabelValues("frontend").Inc()
		}
		log.WithField("node_id", id).Warn("frontend beacon expired, unregistering")
	}
}
