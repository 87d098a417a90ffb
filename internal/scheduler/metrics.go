package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsPrefix = "nexus_scheduler_"

// Metrics bundles the Prometheus instrumentation the registry and its
// periodic loops update. NewRegistryCore replaces a nil *Metrics with
// NewMetrics(nil), whose collectors are not registered anywhere.
type Metrics struct {
	BackendsRegistered   prometheus.Counter
	FrontendsRegistered  prometheus.Counter
	NodesExpired         *prometheus.CounterVec
	EpochCyclesTotal     prometheus.Counter
	EpochDurationSeconds prometheus.Histogram
	UnassignedWorkloads  prometheus.Gauge
	RouteDispatchErrors  prometheus.Counter
	BackendPushErrors    *prometheus.CounterVec
}

// NewMetrics constructs the scheduler's metrics, registering them against
// reg. A nil reg leaves the returned collectors unregistered, which tests
// rely on to avoid colliding on the global default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BackendsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "backends_registered_total",
			Help: "Number of backend nodes that have registered since process start.",
		}),
		FrontendsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "frontends_registered_total",
			Help: "Number of frontend nodes that have registered since process start.",
		}),
		NodesExpired: factory.NewCounterVec(prometheus.CounterOpts{
			Name: metricsPrefix + "nodes_expired_total",
			Help: "Number of nodes evicted by the beacon loop for missing their liveness deadline, by role.",
		}, []string{"role"}),
		EpochCyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "epoch_cycles_total",
			Help: "Number of epoch re-scheduling passes completed.",
		}),
		EpochDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    metricsPrefix + "epoch_duration_seconds",
			Help:    "Wall-clock duration of one epoch re-scheduling pass.",
			Buckets: prometheus.DefBuckets,
		}),
		UnassignedWorkloads: factory.NewGauge(prometheus.GaugeOpts{
			Name: metricsPrefix + "unassigned_workloads",
			Help: "Number of workloads currently awaiting backend capacity.",
		}),
		RouteDispatchErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "route_dispatch_errors_total",
			Help: "Number of failed route push RPCs to frontends.",
		}),
		BackendPushErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: metricsPrefix + "backend_push_errors_total",
			Help: "Number of failed load/unload/update RPCs to backends, by kind.",
		}, []string{"kind"}),
	}
}
