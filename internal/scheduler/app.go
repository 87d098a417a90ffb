package scheduler

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_logrus "github.com/grpc-ecosystem/go-grpc-middleware/logging/logrus"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/nexus-project/scheduler/internal/scheduler/workload"
	"github.com/nexus-project/scheduler/pkg/schedulerpb"
)

// Run wires the registry, the gRPC server, the beacon and epoch loops, and
// the Prometheus metrics endpoint, and blocks until ctx is canceled or one
// of them fails.
func Run(ctx context.Context, cfg Configuration) error {
	if err := ValidateConfiguration(cfg); err != nil {
		return err
	}

	var staticWorkloads []SlotGroup
	if cfg.WorkloadFile != "" {
		groups, err := workload.Load(cfg.WorkloadFile)
		if err != nil {
			log.WithError(err).Fatal("failed to load workload file")
		}
		staticWorkloads = toSchedulerSlotGroups(groups)
	}

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	registry := NewRegistryCore(cfg.registryConfig(), staticWorkloads, nil, metrics)

	g, ctx := errgroup.WithContext(ctx)

	grpcServer := newInstrumentedGRPCServer()
	schedulerpb.RegisterSchedulerServer(grpcServer, NewGRPCServer(registry, NewProductionDialer(grpc.WithInsecure())))
	grpc_prometheus.Register(grpcServer)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return err
	}
	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("scheduler gRPC server listening")
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		grpcServer.GracefulStop()
		return nil
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.MetricsPort), Handler: mux}
	g.Go(func() error {
		log.WithField("port", cfg.MetricsPort).Info("scheduler metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	beacon := NewBeaconLoop(registry, time.Duration(cfg.BeaconIntervalSec)*time.Second)
	g.Go(func() error { return beacon.Run(ctx) })

	epoch := NewEpochLoop(registry, time.Duration(cfg.EpochIntervalSec)*time.Second)
	g.Go(func() error { return epoch.Run(ctx) })

	return g.Wait()
}

func newInstrumentedGRPCServer() *grpc.Server {
	logEntry := log.NewEntry(log.StandardLogger())
	return grpc.NewServer(
		grpc_middleware.WithUnaryServerChain(
			grpc_prometheus.UnaryServerInterceptor,
			grpc_logrus.UnaryServerInterceptor(logEntry),
			grpc_recovery.UnaryServerInterceptor(),
		),
	)
}

func toSchedulerSlotGroups(groups []workload.SlotGroup) []SlotGroup {
	out := make([]SlotGroup, 0, len(groups))
	for _, group := range groups {
		converted := make(SlotGroup, 0, len(group))
		for _, decl := range group {
			converted = append(converted, ModelInstanceDeclaration{
				Framework:        decl.Framework,
				ModelName:        decl.ModelName,
				Version:          decl.Version,
				LatencySLAMillis: decl.LatencySLAMillis,
				BatchSize:        decl.BatchSize,
			})
		}
		out = append(out, converted)
	}
	return out
}
