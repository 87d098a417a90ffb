package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nexus-project/scheduler/internal/scheduler"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the scheduler",
		RunE:  runScheduler,
	}
	defaults := scheduler.DefaultConfiguration()
	cmd.Flags().Int("port", defaults.Port, "gRPC bind port")
	cmd.Flags().Int("nthreads", defaults.Nthreads, "Worker pool size (validated; the scheduler does not otherwise read it)")
	cmd.Flags().String("db_root_dir", defaults.DbRootDir, "Database root directory (accepted but unused; all scheduler state is in memory)")
	cmd.Flags().Int("metrics_port", defaults.MetricsPort, "Prometheus /metrics bind port")
	cmd.Flags().String("workload_file", defaults.WorkloadFile, "Path to the static workload configuration file")
	cmd.Flags().Uint32("beacon_interval", defaults.BeaconIntervalSec, "Beacon liveness sweep interval, in seconds")
	cmd.Flags().Uint32("epoch_interval", defaults.EpochIntervalSec, "Epoch re-scheduling interval, in seconds")
	return cmd
}

func runScheduler(cmd *cobra.Command, _ []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return scheduler.Run(context.Background(), config)
}
