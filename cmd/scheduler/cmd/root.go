package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nexus-project/scheduler/internal/scheduler"
)

// RootCmd is the scheduler binary's top-level command; run is the only
// subcommand, matching the single-process deployment this scheduler ships
// as.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "scheduler",
		SilenceUsage: true,
		Short:        "Centralized scheduler for a fleet of inference-serving frontends and backends",
	}
	root.AddCommand(runCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (scheduler.Configuration, error) {
	config := scheduler.DefaultConfiguration()

	v := viper.New()
	v.SetEnvPrefix("SCHEDULER")
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return config, err
	}

	config.Port = v.GetInt("port")
	config.Nthreads = v.GetInt("nthreads")
	config.DbRootDir = v.GetString("db_root_dir")
	config.MetricsPort = v.GetInt("metrics_port")
	config.WorkloadFile = v.GetString("workload_file")
	config.BeaconIntervalSec = uint32(v.GetUint("beacon_interval"))
	config.EpochIntervalSec = uint32(v.GetUint("epoch_interval"))

	if err := scheduler.ValidateConfiguration(config); err != nil {
		return config, err
	}
	return config, nil
}
