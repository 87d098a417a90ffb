package scheduler

import (
	"strings"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// Configuration is the process-level configuration for the scheduler
// binary: RegistryCore's tunables plus the collaborator launcher's own
// surface (bind port, worker pool size, workload file path).
type Configuration struct {
	Port         int    `validate:"required"`
	Nthreads     int    `validate:"required"`
	DbRootDir    string
	MetricsPort  int
	WorkloadFile string

	BeaconIntervalSec      uint32  `validate:"required"`
	EpochIntervalSec       uint32  `validate:"required"`
	HistoryLen             int     `validate:"required"`
	OverProvisionSlack     float64 `validate:"gte=0"`
	UnderProvisionSlack    float64 `validate:"gte=0"`
	BeaconTimeoutMultiplier float64 `validate:"gte=1"`
}

// DefaultConfiguration seeds every field DefaultConfig() would give
// RegistryCore, plus defensible process-level defaults.
func DefaultConfiguration() Configuration {
	core := DefaultConfig()
	return Configuration{
		Port:                    8080,
		Nthreads:                8,
		MetricsPort:             9090,
		BeaconIntervalSec:       core.BeaconIntervalSec,
		EpochIntervalSec:        core.EpochIntervalSec,
		HistoryLen:              core.HistoryLen,
		OverProvisionSlack:      core.OverProvisionSlack,
		UnderProvisionSlack:     core.UnderProvisionSlack,
		BeaconTimeoutMultiplier: core.BeaconTimeoutMultiplier,
	}
}

func (c Configuration) registryConfig() Config {
	return Config{
		BeaconIntervalSec:       c.BeaconIntervalSec,
		EpochIntervalSec:        c.EpochIntervalSec,
		HistoryLen:              c.HistoryLen,
		OverProvisionSlack:      c.OverProvisionSlack,
		UnderProvisionSlack:     c.UnderProvisionSlack,
		BeaconTimeoutMultiplier: c.BeaconTimeoutMultiplier,
	}
}

// ValidateConfiguration runs struct-tag validation and logs each violation
// the way the teacher's config validator does, one line per offending
// field.
func ValidateConfiguration(cfg Configuration) error {
	if err := validator.New().Struct(cfg); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			log.Errorf("config error: field %s has invalid value %v: %s", stripNamespacePrefix(fieldErr.Namespace()), fieldErr.Value(), fieldErr.Tag())
		}
		return err
	}
	return nil
}

func stripNamespacePrefix(s string) string {
	if idx := strings.Index(s, "."); idx != -1 {
		return s[idx+1:]
	}
	return s
}
