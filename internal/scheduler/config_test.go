package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigurationValidates(t *testing.T) {
	cfg := DefaultConfiguration()
	assert.NoError(t, ValidateConfiguration(cfg))
}

func TestValidateConfigurationRejectsZeroPort(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Port = 0
	assert.Error(t, ValidateConfiguration(cfg))
}

func TestValidateConfigurationRejectsSubOneBeaconTimeoutMultiplier(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.BeaconTimeoutMultiplier = 0.5
	assert.Error(t, ValidateConfiguration(cfg))
}

func TestRegistryConfigCopiesTunables(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.OverProvisionSlack = 0.25
	core := cfg.registryConfig()
	assert.Equal(t, 0.25, core.OverProvisionSlack)
	assert.Equal(t, cfg.BeaconIntervalSec, core.BeaconIntervalSec)
}

func TestStripNamespacePrefix(t *testing.T) {
	assert.Equal(t, "Port", stripNamespacePrefix("Configuration.Port"))
	assert.Equal(t, "noprefix", stripNamespacePrefix("noprefix"))
}
