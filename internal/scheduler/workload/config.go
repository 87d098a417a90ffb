// Package workload loads the static workload configuration file: an
// ordered list of slot groups, each a list of model-instance declarations
// pinned to one dedicated backend once claimed.
package workload

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// InstanceDeclaration is one model instance within a slot group.
type InstanceDeclaration struct {
	Framework      string `yaml:"framework"`
	ModelName      string `yaml:"model_name"`
	Version        int    `yaml:"version"`
	LatencySLAMillis int  `yaml:"latency_sla_ms"`
	BatchSize      int    `yaml:"batch_size,omitempty"`
}

// SlotGroup is one dedicated-backend group of instance declarations.
type SlotGroup []InstanceDeclaration

// document is the root shape of the workload file: an ordered list of slot
// groups. Slot group index is stable across a load, matching the order the
// document lists them.
type document struct {
	SlotGroups []SlotGroup `yaml:"slot_groups"`
}

// Load reads and parses the workload configuration file at path. A missing
// or malformed file is a fatal startup error for the caller to surface;
// Load itself just reports it.
func Load(path string) ([]SlotGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read workload file %s", path)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse workload file %s", path)
	}
	return doc.SlotGroups, nil
}
