package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleProfileOracle_TighterSLOCostsMoreCapacity(t *testing.T) {
	oracle := NewSimpleProfileOracle()
	baseline := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: oracle.BaselineSLOMillis}
	tight := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: oracle.BaselineSLOMillis / 2}

	baselineCfg, ok := oracle.Prepare("a100", baseline, 10)
	require.True(t, ok)
	tightCfg, ok := oracle.Prepare("a100", tight, 10)
	require.True(t, ok)

	assert.InDelta(t, 10.0, baselineCfg.ReservedRPS, 1e-9)
	assert.Greater(t, tightCfg.ReservedRPS, baselineCfg.ReservedRPS)
	assert.Less(t, tightCfg.BatchSize, baselineCfg.BatchSize)
}

func TestSimpleProfileOracle_LooserSLONeverDiscounts(t *testing.T) {
	oracle := NewSimpleProfileOracle()
	loose := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: oracle.BaselineSLOMillis * 4}

	cfg, ok := oracle.Prepare("a100", loose, 10)
	require.True(t, ok)
	assert.InDelta(t, 10.0, cfg.ReservedRPS, 1e-9)
	assert.Equal(t, oracle.MaxBatchSize, cfg.BatchSize)
}

func TestSimpleProfileOracle_RejectsNonPositiveRateOrSLO(t *testing.T) {
	oracle := NewSimpleProfileOracle()
	sess := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: 100}

	_, ok := oracle.Prepare("a100", sess, 0)
	assert.False(t, ok)

	zeroSLO := ModelSession{Framework: "onnx", ModelName: "resnet", Version: 1, LatencySLOMillis: 0}
	_, ok = oracle.Prepare("a100", zeroSLO, 10)
	assert.False(t, ok)
}
