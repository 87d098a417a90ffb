package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelSessionIDRoundTrip(t *testing.T) {
	sess := ModelSession{Framework: "onnx", ModelName: "resnet50", Version: 3, LatencySLOMillis: 50}
	id := sess.ID()
	assert.Equal(t, ModelSessionID("onnx:resnet50:3:50ms"), id)

	parsed, ok := ParseModelSessionID(id)
	require.True(t, ok)
	assert.Equal(t, sess, parsed)
}

func TestParseModelSessionIDRejectsMalformed(t *testing.T) {
	_, ok := ParseModelSessionID("not-enough-parts")
	assert.False(t, ok)

	_, ok = ParseModelSessionID("onnx:resnet:notanumber:50ms")
	assert.False(t, ok)

	_, ok = ParseModelSessionID("onnx:resnet:3:notanumber")
	assert.False(t, ok)
}

func TestModelInfoPushHistoryTruncates(t *testing.T) {
	info := newModelInfo()
	for _, v := range []float64{1, 2, 3, 4, 5} {
		info.pushHistory(v, 3)
	}
	assert.Equal(t, []float64{3, 4, 5}, info.RPSHistory)

	peak, ok := info.peakHistory()
	require.True(t, ok)
	assert.Equal(t, 5.0, peak)
}

func TestModelInfoPeakHistoryEmpty(t *testing.T) {
	info := newModelInfo()
	_, ok := info.peakHistory()
	assert.False(t, ok)
}

func TestModelInfoIsEmpty(t *testing.T) {
	info := newModelInfo()
	assert.True(t, info.isEmpty())

	info.Subscribers[NodeID(1)] = struct{}{}
	assert.False(t, info.isEmpty())
	delete(info.Subscribers, NodeID(1))

	info.BackendThroughputs[NodeID(2)] = 10
	assert.False(t, info.isEmpty())
	delete(info.BackendThroughputs, NodeID(2))

	info.staticSlot = 0
	assert.False(t, info.isEmpty())
}

func TestModelInfoTotalThroughput(t *testing.T) {
	info := newModelInfo()
	info.BackendThroughputs[NodeID(1)] = 10
	info.BackendThroughputs[NodeID(2)] = 15
	assert.Equal(t, 25.0, info.TotalThroughput())
}
