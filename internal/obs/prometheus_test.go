package obs

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusBridgeDescribeEmitsAllDescs(t *testing.T) {
	bridge := NewPrometheusBridge(NewMetrics())
	ch := make(chan *prometheus.Desc, 32)
	bridge.Describe(ch)
	close(ch)

	count := 0
	for range ch {
		count++
	}
	assert.Equal(t, 10, count)
}

func TestPrometheusBridgeCollectReflectsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.ObserveAdd(true)
	m.ObserveAdd(false)
	m.ObserveCancel()

	bridge := NewPrometheusBridge(m)
	ch := make(chan prometheus.Metric, 32)
	bridge.Collect(ch)
	close(ch)

	var addTotal, addRejected, cancelTotal float64
	for metric := range ch {
		var out dto.Metric
		require.NoError(t, metric.Write(&out))
		desc := metric.Desc().String()
		switch {
		case contains(desc, "lob_add_total"):
			addTotal = out.GetCounter().GetValue()
		case contains(desc, "lob_add_rejected_total"):
			addRejected = out.GetCounter().GetValue()
		case contains(desc, "lob_cancel_total"):
			cancelTotal = out.GetCounter().GetValue()
		}
	}

	assert.Equal(t, float64(2), addTotal)
	assert.Equal(t, float64(1), addRejected)
	assert.Equal(t, float64(1), cancelTotal)
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
