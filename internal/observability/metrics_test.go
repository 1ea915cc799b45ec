package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.Inc(CounterQueued)
	m.Inc(CounterQueued)
	m.RecordRequest("/tickets", "POST", 201, 5*time.Millisecond)
	m.RecordError("/tickets/:id/hold", "POST", "INVALID_STATE")

	assert.EqualValues(t, 2, m.Count(CounterQueued))
	m.SetGauge("queue_depth", 4)
	m.SetGauge("queue_depth", 3)

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.Engine[CounterQueued])
	assert.EqualValues(t, 1, snap.Requests["/tickets|POST|201"])
	assert.EqualValues(t, 1, snap.Errors["/tickets/:id/hold|POST|INVALID_STATE"])
	assert.EqualValues(t, 5, snap.RequestLatency["/tickets|POST"])
	assert.EqualValues(t, 3, snap.Gauges["queue_depth"])

	snap.Engine[CounterQueued] = 100
	assert.EqualValues(t, 2, m.Count(CounterQueued))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(CounterHeld)
	m.RecordRequest("/", "GET", 200, 0)
	assert.Zero(t, m.Count(CounterHeld))
	assert.Empty(t, m.Snapshot().Engine)
}
