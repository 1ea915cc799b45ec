package observability

import (
	"strconv"
	"sync"
	"time"
)

// Engine counter names.
const (
	CounterSubmitted     = "submitted"
	CounterAssigned      = "assigned"
	CounterQueued        = "queued"
	CounterHeld          = "held"
	CounterResumed       = "resumed"
	CounterCompleted     = "completed"
	CounterDrained       = "drained"
	CounterDrainFailures = "drain_failures"
	CounterPreempted     = "preempted"
	CounterWorkUpdates   = "work_updates"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu             sync.Mutex
	requestCount   map[string]int64
	errorCount     map[string]int64
	engineCount    map[string]int64
	gauges         map[string]int64
	requestLatency map[string]time.Duration
}

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	Requests       map[string]int64 `json:"requests"`
	Errors         map[string]int64 `json:"errors"`
	Engine         map[string]int64 `json:"engine"`
	Gauges         map[string]int64 `json:"gauges"`
	RequestLatency map[string]int64 `json:"request_latency_ms_total"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:   make(map[string]int64),
		errorCount:     make(map[string]int64),
		engineCount:    make(map[string]int64),
		gauges:         make(map[string]int64),
		requestLatency: make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requestLatency[path+"|"+method] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Inc bumps an engine counter.
func (m *Metrics) Inc(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engineCount[name]++
}

// SetGauge overwrites a point-in-time value such as queue depth.
func (m *Metrics) SetGauge(name string, value int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

// Count reads one engine counter.
func (m *Metrics) Count(name string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engineCount[name]
}

// Snapshot copies every counter.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		Requests:       map[string]int64{},
		Errors:         map[string]int64{},
		Engine:         map[string]int64{},
		Gauges:         map[string]int64{},
		RequestLatency: map[string]int64{},
	}
	if m == nil {
		return s
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requestCount {
		s.Requests[k] = v
	}
	for k, v := range m.errorCount {
		s.Errors[k] = v
	}
	for k, v := range m.engineCount {
		s.Engine[k] = v
	}
	for k, v := range m.gauges {
		s.Gauges[k] = v
	}
	for k, v := range m.requestLatency {
		s.RequestLatency[k] = v.Milliseconds()
	}
	return s
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
