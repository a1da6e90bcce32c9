package telemetry

import (
	"sort"
	"sync"
)

// Logger exposes the logging capability required by core components.
// *logrus.Logger satisfies it directly; tests pass a LoggerFunc.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// NopLogger discards everything written to it.
func NopLogger() Logger {
	return LoggerFunc(func(string, ...any) {})
}

// Metrics exposes the counter surface required by core components.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// NopMetrics discards all recorded values.
func NopMetrics() Metrics {
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) Add(string, uint64)   {}
func (nopMetrics) Store(string, uint64) {}

// MemoryMetrics is a threadsafe in-memory counter store used by the peer
// binary and by tests to observe stall/resend/drop counts.
type MemoryMetrics struct {
	mu     sync.Mutex
	values map[string]uint64
}

func NewMemoryMetrics() *MemoryMetrics {
	return &MemoryMetrics{values: make(map[string]uint64)}
}

func (m *MemoryMetrics) Add(key string, delta uint64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.values[key] += delta
	m.mu.Unlock()
}

func (m *MemoryMetrics) Store(key string, value uint64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
}

// Get returns the current value for a key.
func (m *MemoryMetrics) Get(key string) uint64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// Snapshot copies the counters for diagnostics logging.
func (m *MemoryMetrics) Snapshot() map[string]uint64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uint64, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Keys returns the metric keys in sorted order, for stable log output.
func (m *MemoryMetrics) Keys() []string {
	snapshot := m.Snapshot()
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
