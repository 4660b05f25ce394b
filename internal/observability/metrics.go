package observability

import (
	"sync"
	"time"
)

// Metrics accumulates in-process counters for the helpdesk HTTP surface:
// request totals and cumulative latency per route/status, and failure totals
// per domain error code. The service is a single process over file-backed
// collections, so mutex-guarded maps suffice; nothing is exported to an
// external scraper.
type Metrics struct {
	mu       sync.Mutex
	requests map[requestKey]*requestStats
	errors   map[string]int64
}

type requestKey struct {
	route  string
	method string
	status int
}

type requestStats struct {
	count   int64
	latency time.Duration
}

// NewMetrics returns an empty counter set.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[requestKey]*requestStats),
		errors:   make(map[string]int64),
	}
}

// RecordRequest counts one completed request with its final status and latency.
func (m *Metrics) RecordRequest(route, method string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	key := requestKey{route: route, method: method, status: status}
	m.mu.Lock()
	defer m.mu.Unlock()
	stats, ok := m.requests[key]
	if !ok {
		stats = &requestStats{}
		m.requests[key] = stats
	}
	stats.count++
	stats.latency += latency
}

// RecordError counts one request rejected with the given domain error code,
// e.g. VALIDATION_FAILED or FORBIDDEN.
func (m *Metrics) RecordError(code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[code]++
}

// RequestCount returns how many requests completed with the given route,
// method and status.
func (m *Metrics) RequestCount(route, method string, status int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stats, ok := m.requests[requestKey{route: route, method: method, status: status}]; ok {
		return stats.count
	}
	return 0
}

// ErrorCount returns how many requests failed with the given domain error code.
func (m *Metrics) ErrorCount(code string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[code]
}
