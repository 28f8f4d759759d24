package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Created       map[string]uint64
	Updated       map[string]uint64
	Deleted       map[string]uint64
	Reports       map[string]uint64
	HTTPRequests  map[string]uint64 // keyed "METHOD route status"
	LastSnapshot  [2]int            // users, items
	RateLimited   uint64
	ReportTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu           sync.Mutex
	created      map[string]uint64
	updated      map[string]uint64
	deleted      map[string]uint64
	reports      map[string]uint64
	httpRequests map[string]uint64
	lastSnapshot [2]int

	rateLimited   atomic.Uint64
	reportTotalNs atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		created:      map[string]uint64{},
		updated:      map[string]uint64{},
		deleted:      map[string]uint64{},
		reports:      map[string]uint64{},
		httpRequests: map[string]uint64{},
	}
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Created:       copyCounts(m.created),
		Updated:       copyCounts(m.updated),
		Deleted:       copyCounts(m.deleted),
		Reports:       copyCounts(m.reports),
		HTTPRequests:  copyCounts(m.httpRequests),
		LastSnapshot:  m.lastSnapshot,
		RateLimited:   m.rateLimited.Load(),
		ReportTotalNs: m.reportTotalNs.Load(),
	}
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, key string) {
	m.mu.Lock()
	counts[key]++
	m.mu.Unlock()
}

// IncEntityCreated increments the created counter for entity.
func (m *InMemoryRecorder) IncEntityCreated(entity string) { m.inc(m.created, entity) }

// IncEntityUpdated increments the updated counter for entity.
func (m *InMemoryRecorder) IncEntityUpdated(entity string) { m.inc(m.updated, entity) }

// IncEntityDeleted increments the deleted counter for entity.
func (m *InMemoryRecorder) IncEntityDeleted(entity string) { m.inc(m.deleted, entity) }

// ObserveReportDuration counts a generated report.
func (m *InMemoryRecorder) ObserveReportDuration(report string, duration time.Duration) {
	m.inc(m.reports, report)
	m.reportTotalNs.Add(duration.Nanoseconds())
}

// ObserveSnapshotSize keeps the most recent snapshot size.
func (m *InMemoryRecorder) ObserveSnapshotSize(users, items int) {
	m.mu.Lock()
	m.lastSnapshot = [2]int{users, items}
	m.mu.Unlock()
}

// ObserveHTTPRequest counts a served request.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.inc(m.httpRequests, fmt.Sprintf("%s %s %d", method, route, status))
}

// IncRateLimited counts a rejected request.
func (m *InMemoryRecorder) IncRateLimited() {
	m.rateLimited.Add(1)
}
