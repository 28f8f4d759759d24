// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Entity labels for mutation counters.
const (
	EntityUser = "user"
	EntityItem = "item"
)

// Recorder captures metric events for the application.
// PrometheusRecorder backs production; InMemoryRecorder backs tests.
type Recorder interface {
	// Entity mutations
	IncEntityCreated(entity string)
	IncEntityUpdated(entity string)
	IncEntityDeleted(entity string)

	// Reports
	ObserveReportDuration(report string, duration time.Duration)
	ObserveSnapshotSize(users, items int)

	// HTTP
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
	IncRateLimited()
}
