package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncEntityCreated(entity string) {}

func (n *NoopRecorder) IncEntityUpdated(entity string) {}

func (n *NoopRecorder) IncEntityDeleted(entity string) {}

func (n *NoopRecorder) ObserveReportDuration(report string, duration time.Duration) {}

func (n *NoopRecorder) ObserveSnapshotSize(users, items int) {}

func (n *NoopRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {}

func (n *NoopRecorder) IncRateLimited() {}
