package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncListingCreated is a no-op.
func (n *NoopRecorder) IncListingCreated() {}

// IncListingUpdated is a no-op.
func (n *NoopRecorder) IncListingUpdated() {}

// IncListingDeleted is a no-op.
func (n *NoopRecorder) IncListingDeleted() {}

// IncTitleUpdated is a no-op.
func (n *NoopRecorder) IncTitleUpdated() {}

// ObserveScoresWrite is a no-op.
func (n *NoopRecorder) ObserveScoresWrite(duration time.Duration) {}

// IncAuthAttempt is a no-op.
func (n *NoopRecorder) IncAuthAttempt(result string) {}

// IncTokenIssued is a no-op.
func (n *NoopRecorder) IncTokenIssued() {}

// IncTokenCheck is a no-op.
func (n *NoopRecorder) IncTokenCheck(result string) {}
