package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ListingsCreated    uint64
	ListingsUpdated    uint64
	ListingsDeleted    uint64
	TitlesUpdated      uint64
	ScoresWriteCount   uint64
	ScoresWriteTotalNs int64
	AuthSuccesses      uint64
	AuthUnknownUsers   uint64
	AuthBadPasswords   uint64
	TokensIssued       uint64
	TokenChecksValid   uint64
	TokenChecksInvalid uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	listingsCreated    uint64
	listingsUpdated    uint64
	listingsDeleted    uint64
	titlesUpdated      uint64
	scoresWriteCount   uint64
	scoresWriteTotalNs int64
	authSuccesses      uint64
	authUnknownUsers   uint64
	authBadPasswords   uint64
	tokensIssued       uint64
	tokenChecksValid   uint64
	tokenChecksInvalid uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		ListingsCreated:    atomic.LoadUint64(&m.listingsCreated),
		ListingsUpdated:    atomic.LoadUint64(&m.listingsUpdated),
		ListingsDeleted:    atomic.LoadUint64(&m.listingsDeleted),
		TitlesUpdated:      atomic.LoadUint64(&m.titlesUpdated),
		ScoresWriteCount:   atomic.LoadUint64(&m.scoresWriteCount),
		ScoresWriteTotalNs: atomic.LoadInt64(&m.scoresWriteTotalNs),
		AuthSuccesses:      atomic.LoadUint64(&m.authSuccesses),
		AuthUnknownUsers:   atomic.LoadUint64(&m.authUnknownUsers),
		AuthBadPasswords:   atomic.LoadUint64(&m.authBadPasswords),
		TokensIssued:       atomic.LoadUint64(&m.tokensIssued),
		TokenChecksValid:   atomic.LoadUint64(&m.tokenChecksValid),
		TokenChecksInvalid: atomic.LoadUint64(&m.tokenChecksInvalid),
	}
}

// IncListingCreated increments listing created counter.
func (m *InMemoryRecorder) IncListingCreated() {
	atomic.AddUint64(&m.listingsCreated, 1)
}

// IncListingUpdated increments listing updated counter.
func (m *InMemoryRecorder) IncListingUpdated() {
	atomic.AddUint64(&m.listingsUpdated, 1)
}

// IncListingDeleted increments listing deleted counter.
func (m *InMemoryRecorder) IncListingDeleted() {
	atomic.AddUint64(&m.listingsDeleted, 1)
}

// IncTitleUpdated increments title updated counter.
func (m *InMemoryRecorder) IncTitleUpdated() {
	atomic.AddUint64(&m.titlesUpdated, 1)
}

// ObserveScoresWrite records a scores read-modify-write duration.
func (m *InMemoryRecorder) ObserveScoresWrite(duration time.Duration) {
	atomic.AddUint64(&m.scoresWriteCount, 1)
	atomic.AddInt64(&m.scoresWriteTotalNs, duration.Nanoseconds())
}

// IncAuthAttempt increments the counter for the given result.
func (m *InMemoryRecorder) IncAuthAttempt(result string) {
	switch result {
	case AuthSuccess:
		atomic.AddUint64(&m.authSuccesses, 1)
	case AuthUnknownUser:
		atomic.AddUint64(&m.authUnknownUsers, 1)
	case AuthBadPassword:
		atomic.AddUint64(&m.authBadPasswords, 1)
	}
}

// IncTokenIssued increments issued token counter.
func (m *InMemoryRecorder) IncTokenIssued() {
	atomic.AddUint64(&m.tokensIssued, 1)
}

// IncTokenCheck increments the counter for the given result.
func (m *InMemoryRecorder) IncTokenCheck(result string) {
	if result == TokenValid {
		atomic.AddUint64(&m.tokenChecksValid, 1)
		return
	}
	atomic.AddUint64(&m.tokenChecksInvalid, 1)
}
