// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Auth attempt results.
const (
	AuthSuccess     = "success"
	AuthUnknownUser = "unknown_user"
	AuthBadPassword = "bad_password"
)

// Token check results.
const (
	TokenValid   = "valid"
	TokenInvalid = "invalid"
)

// Recorder captures metric events for the application.
type Recorder interface {
	// Scoreboard metrics
	IncListingCreated()
	IncListingUpdated()
	IncListingDeleted()
	IncTitleUpdated()
	ObserveScoresWrite(duration time.Duration)

	// Auth metrics
	IncAuthAttempt(result string) // result: AuthSuccess, AuthUnknownUser, AuthBadPassword
	IncTokenIssued()
	IncTokenCheck(result string) // result: TokenValid, TokenInvalid
}
