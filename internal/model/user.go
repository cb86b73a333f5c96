// Package model defines domain entities for the application.
package model

// User is a registered account allowed to edit scoreboards.
type User struct {
	Username string `json:"username"`
	PassHash string `json:"passhash"`
}
