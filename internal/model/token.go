package model

import "time"

// AccessToken is a persisted bearer credential.
// Tokens are keyed by Key and weakly reference their owner by username.
type AccessToken struct {
	Key        string    `json:"key"`
	RefreshKey string    `json:"refresh_key"`
	Expires    time.Time `json:"expires"`
	Username   string    `json:"username"`
}

// IsExpired reports whether the token's recorded expiry is at or before now.
func (t *AccessToken) IsExpired(now time.Time) bool {
	return !now.Before(t.Expires)
}

// Grant returns the client-facing view of the token, without the owner.
func (t *AccessToken) Grant() *TokenGrant {
	return &TokenGrant{
		Key:        t.Key,
		RefreshKey: t.RefreshKey,
		Expires:    t.Expires,
	}
}

// TokenGrant is returned to a client after successful authentication.
type TokenGrant struct {
	Key        string    `json:"key"`
	RefreshKey string    `json:"refresh_key"`
	Expires    time.Time `json:"expires"`
}
