package dto

import (
	"time"

	"github.com/scoreboard/scoreboard/internal/model"
)

// AuthRequest represents login credentials, posted as a form or as JSON.
// Nil fields were absent from the request.
type AuthRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// TokenResponse is the grant returned after a successful login.
type TokenResponse struct {
	Key        string    `json:"key"`
	RefreshKey string    `json:"refresh_key"`
	Expires    time.Time `json:"expires"`
}

// ToTokenResponse converts a model.TokenGrant to TokenResponse.
func ToTokenResponse(g *model.TokenGrant) TokenResponse {
	return TokenResponse{
		Key:        g.Key,
		RefreshKey: g.RefreshKey,
		Expires:    g.Expires,
	}
}
