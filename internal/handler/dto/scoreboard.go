package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/scoreboard/scoreboard/internal/model"
)

// FieldError reports a request field whose value has the wrong shape.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// FlexInt decodes from a JSON number or a string holding an integer.
// Browser forms post input values as strings.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return &FieldError{Field: "total", Err: err}
		}
		raw = strings.TrimSpace(s)
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return &FieldError{Field: "total", Err: fmt.Errorf("%q is not an integer", raw)}
	}

	*f = FlexInt(n)
	return nil
}

// Ptr returns the value as *int; nil stays nil.
func (f *FlexInt) Ptr() *int {
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

// TokenFields carries the optional in-body credential and scoreboard selector
// shared by all mutation requests.
type TokenFields struct {
	AccessKey    string `json:"access_key,omitempty"`
	ScoreboardID string `json:"scoreboard_id,omitempty"`
}

// AddListingRequest represents the request body for adding a listing.
type AddListingRequest struct {
	TokenFields
	Name  *string  `json:"name,omitempty"`
	Total *FlexInt `json:"total,omitempty"`
}

// EditListingRequest represents the request body for editing a listing.
type EditListingRequest struct {
	TokenFields
	ListingID string   `json:"listing_id"`
	Name      *string  `json:"name,omitempty"`
	Total     *FlexInt `json:"total,omitempty"`
}

// Patch returns the fields to merge into the stored listing.
func (r *EditListingRequest) Patch() model.ListingPatch {
	return model.ListingPatch{
		Name:  r.Name,
		Total: r.Total.Ptr(),
	}
}

// DeleteListingRequest represents the request body for deleting a listing.
type DeleteListingRequest struct {
	TokenFields
	ListingID string `json:"listing_id"`
}

// EditScoreboardRequest represents the request body for editing a scoreboard.
type EditScoreboardRequest struct {
	TokenFields
	Title *string `json:"title,omitempty"`
}

// ListingResponse represents a listing in API responses.
type ListingResponse struct {
	ListingID string `json:"listing_id"`
	Name      string `json:"name"`
	Total     int    `json:"total"`
}

// ToListingResponse converts a model.Listing to ListingResponse.
func ToListingResponse(l *model.Listing) ListingResponse {
	return ListingResponse{
		ListingID: l.ListingID,
		Name:      l.Name,
		Total:     l.Total,
	}
}

// ScoreboardResponse represents a scoreboard in API responses.
type ScoreboardResponse struct {
	ScoreboardID string                     `json:"scoreboard_id"`
	Title        string                     `json:"title"`
	Scores       map[string]ListingResponse `json:"scores"`
}

// ToScoreboardResponse converts a model.Scoreboard to ScoreboardResponse.
func ToScoreboardResponse(sb *model.Scoreboard) ScoreboardResponse {
	scores := make(map[string]ListingResponse, len(sb.Scores))
	for id, l := range sb.Scores {
		l := l
		scores[id] = ToListingResponse(&l)
	}
	return ScoreboardResponse{
		ScoreboardID: sb.ScoreboardID,
		Title:        sb.Title,
		Scores:       scores,
	}
}

// DeleteListingResponse confirms a deletion.
type DeleteListingResponse struct {
	Deleted   bool   `json:"deleted"`
	ListingID string `json:"listing_id"`
}
