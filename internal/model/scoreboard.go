package model

// Defaults applied to new scoreboards and listings.
const (
	DefaultScoreboardTitle = "Untitled"
	DefaultListingName     = "Unnamed"
)

// Scoreboard is a titled collection of listings keyed by listing id.
type Scoreboard struct {
	ScoreboardID string             `json:"scoreboard_id"`
	Title        string             `json:"title"`
	Scores       map[string]Listing `json:"scores"`
}

// NewScoreboard returns the default state of a scoreboard.
func NewScoreboard(id string) *Scoreboard {
	return &Scoreboard{
		ScoreboardID: id,
		Title:        DefaultScoreboardTitle,
		Scores:       make(map[string]Listing),
	}
}

// Listing is a single named score entry.
type Listing struct {
	ListingID string `json:"listing_id"`
	Name      string `json:"name"`
	Total     int    `json:"total"`
}

// ListingPatch enumerates the updatable listing fields.
// Nil fields are left unchanged.
type ListingPatch struct {
	Name  *string
	Total *int
}

// IsEmpty reports whether the patch changes nothing.
func (p ListingPatch) IsEmpty() bool {
	return p.Name == nil && p.Total == nil
}

// Apply merges the patch into l.
func (p ListingPatch) Apply(l *Listing) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Total != nil {
		l.Total = *p.Total
	}
}
