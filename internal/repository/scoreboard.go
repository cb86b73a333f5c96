package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/scoreboard/scoreboard/internal/kv"
	"github.com/scoreboard/scoreboard/internal/model"
)

// Common errors for scoreboard store operations.
var (
	ErrListingNotFound = errors.New("listing not found")
)

const (
	attrScores = "scores"
	attrTitle  = "title"
)

// ScoreboardStore persists scoreboard documents.
//
// Listing mutations read the whole scoreboard, change one entry of the
// scores map and write the entire map back. The read and the write are
// separate calls, so concurrent writers to the same scoreboard can lose
// each other's changes.
type ScoreboardStore struct {
	table kv.Table
	newID func() string
}

// NewScoreboardStore creates a ScoreboardStore over the given table.
func NewScoreboardStore(table kv.Table) *ScoreboardStore {
	return &ScoreboardStore{
		table: table,
		newID: func() string { return ulid.Make().String() },
	}
}

// GetOrCreate returns the scoreboard, persisting a default one if absent.
func (s *ScoreboardStore) GetOrCreate(ctx context.Context, scoreboardID string) (*model.Scoreboard, error) {
	sb := model.NewScoreboard(scoreboardID)

	err := kv.Load(ctx, s.table, scoreboardID, sb)
	if err == nil {
		if sb.Scores == nil {
			sb.Scores = make(map[string]model.Listing)
		}
		sb.ScoreboardID = scoreboardID
		return sb, nil
	}
	if !errors.Is(err, kv.ErrItemNotFound) {
		return nil, fmt.Errorf("failed to get scoreboard: %w", err)
	}

	sb = model.NewScoreboard(scoreboardID)
	if err := kv.Store(ctx, s.table, scoreboardID, sb); err != nil {
		return nil, fmt.Errorf("failed to create scoreboard: %w", err)
	}

	return sb, nil
}

// AddListing creates a listing with a fresh id. Fields left nil in the patch
// take their defaults.
func (s *ScoreboardStore) AddListing(ctx context.Context, scoreboardID string, fields model.ListingPatch) (*model.Listing, error) {
	listing := model.Listing{
		ListingID: s.newID(),
		Name:      model.DefaultListingName,
		Total:     0,
	}
	fields.Apply(&listing)

	sb, err := s.GetOrCreate(ctx, scoreboardID)
	if err != nil {
		return nil, err
	}

	sb.Scores[listing.ListingID] = listing
	if err := s.writeScores(ctx, scoreboardID, sb.Scores); err != nil {
		return nil, err
	}

	return &listing, nil
}

// UpdateListing merges patch into an existing listing.
// Returns ErrListingNotFound, without writing, if the id is absent.
func (s *ScoreboardStore) UpdateListing(ctx context.Context, scoreboardID, listingID string, patch model.ListingPatch) (*model.Listing, error) {
	sb, err := s.GetOrCreate(ctx, scoreboardID)
	if err != nil {
		return nil, err
	}

	listing, ok := sb.Scores[listingID]
	if !ok {
		return nil, ErrListingNotFound
	}

	patch.Apply(&listing)
	sb.Scores[listingID] = listing

	if err := s.writeScores(ctx, scoreboardID, sb.Scores); err != nil {
		return nil, err
	}

	return &listing, nil
}

// DeleteListing removes a listing. Returns ErrListingNotFound if absent.
func (s *ScoreboardStore) DeleteListing(ctx context.Context, scoreboardID, listingID string) (bool, error) {
	sb, err := s.GetOrCreate(ctx, scoreboardID)
	if err != nil {
		return false, err
	}

	if _, ok := sb.Scores[listingID]; !ok {
		return false, ErrListingNotFound
	}

	delete(sb.Scores, listingID)
	if err := s.writeScores(ctx, scoreboardID, sb.Scores); err != nil {
		return false, err
	}

	return true, nil
}

// UpdateTitle overwrites the title attribute directly.
func (s *ScoreboardStore) UpdateTitle(ctx context.Context, scoreboardID, title string) error {
	if err := kv.Set(ctx, s.table, scoreboardID, attrTitle, title); err != nil {
		return fmt.Errorf("failed to update scoreboard title: %w", err)
	}
	return nil
}

func (s *ScoreboardStore) writeScores(ctx context.Context, scoreboardID string, scores map[string]model.Listing) error {
	if err := kv.Set(ctx, s.table, scoreboardID, attrScores, scores); err != nil {
		return fmt.Errorf("failed to write scores: %w", err)
	}
	return nil
}
