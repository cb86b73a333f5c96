// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/scoreboard/scoreboard/internal/metrics"
	"github.com/scoreboard/scoreboard/internal/model"
	"github.com/scoreboard/scoreboard/internal/repository"
)

// Service errors.
var (
	ErrMissingListingID    = errors.New("listing_id is required")
	ErrMissingTitle        = errors.New("title is required")
	ErrListingNotFound     = errors.New("listing not found")
	ErrInvalidName         = errors.New("invalid listing name")
	ErrInvalidTitle        = errors.New("invalid scoreboard title")
	ErrInvalidScoreboardID = errors.New("invalid scoreboard id")
)

const (
	maxNameLength  = 100
	maxTitleLength = 100
)

// ScoreboardService handles scoreboard business logic.
type ScoreboardService struct {
	store     *repository.ScoreboardStore
	defaultID string
	metrics   metrics.Recorder
}

// NewScoreboardService creates a new ScoreboardService.
// Requests that do not name a scoreboard act on defaultID.
func NewScoreboardService(store *repository.ScoreboardStore, defaultID string, recorder metrics.Recorder) *ScoreboardService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ScoreboardService{
		store:     store,
		defaultID: defaultID,
		metrics:   recorder,
	}
}

// DefaultID returns the scoreboard used when none is named.
func (s *ScoreboardService) DefaultID() string {
	return s.defaultID
}

// ResolveID maps a requested scoreboard id to the stored key.
// Empty selects the default; anything else must be a UUID.
func (s *ScoreboardService) ResolveID(requested string) (string, error) {
	if requested == "" {
		return s.defaultID, nil
	}
	id, err := uuid.Parse(requested)
	if err != nil {
		return "", ErrInvalidScoreboardID
	}
	return id.String(), nil
}

// Get returns the scoreboard, creating the default document on first access.
func (s *ScoreboardService) Get(ctx context.Context, scoreboardID string) (*model.Scoreboard, error) {
	return s.store.GetOrCreate(ctx, scoreboardID)
}

// AddListingInput defines input for adding a listing.
type AddListingInput struct {
	Name  *string
	Total *int
}

// AddListing creates a listing; omitted fields take their defaults.
func (s *ScoreboardService) AddListing(ctx context.Context, scoreboardID string, input AddListingInput) (*model.Listing, error) {
	if input.Name != nil {
		if err := validateName(*input.Name); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	listing, err := s.store.AddListing(ctx, scoreboardID, model.ListingPatch{
		Name:  input.Name,
		Total: input.Total,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveScoresWrite(time.Since(start))
	s.metrics.IncListingCreated()

	return listing, nil
}

// UpdateListing merges the set fields of patch into an existing listing.
func (s *ScoreboardService) UpdateListing(ctx context.Context, scoreboardID, listingID string, patch model.ListingPatch) (*model.Listing, error) {
	if listingID == "" {
		return nil, ErrMissingListingID
	}
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	listing, err := s.store.UpdateListing(ctx, scoreboardID, listingID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	s.metrics.ObserveScoresWrite(time.Since(start))
	s.metrics.IncListingUpdated()

	return listing, nil
}

// DeleteListing removes a listing from the scoreboard.
func (s *ScoreboardService) DeleteListing(ctx context.Context, scoreboardID, listingID string) error {
	if listingID == "" {
		return ErrMissingListingID
	}

	start := time.Now()
	if _, err := s.store.DeleteListing(ctx, scoreboardID, listingID); err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	s.metrics.ObserveScoresWrite(time.Since(start))
	s.metrics.IncListingDeleted()

	return nil
}

// UpdateTitle renames the scoreboard and returns its new state.
func (s *ScoreboardService) UpdateTitle(ctx context.Context, scoreboardID string, title *string) (*model.Scoreboard, error) {
	if title == nil {
		return nil, ErrMissingTitle
	}
	if err := validateText(*title, maxTitleLength, ErrInvalidTitle); err != nil {
		return nil, err
	}

	if err := s.store.UpdateTitle(ctx, scoreboardID, *title); err != nil {
		return nil, err
	}
	s.metrics.IncTitleUpdated()

	sb, err := s.store.GetOrCreate(ctx, scoreboardID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload scoreboard: %w", err)
	}
	return sb, nil
}

func validateName(name string) error {
	return validateText(name, maxNameLength, ErrInvalidName)
}

// validateText rejects blank values, values longer than limit runes and
// values containing control characters.
func validateText(value string, limit int, invalid error) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: must not be blank", invalid)
	}
	if !utf8.ValidString(value) || utf8.RuneCountInString(value) > limit {
		return fmt.Errorf("%w: must be at most %d characters", invalid, limit)
	}
	for _, r := range value {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: must not contain control characters", invalid)
		}
	}
	return nil
}
