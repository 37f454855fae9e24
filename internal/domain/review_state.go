package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DifficultyRating is the learner's self-assessment of how hard a card felt.
type DifficultyRating string

// Possible difficulty rating values
const (
	DifficultyAgain  DifficultyRating = "again"
	DifficultyHard   DifficultyRating = "hard"
	DifficultyMedium DifficultyRating = "medium"
	DifficultyEasy   DifficultyRating = "easy"
)

// IsValid reports whether the rating is one of the closed set of values.
func (d DifficultyRating) IsValid() bool {
	switch d {
	case DifficultyAgain, DifficultyHard, DifficultyMedium, DifficultyEasy:
		return true
	default:
		return false
	}
}

// DefaultEaseFactor is the starting ease factor for a never-reviewed item.
const DefaultEaseFactor = 2.5

// MinEaseFactor is the floor below which the ease factor never drops.
const MinEaseFactor = 1.3

// Common validation errors for ReviewState
var (
	ErrEmptyStateLearnerID = errors.New("review state learner ID cannot be empty")
	ErrEmptyStateItemID    = errors.New("review state item ID cannot be empty")
	ErrInvalidInterval     = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor   = errors.New("ease factor must be at least 1.3")
	ErrInvalidRating       = errors.New("invalid difficulty rating")
)

// ReviewState tracks a learner's spaced repetition history for a single
// vocabulary item. It is the only study-engine state that outlives a session:
// the same record is read and advanced by every session the learner runs.
//
// NextDueAt is nil for a never-reviewed item, which the selector treats as
// "always due". When set it always equals LastReviewedAt plus IntervalDays.
type ReviewState struct {
	LearnerID      uuid.UUID        `json:"learner_id"`
	ItemID         uuid.UUID        `json:"item_id"`
	ReviewCount    int              `json:"review_count"`
	LastReviewedAt *time.Time       `json:"last_reviewed_at,omitempty"`
	NextDueAt      *time.Time       `json:"next_due_at,omitempty"`
	EaseFactor     float64          `json:"ease_factor"`
	IntervalDays   int              `json:"interval_days"`
	LastRating     DifficultyRating `json:"last_rating,omitempty"`
	Favorite       bool             `json:"favorite"`
	Hidden         bool             `json:"hidden"`
	Note           string           `json:"note,omitempty"`
	CorrectCount   int              `json:"correct_count"`
	IncorrectCount int              `json:"incorrect_count"`

	// Version guards concurrent read-modify-write cycles: the store only
	// accepts an upsert whose version matches the stored row.
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReviewState creates review state for a learner/item pair with default
// values. A fresh state has no due date, so the item is immediately eligible.
func NewReviewState(learnerID, itemID uuid.UUID) (*ReviewState, error) {
	now := time.Now().UTC()
	state := &ReviewState{
		LearnerID:  learnerID,
		ItemID:     itemID,
		EaseFactor: DefaultEaseFactor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks if the ReviewState has valid data.
// Returns an error if any field fails validation.
func (s *ReviewState) Validate() error {
	if s.LearnerID == uuid.Nil {
		return ErrEmptyStateLearnerID
	}

	if s.ItemID == uuid.Nil {
		return ErrEmptyStateItemID
	}

	if s.IntervalDays < 0 {
		return ErrInvalidInterval
	}

	if s.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if s.LastRating != "" && !s.LastRating.IsValid() {
		return ErrInvalidRating
	}

	return nil
}

// Reviewed reports whether the item has ever been answered.
func (s *ReviewState) Reviewed() bool {
	return s.ReviewCount > 0
}

// Due reports whether the item is due for review at the given instant.
// A never-reviewed item is always due.
func (s *ReviewState) Due(now time.Time) bool {
	if s.NextDueAt == nil {
		return true
	}
	return !s.NextDueAt.After(now)
}

// OverdueDays returns how many days past due the item is at the given
// instant. Never-reviewed and not-yet-due items return 0.
func (s *ReviewState) OverdueDays(now time.Time) float64 {
	if s.NextDueAt == nil || s.NextDueAt.After(now) {
		return 0
	}
	return now.Sub(*s.NextDueAt).Hours() / 24
}

// Clone returns a deep copy. The scheduling algorithm returns new instances
// rather than mutating shared state.
func (s *ReviewState) Clone() *ReviewState {
	clone := *s
	if s.LastReviewedAt != nil {
		t := *s.LastReviewedAt
		clone.LastReviewedAt = &t
	}
	if s.NextDueAt != nil {
		t := *s.NextDueAt
		clone.NextDueAt = &t
	}
	return &clone
}
