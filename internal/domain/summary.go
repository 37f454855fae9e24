package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for SessionSummary
var (
	ErrEmptySummarySessionID = errors.New("session summary session ID cannot be empty")
	ErrEmptySummaryLearnerID = errors.New("session summary learner ID cannot be empty")
	ErrInvalidSummaryCards   = errors.New("session summary card counts cannot be negative")
)

// SessionSummary is the immutable record persisted when a session reaches a
// terminal state. It is an append-only fact consumed by the stats aggregator
// and never mutated after creation.
type SessionSummary struct {
	SessionID      uuid.UUID     `json:"session_id"`
	LearnerID      uuid.UUID     `json:"learner_id"`
	StudyMode      StudyMode     `json:"study_mode"`
	TotalCards     int           `json:"total_cards"`
	CorrectCount   int           `json:"correct_count"`
	IncorrectCount int           `json:"incorrect_count"`
	AccuracyPct    float64       `json:"accuracy_pct"`
	Duration       time.Duration `json:"duration"`

	// CreatedAt is the session's creation time; FinalizedAt is when the
	// terminal transition happened.
	CreatedAt   time.Time `json:"created_at"`
	FinalizedAt time.Time `json:"finalized_at"`
}

// Validate checks if the SessionSummary has valid data.
func (s *SessionSummary) Validate() error {
	if s.SessionID == uuid.Nil {
		return ErrEmptySummarySessionID
	}

	if s.LearnerID == uuid.Nil {
		return ErrEmptySummaryLearnerID
	}

	if s.TotalCards < 0 || s.CorrectCount < 0 || s.IncorrectCount < 0 {
		return ErrInvalidSummaryCards
	}

	return nil
}
