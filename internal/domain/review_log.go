package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ReviewLogEntry
var (
	ErrEmptyLogLearnerID = errors.New("review log learner ID cannot be empty")
	ErrEmptyLogItemID    = errors.New("review log item ID cannot be empty")
)

// ReviewLogEntry records a single submitted answer. The log is the substrate
// for streak and trend analytics: a calendar day counts as active when the
// learner has at least one entry on it.
type ReviewLogEntry struct {
	ID         int64     `json:"id"`
	LearnerID  uuid.UUID `json:"learner_id"`
	ItemID     uuid.UUID `json:"item_id"`
	SessionID  uuid.UUID `json:"session_id"`
	Mode       StudyMode `json:"mode"`
	Correct    bool      `json:"correct"`
	AnsweredAt time.Time `json:"answered_at"`
}

// Validate checks if the ReviewLogEntry has valid data.
func (e *ReviewLogEntry) Validate() error {
	if e.LearnerID == uuid.Nil {
		return ErrEmptyLogLearnerID
	}

	if e.ItemID == uuid.Nil {
		return ErrEmptyLogItemID
	}

	return nil
}
