package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionType categorizes why a session was started.
type SessionType string

// Possible session type values
const (
	SessionTypeDailyReview      SessionType = "daily_review"
	SessionTypeTopicFocus       SessionType = "topic_focus"
	SessionTypeLevelProgression SessionType = "level_progression"
	SessionTypeQuick            SessionType = "quick"
)

// IsValid reports whether the session type is one of the closed set of values.
func (t SessionType) IsValid() bool {
	switch t {
	case SessionTypeDailyReview, SessionTypeTopicFocus, SessionTypeLevelProgression, SessionTypeQuick:
		return true
	default:
		return false
	}
}

// StudyMode determines how cards are prompted and graded.
type StudyMode string

// Possible study mode values. StudyModeMixed is only valid at the session
// level; each deck entry of a mixed session carries one of the concrete modes.
const (
	StudyModeReview   StudyMode = "review"
	StudyModePractice StudyMode = "practice"
	StudyModeTest     StudyMode = "test"
	StudyModeWrite    StudyMode = "write"
	StudyModeListen   StudyMode = "listen"
	StudyModeMixed    StudyMode = "mixed"
)

// ConcreteStudyModes lists the modes a deck entry can carry, in the cyclic
// assignment order used when building a mixed-mode deck.
var ConcreteStudyModes = []StudyMode{
	StudyModeReview,
	StudyModePractice,
	StudyModeTest,
	StudyModeWrite,
	StudyModeListen,
}

// IsValid reports whether the study mode is one of the closed set of values.
func (m StudyMode) IsValid() bool {
	switch m {
	case StudyModeReview, StudyModePractice, StudyModeTest,
		StudyModeWrite, StudyModeListen, StudyModeMixed:
		return true
	default:
		return false
	}
}

// IsConcrete reports whether the mode can be graded directly, i.e. is any
// valid mode other than mixed.
func (m StudyMode) IsConcrete() bool {
	return m.IsValid() && m != StudyModeMixed
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

// Possible session status values
const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusAbandoned SessionStatus = "abandoned"
	SessionStatusExpired   SessionStatus = "expired"
)

// IsTerminal reports whether the status permits no further transitions.
func (s SessionStatus) IsTerminal() bool {
	switch s {
	case SessionStatusCompleted, SessionStatusAbandoned, SessionStatusExpired:
		return true
	default:
		return false
	}
}

// SessionFilters narrows which catalog items a session's deck draws from.
type SessionFilters struct {
	Topic            string             `json:"topic,omitempty"`
	Category         string             `json:"category,omitempty"`
	Level            Level              `json:"level,omitempty"`
	PartOfSpeech     string             `json:"part_of_speech,omitempty"`
	DifficultyFilter []DifficultyRating `json:"difficulty_filter,omitempty"`
	IncludeReviewed  bool               `json:"include_reviewed"`
	IncludeFavorites bool               `json:"include_favorites"`
	SmartSelection   bool               `json:"smart_selection"`
}

// DeckEntry is one position in a session's deck: an item reference plus the
// effective study mode it will be graded under. For non-mixed sessions every
// entry carries the session's mode; mixed sessions assign modes at selection
// time.
type DeckEntry struct {
	ItemID uuid.UUID `json:"item_id"`
	Mode   StudyMode `json:"mode"`
}

// SessionStats accumulates per-session answer outcomes.
type SessionStats struct {
	CorrectCount         int     `json:"correct_count"`
	IncorrectCount       int     `json:"incorrect_count"`
	TotalResponseSeconds float64 `json:"total_response_seconds"`
	HintsUsed            int     `json:"hints_used"`
}

// Answered returns the number of answers folded into the stats.
func (s SessionStats) Answered() int {
	return s.CorrectCount + s.IncorrectCount
}

// Common validation errors for Session
var (
	ErrEmptySessionLearnerID = errors.New("session learner ID cannot be empty")
	ErrInvalidSessionType    = errors.New("invalid session type")
	ErrInvalidStudyMode      = errors.New("invalid study mode")
	ErrInvalidMaxCards       = errors.New("max cards must be greater than 0")
	ErrInvalidTimeLimit      = errors.New("time limit cannot be negative")
	ErrInvalidCursor         = errors.New("cursor must be between 0 and deck length")
	ErrEmptyDeck             = errors.New("session deck cannot be empty")
	ErrInvalidTransition     = errors.New("invalid session status transition")
)

// Session is one study run: a deck fixed at creation, a cursor walking it
// forward, live stats, and a monotonic lifecycle status.
type Session struct {
	ID        uuid.UUID     `json:"id"`
	LearnerID uuid.UUID     `json:"learner_id"`
	Name      string        `json:"name"`
	Type      SessionType   `json:"type"`
	Mode      StudyMode     `json:"mode"`
	Filters   SessionFilters `json:"filters"`

	// Deck is immutable once created; Cursor only moves forward.
	Deck   []DeckEntry  `json:"deck"`
	Cursor int          `json:"cursor"`
	Stats  SessionStats `json:"stats"`

	Status SessionStatus `json:"status"`

	// TimeLimit of zero with HasTimeLimit set means the session expires on
	// first access; HasTimeLimit unset means no limit.
	TimeLimit    time.Duration `json:"time_limit"`
	HasTimeLimit bool          `json:"has_time_limit"`

	MaxCards    int        `json:"max_cards"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewSession creates an active session positioned at the first deck entry.
func NewSession(
	learnerID uuid.UUID,
	name string,
	sessionType SessionType,
	mode StudyMode,
	filters SessionFilters,
	deck []DeckEntry,
	maxCards int,
) (*Session, error) {
	session := &Session{
		ID:        uuid.New(),
		LearnerID: learnerID,
		Name:      name,
		Type:      sessionType,
		Mode:      mode,
		Filters:   filters,
		Deck:      deck,
		Status:    SessionStatusActive,
		MaxCards:  maxCards,
		CreatedAt: time.Now().UTC(),
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the Session has valid data.
// Returns an error if any field fails validation.
func (s *Session) Validate() error {
	if s.LearnerID == uuid.Nil {
		return ErrEmptySessionLearnerID
	}

	if !s.Type.IsValid() {
		return ErrInvalidSessionType
	}

	if !s.Mode.IsValid() {
		return ErrInvalidStudyMode
	}

	if s.MaxCards <= 0 {
		return ErrInvalidMaxCards
	}

	if s.TimeLimit < 0 {
		return ErrInvalidTimeLimit
	}

	if len(s.Deck) == 0 {
		return ErrEmptyDeck
	}

	if s.Cursor < 0 || s.Cursor > len(s.Deck) {
		return ErrInvalidCursor
	}

	return nil
}

// CurrentEntry returns the deck entry under the cursor, or false when the
// deck is exhausted.
func (s *Session) CurrentEntry() (DeckEntry, bool) {
	if s.Cursor >= len(s.Deck) {
		return DeckEntry{}, false
	}
	return s.Deck[s.Cursor], true
}

// Exhausted reports whether the cursor has walked past the last deck entry.
func (s *Session) Exhausted() bool {
	return s.Cursor >= len(s.Deck)
}

// TimeLimitElapsed reports whether the configured time limit has passed at
// the given instant. Sessions without a limit never elapse.
func (s *Session) TimeLimitElapsed(now time.Time) bool {
	if !s.HasTimeLimit {
		return false
	}
	return !now.Before(s.CreatedAt.Add(s.TimeLimit))
}

// TransitionTo moves the session to the given status. Transitions out of a
// terminal status are rejected, which keeps the lifecycle monotonic.
func (s *Session) TransitionTo(status SessionStatus, now time.Time) error {
	if s.Status.IsTerminal() {
		return ErrInvalidTransition
	}

	s.Status = status
	if status.IsTerminal() {
		t := now.UTC()
		s.CompletedAt = &t
	}
	return nil
}
