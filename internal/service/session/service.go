// Package session owns the study session lifecycle: deck creation via the
// selector, cursor advancement, answer grading side effects, and terminal
// transitions. All mutations to a single session are serialized through a
// per-session lock.
package session

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/domain/srs"
	"github.com/lexireef/studyhall-api/internal/service/grading"
	"github.com/lexireef/studyhall-api/internal/service/selection"
	"github.com/lexireef/studyhall-api/internal/service/stats"
	"github.com/lexireef/studyhall-api/internal/store"
)

// DefaultMaxCards is the deck size used when the request does not specify one.
const DefaultMaxCards = 20

// stateUpsertAttempts bounds the compare-and-swap retry loop for review
// state writes racing with another session on the same item.
const stateUpsertAttempts = 3

// Clock supplies "now". Injected so tests control time-limit expiry.
type Clock func() time.Time

// Service manages study sessions.
type Service struct {
	sessions        store.SessionStore
	items           store.VocabularyStore
	states          store.ReviewStateStore
	summaries       store.SummaryStore
	log             store.ReviewLogStore
	selector        *selection.Selector
	srs             srs.Service
	defaultMaxCards int
	clock           Clock
	locks           *keyedMutex
	logger          *slog.Logger
}

// NewService creates a session service. A defaultMaxCards of 0 falls back to
// DefaultMaxCards.
func NewService(
	sessions store.SessionStore,
	items store.VocabularyStore,
	states store.ReviewStateStore,
	summaries store.SummaryStore,
	reviewLog store.ReviewLogStore,
	selector *selection.Selector,
	srsService srs.Service,
	defaultMaxCards int,
	clock Clock,
	logger *slog.Logger,
) *Service {
	if sessions == nil || items == nil || states == nil || summaries == nil || reviewLog == nil {
		panic("session service stores cannot be nil")
	}
	if selector == nil {
		panic("selector cannot be nil")
	}
	if srsService == nil {
		panic("srs service cannot be nil")
	}
	if defaultMaxCards < 0 {
		panic("default max cards cannot be negative")
	}
	if defaultMaxCards == 0 {
		defaultMaxCards = DefaultMaxCards
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		sessions:        sessions,
		items:           items,
		states:          states,
		summaries:       summaries,
		log:             reviewLog,
		selector:        selector,
		srs:             srsService,
		defaultMaxCards: defaultMaxCards,
		clock:           clock,
		locks:           newKeyedMutex(),
		logger:          logger.With(slog.String("component", "session_service")),
	}
}

// CreateSessionInput carries a validated create request.
type CreateSessionInput struct {
	Name    string
	Type    domain.SessionType
	Mode    domain.StudyMode
	Filters domain.SessionFilters

	// MaxCards of 0 means "use the default"; negative values are rejected.
	MaxCards int

	// TimeLimitMinutes of nil means no limit; zero is a valid (instantly
	// expiring) limit.
	TimeLimitMinutes *int
}

// CreateSession builds a deck and persists a new active session.
// Returns selection.ErrEmptyDeck when no items satisfy the filters.
func (s *Service) CreateSession(
	ctx context.Context,
	learnerID uuid.UUID,
	input CreateSessionInput,
) (*domain.Session, error) {
	if !input.Type.IsValid() {
		return nil, domain.ErrInvalidSessionType
	}
	if !input.Mode.IsValid() {
		return nil, domain.ErrInvalidStudyMode
	}
	if input.MaxCards < 0 {
		return nil, domain.ErrInvalidMaxCards
	}
	if input.TimeLimitMinutes != nil && *input.TimeLimitMinutes < 0 {
		return nil, domain.ErrInvalidTimeLimit
	}

	maxCards := input.MaxCards
	if maxCards == 0 {
		maxCards = s.defaultMaxCards
	}

	now := s.clock()
	sessionID := uuid.New()

	deck, err := s.selector.BuildDeck(ctx, selection.Request{
		LearnerID: learnerID,
		Filters:   input.Filters,
		Mode:      input.Mode,
		MaxCards:  maxCards,
		Seed:      shuffleSeed(sessionID),
		Now:       now,
	})
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		ID:        sessionID,
		LearnerID: learnerID,
		Name:      input.Name,
		Type:      input.Type,
		Mode:      input.Mode,
		Filters:   input.Filters,
		Deck:      deck,
		Status:    domain.SessionStatusActive,
		MaxCards:  maxCards,
		CreatedAt: now.UTC(),
	}
	if input.TimeLimitMinutes != nil {
		session.HasTimeLimit = true
		session.TimeLimit = time.Duration(*input.TimeLimitMinutes) * time.Minute
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("session created",
		slog.String("session_id", session.ID.String()),
		slog.String("learner_id", learnerID.String()),
		slog.String("mode", string(session.Mode)),
		slog.Int("deck_size", len(deck)))

	return session, nil
}

// CurrentCard is the card under a session's cursor with its position.
type CurrentCard struct {
	Item       *domain.VocabularyItem
	Mode       domain.StudyMode
	CardIndex  int
	TotalCards int
}

// GetCurrentCard returns the card under the cursor. A session whose time
// limit has elapsed is transitioned to expired and reported as such.
func (s *Service) GetCurrentCard(
	ctx context.Context,
	sessionID, learnerID uuid.UUID,
) (*CurrentCard, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.getOwned(ctx, sessionID, learnerID)
	if err != nil {
		return nil, err
	}

	if err := s.requireActive(ctx, session); err != nil {
		return nil, err
	}

	entry, ok := session.CurrentEntry()
	if !ok {
		return nil, ErrSessionClosed
	}

	item, err := s.items.GetByID(ctx, entry.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current card: %w", err)
	}

	return &CurrentCard{
		Item:       item,
		Mode:       entry.Mode,
		CardIndex:  session.Cursor,
		TotalCards: len(session.Deck),
	}, nil
}

// SubmitAnswerInput carries one answer submission.
type SubmitAnswerInput struct {
	ItemID              uuid.UUID
	Response            string
	ResponseTimeSeconds float64
	HintsUsed           int
	ConfidenceLevel     int
	Rating              domain.DifficultyRating
}

// SubmitResult is the outcome of one answer submission.
type SubmitResult struct {
	Correct           bool
	ConfidenceScore   float64
	SessionComplete   bool
	NextCardAvailable bool
	Stats             domain.SessionStats
}

// SubmitAnswer grades the response against the current card, applies the
// review-state update, folds the result into the session stats and advances
// the cursor. Reaching the end of the deck, or answering after the time
// limit elapsed, completes the session and finalizes its summary.
//
// The review-state write happens before the cursor advance and is never
// rolled back: an answer's scheduling effect holds even if the session
// update loses a race or the session is later deleted.
func (s *Service) SubmitAnswer(
	ctx context.Context,
	sessionID, learnerID uuid.UUID,
	input SubmitAnswerInput,
) (*SubmitResult, error) {
	if !input.Rating.IsValid() {
		return nil, domain.ErrInvalidRating
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.getOwned(ctx, sessionID, learnerID)
	if err != nil {
		return nil, err
	}

	if session.Status != domain.SessionStatusActive {
		return nil, s.terminalError(session)
	}

	entry, ok := session.CurrentEntry()
	if !ok {
		return nil, ErrSessionClosed
	}

	if input.ItemID != entry.ItemID {
		return nil, ErrCardMismatch
	}

	item, err := s.items.GetByID(ctx, entry.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load card for grading: %w", err)
	}

	result, err := grading.Evaluate(item, entry.Mode, grading.Answer{
		Response:            input.Response,
		ResponseTimeSeconds: input.ResponseTimeSeconds,
		HintsUsed:           input.HintsUsed,
		ConfidenceLevel:     input.ConfidenceLevel,
	})
	if err != nil {
		return nil, err
	}

	now := s.clock()

	if err := s.applyReviewUpdate(ctx, learnerID, entry.ItemID, input.Rating, result.Correct, now); err != nil {
		return nil, err
	}

	logEntry := &domain.ReviewLogEntry{
		LearnerID:  learnerID,
		ItemID:     entry.ItemID,
		SessionID:  session.ID,
		Mode:       entry.Mode,
		Correct:    result.Correct,
		AnsweredAt: now.UTC(),
	}
	if err := s.log.Record(ctx, logEntry); err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	expectedCursor := session.Cursor
	session.Cursor++
	if result.Correct {
		session.Stats.CorrectCount++
	} else {
		session.Stats.IncorrectCount++
	}
	session.Stats.TotalResponseSeconds += input.ResponseTimeSeconds
	session.Stats.HintsUsed += input.HintsUsed

	complete := session.Exhausted() || session.TimeLimitElapsed(now)
	if complete {
		if err := session.TransitionTo(domain.SessionStatusCompleted, now); err != nil {
			return nil, fmt.Errorf("failed to complete session: %w", err)
		}
	}

	if err := s.sessions.Update(ctx, session, expectedCursor); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if complete {
		if err := s.finalize(ctx, session, now); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("answer submitted",
		slog.String("session_id", session.ID.String()),
		slog.String("item_id", entry.ItemID.String()),
		slog.Bool("correct", result.Correct),
		slog.Float64("confidence_score", result.ConfidenceScore),
		slog.Int("cursor", session.Cursor),
		slog.Bool("complete", complete))

	return &SubmitResult{
		Correct:           result.Correct,
		ConfidenceScore:   result.ConfidenceScore,
		SessionComplete:   complete,
		NextCardAvailable: !complete && !session.Exhausted(),
		Stats:             session.Stats,
	}, nil
}

// CompleteSession ends an active session early and finalizes its summary.
func (s *Service) CompleteSession(
	ctx context.Context,
	sessionID, learnerID uuid.UUID,
) (*domain.Session, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.getOwned(ctx, sessionID, learnerID)
	if err != nil {
		return nil, err
	}

	if session.Status != domain.SessionStatusActive {
		return nil, s.terminalError(session)
	}

	now := s.clock()
	if err := session.TransitionTo(domain.SessionStatusCompleted, now); err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}

	if err := s.sessions.Update(ctx, session, session.Cursor); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if err := s.finalize(ctx, session, now); err != nil {
		return nil, err
	}

	s.logger.Info("session completed",
		slog.String("session_id", session.ID.String()),
		slog.Int("answered", session.Stats.Answered()))

	return session, nil
}

// DeleteSession removes a session in any state. Review-state updates already
// written by submitted answers are untouched.
func (s *Service) DeleteSession(ctx context.Context, sessionID, learnerID uuid.UUID) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	if _, err := s.getOwned(ctx, sessionID, learnerID); err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// getOwned loads a session and verifies ownership. Missing sessions and
// sessions owned by another learner are both reported as not found.
func (s *Service) getOwned(
	ctx context.Context,
	sessionID, learnerID uuid.UUID,
) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.LearnerID != learnerID {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// requireActive rejects terminal sessions, and lazily expires an active
// session whose time limit has elapsed. Expiry is detected on access; there
// is no timer.
func (s *Service) requireActive(ctx context.Context, session *domain.Session) error {
	if session.Status != domain.SessionStatusActive {
		return s.terminalError(session)
	}

	now := s.clock()
	if !session.TimeLimitElapsed(now) {
		return nil
	}

	cursor := session.Cursor
	if err := session.TransitionTo(domain.SessionStatusExpired, now); err != nil {
		return fmt.Errorf("failed to expire session: %w", err)
	}
	if err := s.sessions.Update(ctx, session, cursor); err != nil && !errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("failed to persist session expiry: %w", err)
	}

	if err := s.finalize(ctx, session, now); err != nil {
		return err
	}

	s.logger.Info("session expired",
		slog.String("session_id", session.ID.String()))

	return ErrSessionExpired
}

func (s *Service) terminalError(session *domain.Session) error {
	if session.Status == domain.SessionStatusExpired {
		return ErrSessionExpired
	}
	return ErrSessionClosed
}

// applyReviewUpdate advances the item's review state with a bounded
// compare-and-swap retry, so two sessions touching the same item for the
// same learner never interleave a read-modify-write.
func (s *Service) applyReviewUpdate(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
	rating domain.DifficultyRating,
	correct bool,
	now time.Time,
) error {
	for attempt := 0; attempt < stateUpsertAttempts; attempt++ {
		state, err := s.states.Get(ctx, learnerID, itemID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("failed to load review state: %w", err)
			}
			state, err = domain.NewReviewState(learnerID, itemID)
			if err != nil {
				return fmt.Errorf("failed to create review state: %w", err)
			}
		}

		next, err := s.srs.CalculateNextReview(state, rating, correct, now)
		if err != nil {
			return fmt.Errorf("failed to calculate next review: %w", err)
		}

		err = s.states.Upsert(ctx, next)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("failed to persist review state: %w", err)
		}
	}

	return fmt.Errorf("failed to persist review state: %w", store.ErrConflict)
}

// finalize derives the immutable summary for a terminal session.
func (s *Service) finalize(ctx context.Context, session *domain.Session, now time.Time) error {
	summary := stats.Finalize(session, now)
	if err := s.summaries.Create(ctx, summary); err != nil {
		return fmt.Errorf("failed to persist session summary: %w", err)
	}
	return nil
}

// shuffleSeed derives the deterministic shuffle seed from a session ID: the
// big-endian value of the UUID's first eight bytes. This rule is part of the
// selection contract, not an implementation detail.
func shuffleSeed(sessionID uuid.UUID) uint64 {
	return binary.BigEndian.Uint64(sessionID[:8])
}
