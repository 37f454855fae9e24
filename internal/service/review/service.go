// Package review exposes per-item review state to the API surface: listing
// progress, flag and note edits, and manual postponement of the next due
// date. Scheduling proper lives in the srs package; this service only
// orchestrates reads and optimistic writes around it.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/domain/srs"
	"github.com/lexireef/studyhall-api/internal/store"
)

// ErrConflict is returned when a concurrent update to the same review state
// kept winning for every retry attempt.
var ErrConflict = errors.New("review state was modified concurrently")

// upsertAttempts bounds the compare-and-swap retry loop.
const upsertAttempts = 3

// Patch is a partial review-state edit. Nil fields are left unchanged.
type Patch struct {
	Favorite *bool
	Hidden   *bool
	Note     *string

	// PostponeDays pushes the next due date forward without counting a
	// review. Must be at least 1 when set.
	PostponeDays *int
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Favorite == nil && p.Hidden == nil && p.Note == nil && p.PostponeDays == nil
}

// Service manages review-state reads and edits outside the session flow.
type Service struct {
	items  store.VocabularyStore
	states store.ReviewStateStore
	srs    srs.Service
	clock  func() time.Time
	logger *slog.Logger
}

// NewService creates a review state service.
func NewService(
	items store.VocabularyStore,
	states store.ReviewStateStore,
	srsService srs.Service,
	clock func() time.Time,
	logger *slog.Logger,
) *Service {
	if items == nil {
		panic("vocabulary store cannot be nil")
	}
	if states == nil {
		panic("review state store cannot be nil")
	}
	if srsService == nil {
		panic("srs service cannot be nil")
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		items:  items,
		states: states,
		srs:    srsService,
		clock:  clock,
		logger: logger.With(slog.String("component", "review_service")),
	}
}

// Get returns the learner's review state for one item. Items never reviewed
// and never flagged yield a fresh default state rather than a not-found
// error, so the API can always render a progress row.
func (s *Service) Get(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
) (*domain.ReviewState, error) {
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	state, err := s.states.Get(ctx, learnerID, itemID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to load review state: %w", err)
	}

	return domain.NewReviewState(learnerID, itemID)
}

// ListProgress returns all of a learner's review states.
func (s *Service) ListProgress(
	ctx context.Context,
	learnerID uuid.UUID,
) ([]*domain.ReviewState, error) {
	states, err := s.states.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review states: %w", err)
	}
	return states, nil
}

// Apply edits the learner's review state for one item, creating the state on
// first touch. Each attempt re-reads the current row, so a lost race retries
// against fresh data instead of overwriting a concurrent writer.
func (s *Service) Apply(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
	patch Patch,
) (*domain.ReviewState, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: patch cannot be empty", domain.ErrValidation)
	}
	if patch.PostponeDays != nil && *patch.PostponeDays < 1 {
		return nil, fmt.Errorf("%w: postpone days must be at least 1", domain.ErrValidation)
	}

	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	now := s.clock()

	for attempt := 0; attempt < upsertAttempts; attempt++ {
		state, err := s.states.Get(ctx, learnerID, itemID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("failed to load review state: %w", err)
			}
			state, err = domain.NewReviewState(learnerID, itemID)
			if err != nil {
				return nil, fmt.Errorf("failed to create review state: %w", err)
			}
		}

		next := state.Clone()
		if patch.Favorite != nil {
			next.Favorite = *patch.Favorite
		}
		if patch.Hidden != nil {
			next.Hidden = *patch.Hidden
		}
		if patch.Note != nil {
			next.Note = *patch.Note
		}
		if patch.PostponeDays != nil {
			next, err = s.srs.PostponeReview(next, *patch.PostponeDays, now)
			if err != nil {
				return nil, fmt.Errorf("failed to postpone review: %w", err)
			}
		}
		next.UpdatedAt = now.UTC()

		err = s.states.Upsert(ctx, next)
		if err == nil {
			s.logger.Debug("review state updated",
				slog.String("learner_id", learnerID.String()),
				slog.String("item_id", itemID.String()),
				slog.Bool("postponed", patch.PostponeDays != nil))
			return next, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("failed to persist review state: %w", err)
		}
	}

	return nil, ErrConflict
}
