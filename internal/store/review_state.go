package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/lexireef/studyhall-api/internal/domain"
)

// ReviewStateStore defines the interface for per-(learner, item) review
// state persistence.
//
// Upsert is compare-and-swap: the write only succeeds when the stored row's
// version matches state.Version, and the stored version is incremented on
// success. Two sessions advancing the same item for the same learner can
// therefore never interleave a read-modify-write silently; the loser gets
// ErrConflict and must re-read.
type ReviewStateStore interface {
	// Get retrieves the review state for a learner/item pair.
	// Returns ErrReviewStateNotFound if the pair has no state yet.
	Get(ctx context.Context, learnerID, itemID uuid.UUID) (*domain.ReviewState, error)

	// ListByLearner returns all review states for a learner. Used by the
	// card selector to score candidates in one round trip.
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.ReviewState, error)

	// Upsert inserts or updates a review state with optimistic locking.
	// Returns ErrConflict when the stored version does not match.
	Upsert(ctx context.Context, state *domain.ReviewState) error
}
