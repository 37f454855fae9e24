package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lexireef/studyhall-api/internal/domain"
)

// SummaryStore defines the interface for session summary persistence.
// Summaries are append-only facts; there is no update or delete.
type SummaryStore interface {
	// Create saves a finalized session summary.
	Create(ctx context.Context, summary *domain.SessionSummary) error

	// ListByLearner returns a learner's summaries finalized at or after
	// since, newest first. A zero since returns everything.
	ListByLearner(ctx context.Context, learnerID uuid.UUID, since time.Time) ([]*domain.SessionSummary, error)
}
