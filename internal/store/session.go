package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lexireef/studyhall-api/internal/domain"
)

// SessionStore defines the interface for session persistence.
type SessionStore interface {
	// Create saves a new session.
	Create(ctx context.Context, session *domain.Session) error

	// GetByID retrieves a session by its unique ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// Update persists cursor, stats and status changes. The write is
	// compare-and-swap on the cursor: it only succeeds when the stored
	// cursor equals expectedCursor, otherwise ErrConflict is returned.
	// Combined with the service's per-session lock this prevents lost
	// updates from concurrent answer submissions.
	Update(ctx context.Context, session *domain.Session, expectedCursor int) error

	// Delete removes a session record.
	// Returns ErrSessionNotFound if the session does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// MarkAbandonedBefore transitions every active session created before
	// the cutoff to abandoned, returning how many rows changed. Used by the
	// administrative sweep.
	MarkAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
