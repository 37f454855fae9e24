package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lexireef/studyhall-api/internal/domain"
)

// DayActivity aggregates one learner's answers on one UTC calendar day.
type DayActivity struct {
	Day     time.Time
	Correct int
	Total   int
}

// Accuracy returns the day's accuracy in [0, 1], or 0 for an empty day.
func (d DayActivity) Accuracy() float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.Correct) / float64(d.Total)
}

// ReviewLogStore defines the interface for the per-answer activity log that
// backs streak and trend analytics.
type ReviewLogStore interface {
	// Record appends one answered-card fact.
	Record(ctx context.Context, entry *domain.ReviewLogEntry) error

	// ActiveDays returns the distinct UTC calendar days on which the
	// learner answered at least one card, ascending.
	ActiveDays(ctx context.Context, learnerID uuid.UUID) ([]time.Time, error)

	// DailyActivity returns per-day answer aggregates for the learner since
	// the given instant, ascending by day.
	DailyActivity(ctx context.Context, learnerID uuid.UUID, since time.Time) ([]DayActivity, error)
}
