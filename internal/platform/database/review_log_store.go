package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/store"
)

// ReviewLogStore is the SQL implementation of store.ReviewLogStore. Day
// bucketing happens in SQL by integer division of the unix timestamp, which
// both dialects evaluate identically.
type ReviewLogStore struct {
	db *sqlx.DB
}

var _ store.ReviewLogStore = (*ReviewLogStore)(nil)

// NewReviewLogStore creates a review log store backed by the given database.
func NewReviewLogStore(db *sqlx.DB) *ReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &ReviewLogStore{db: db}
}

// Record implements store.ReviewLogStore.Record.
func (s *ReviewLogStore) Record(ctx context.Context, entry *domain.ReviewLogEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO review_log
		(learner_id, item_id, session_id, study_mode, correct, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.LearnerID.String(),
		entry.ItemID.String(),
		entry.SessionID.String(),
		string(entry.Mode),
		entry.Correct,
		entry.AnsweredAt.Unix(),
	)
	if err != nil {
		return store.NewStoreError("review log", "record", "insert failed", err)
	}
	return nil
}

// ActiveDays implements store.ReviewLogStore.ActiveDays.
func (s *ReviewLogStore) ActiveDays(
	ctx context.Context,
	learnerID uuid.UUID,
) ([]time.Time, error) {
	var epochs []int64
	err := s.db.SelectContext(ctx, &epochs, `SELECT DISTINCT
		(answered_at / 86400) * 86400 AS day_epoch
		FROM review_log WHERE learner_id = $1 ORDER BY day_epoch`,
		learnerID.String())
	if err != nil {
		return nil, store.NewStoreError("review log", "active days", "query failed", err)
	}

	days := make([]time.Time, 0, len(epochs))
	for _, epoch := range epochs {
		days = append(days, time.Unix(epoch, 0).UTC())
	}
	return days, nil
}

// DailyActivity implements store.ReviewLogStore.DailyActivity.
func (s *ReviewLogStore) DailyActivity(
	ctx context.Context,
	learnerID uuid.UUID,
	since time.Time,
) ([]store.DayActivity, error) {
	type dayRow struct {
		DayEpoch int64 `db:"day_epoch"`
		Correct  int   `db:"correct"`
		Total    int   `db:"total"`
	}

	var rows []dayRow
	err := s.db.SelectContext(ctx, &rows, `SELECT
		(answered_at / 86400) * 86400 AS day_epoch,
		SUM(CASE WHEN correct THEN 1 ELSE 0 END) AS correct,
		COUNT(*) AS total
		FROM review_log
		WHERE learner_id = $1 AND answered_at >= $2
		GROUP BY day_epoch ORDER BY day_epoch`,
		learnerID.String(), since.Unix())
	if err != nil {
		return nil, store.NewStoreError("review log", "daily activity", "query failed", err)
	}

	out := make([]store.DayActivity, 0, len(rows))
	for _, row := range rows {
		out = append(out, store.DayActivity{
			Day:     time.Unix(row.DayEpoch, 0).UTC(),
			Correct: row.Correct,
			Total:   row.Total,
		})
	}
	return out, nil
}
