package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/store"
)

// ReviewStateStore is the SQL implementation of store.ReviewStateStore. The
// version column implements the optimistic-locking contract: an upsert only
// lands when the caller's version matches the stored row.
type ReviewStateStore struct {
	db *sqlx.DB
}

var _ store.ReviewStateStore = (*ReviewStateStore)(nil)

// NewReviewStateStore creates a review state store backed by the given
// database.
func NewReviewStateStore(db *sqlx.DB) *ReviewStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &ReviewStateStore{db: db}
}

// reviewStateRow mirrors the review_states table.
type reviewStateRow struct {
	LearnerID      string        `db:"learner_id"`
	ItemID         string        `db:"item_id"`
	ReviewCount    int           `db:"review_count"`
	LastReviewedAt sql.NullInt64 `db:"last_reviewed_at"`
	NextDueAt      sql.NullInt64 `db:"next_due_at"`
	EaseFactor     float64       `db:"ease_factor"`
	IntervalDays   int           `db:"interval_days"`
	LastRating     string        `db:"last_rating"`
	Favorite       bool          `db:"favorite"`
	Hidden         bool          `db:"hidden"`
	Note           string        `db:"note"`
	CorrectCount   int           `db:"correct_count"`
	IncorrectCount int           `db:"incorrect_count"`
	Version        int           `db:"version"`
	CreatedAt      int64         `db:"created_at"`
	UpdatedAt      int64         `db:"updated_at"`
}

func (r reviewStateRow) toDomain() (*domain.ReviewState, error) {
	learnerID, err := uuid.Parse(r.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed learner id %q", store.ErrInvalidEntity, r.LearnerID)
	}
	itemID, err := uuid.Parse(r.ItemID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed item id %q", store.ErrInvalidEntity, r.ItemID)
	}

	state := &domain.ReviewState{
		LearnerID:      learnerID,
		ItemID:         itemID,
		ReviewCount:    r.ReviewCount,
		EaseFactor:     r.EaseFactor,
		IntervalDays:   r.IntervalDays,
		LastRating:     domain.DifficultyRating(r.LastRating),
		Favorite:       r.Favorite,
		Hidden:         r.Hidden,
		Note:           r.Note,
		CorrectCount:   r.CorrectCount,
		IncorrectCount: r.IncorrectCount,
		Version:        r.Version,
		CreatedAt:      time.Unix(r.CreatedAt, 0).UTC(),
		UpdatedAt:      time.Unix(r.UpdatedAt, 0).UTC(),
	}
	if r.LastReviewedAt.Valid {
		t := time.Unix(r.LastReviewedAt.Int64, 0).UTC()
		state.LastReviewedAt = &t
	}
	if r.NextDueAt.Valid {
		t := time.Unix(r.NextDueAt.Int64, 0).UTC()
		state.NextDueAt = &t
	}
	return state, nil
}

func nullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

const reviewStateColumns = `learner_id, item_id, review_count, last_reviewed_at,
	next_due_at, ease_factor, interval_days, last_rating, favorite, hidden,
	note, correct_count, incorrect_count, version, created_at, updated_at`

// Get implements store.ReviewStateStore.Get.
func (s *ReviewStateStore) Get(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
) (*domain.ReviewState, error) {
	var row reviewStateRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+reviewStateColumns+" FROM review_states WHERE learner_id = $1 AND item_id = $2",
		learnerID.String(), itemID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewStateNotFound
		}
		return nil, store.NewStoreError("review state", "get", "query failed", err)
	}
	return row.toDomain()
}

// ListByLearner implements store.ReviewStateStore.ListByLearner.
func (s *ReviewStateStore) ListByLearner(
	ctx context.Context,
	learnerID uuid.UUID,
) ([]*domain.ReviewState, error) {
	var rows []reviewStateRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT "+reviewStateColumns+" FROM review_states WHERE learner_id = $1 ORDER BY item_id",
		learnerID.String())
	if err != nil {
		return nil, store.NewStoreError("review state", "list", "query failed", err)
	}

	states := make([]*domain.ReviewState, 0, len(rows))
	for _, row := range rows {
		state, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

// Upsert implements store.ReviewStateStore.Upsert. When the caller's version
// matches the stored row the write lands and the version advances; a
// mismatch, or an insert racing an existing row, returns store.ErrConflict.
// On success the caller's state carries the new version.
func (s *ReviewStateStore) Upsert(ctx context.Context, state *domain.ReviewState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	if state.Version > 0 {
		res, err := s.db.ExecContext(ctx, `UPDATE review_states SET
			review_count = $1, last_reviewed_at = $2, next_due_at = $3,
			ease_factor = $4, interval_days = $5, last_rating = $6,
			favorite = $7, hidden = $8, note = $9,
			correct_count = $10, incorrect_count = $11,
			version = $12, updated_at = $13
			WHERE learner_id = $14 AND item_id = $15 AND version = $16`,
			state.ReviewCount,
			nullUnix(state.LastReviewedAt),
			nullUnix(state.NextDueAt),
			state.EaseFactor,
			state.IntervalDays,
			string(state.LastRating),
			state.Favorite,
			state.Hidden,
			state.Note,
			state.CorrectCount,
			state.IncorrectCount,
			state.Version+1,
			state.UpdatedAt.Unix(),
			state.LearnerID.String(),
			state.ItemID.String(),
			state.Version,
		)
		if err != nil {
			return store.NewStoreError("review state", "update", "exec failed", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return store.NewStoreError("review state", "update", "rows affected failed", err)
		}
		if affected == 0 {
			return store.ErrConflict
		}
		state.Version++
		return nil
	}

	// First write for this learner/item pair. ON CONFLICT DO NOTHING is
	// accepted by both dialects; zero rows means another writer got there
	// first and the caller must re-read.
	res, err := s.db.ExecContext(ctx, `INSERT INTO review_states
		(`+reviewStateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (learner_id, item_id) DO NOTHING`,
		state.LearnerID.String(),
		state.ItemID.String(),
		state.ReviewCount,
		nullUnix(state.LastReviewedAt),
		nullUnix(state.NextDueAt),
		state.EaseFactor,
		state.IntervalDays,
		string(state.LastRating),
		state.Favorite,
		state.Hidden,
		state.Note,
		state.CorrectCount,
		state.IncorrectCount,
		1,
		state.CreatedAt.Unix(),
		state.UpdatedAt.Unix(),
	)
	if err != nil {
		return store.NewStoreError("review state", "insert", "exec failed", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return store.NewStoreError("review state", "insert", "rows affected failed", err)
	}
	if affected == 0 {
		return store.ErrConflict
	}
	state.Version = 1
	return nil
}
