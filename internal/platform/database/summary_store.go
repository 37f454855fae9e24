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

// SummaryStore is the SQL implementation of store.SummaryStore.
type SummaryStore struct {
	db *sqlx.DB
}

var _ store.SummaryStore = (*SummaryStore)(nil)

// NewSummaryStore creates a summary store backed by the given database.
func NewSummaryStore(db *sqlx.DB) *SummaryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &SummaryStore{db: db}
}

// summaryRow mirrors the session_summaries table.
type summaryRow struct {
	SessionID       string  `db:"session_id"`
	LearnerID       string  `db:"learner_id"`
	StudyMode       string  `db:"study_mode"`
	TotalCards      int     `db:"total_cards"`
	CorrectCount    int     `db:"correct_count"`
	IncorrectCount  int     `db:"incorrect_count"`
	AccuracyPct     float64 `db:"accuracy_pct"`
	DurationSeconds float64 `db:"duration_seconds"`
	CreatedAt       int64   `db:"created_at"`
	FinalizedAt     int64   `db:"finalized_at"`
}

func (r summaryRow) toDomain() (*domain.SessionSummary, error) {
	sessionID, err := uuid.Parse(r.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed session id %q", store.ErrInvalidEntity, r.SessionID)
	}
	learnerID, err := uuid.Parse(r.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed learner id %q", store.ErrInvalidEntity, r.LearnerID)
	}

	return &domain.SessionSummary{
		SessionID:      sessionID,
		LearnerID:      learnerID,
		StudyMode:      domain.StudyMode(r.StudyMode),
		TotalCards:     r.TotalCards,
		CorrectCount:   r.CorrectCount,
		IncorrectCount: r.IncorrectCount,
		AccuracyPct:    r.AccuracyPct,
		Duration:       time.Duration(r.DurationSeconds * float64(time.Second)),
		CreatedAt:      time.Unix(r.CreatedAt, 0).UTC(),
		FinalizedAt:    time.Unix(r.FinalizedAt, 0).UTC(),
	}, nil
}

// Create implements store.SummaryStore.Create.
func (s *SummaryStore) Create(ctx context.Context, summary *domain.SessionSummary) error {
	if err := summary.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO session_summaries
		(session_id, learner_id, study_mode, total_cards, correct_count,
		 incorrect_count, accuracy_pct, duration_seconds, created_at, finalized_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		summary.SessionID.String(),
		summary.LearnerID.String(),
		string(summary.StudyMode),
		summary.TotalCards,
		summary.CorrectCount,
		summary.IncorrectCount,
		summary.AccuracyPct,
		summary.Duration.Seconds(),
		summary.CreatedAt.Unix(),
		summary.FinalizedAt.Unix(),
	)
	if err != nil {
		return store.NewStoreError("session summary", "create", "insert failed", err)
	}
	return nil
}

// ListByLearner implements store.SummaryStore.ListByLearner.
func (s *SummaryStore) ListByLearner(
	ctx context.Context,
	learnerID uuid.UUID,
	since time.Time,
) ([]*domain.SessionSummary, error) {
	query := `SELECT session_id, learner_id, study_mode, total_cards, correct_count,
		incorrect_count, accuracy_pct, duration_seconds, created_at, finalized_at
		FROM session_summaries WHERE learner_id = $1`
	args := []interface{}{learnerID.String()}
	if !since.IsZero() {
		query += " AND finalized_at >= $2"
		args = append(args, since.Unix())
	}
	query += " ORDER BY finalized_at DESC"

	var rows []summaryRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, store.NewStoreError("session summary", "list", "query failed", err)
	}

	summaries := make([]*domain.SessionSummary, 0, len(rows))
	for _, row := range rows {
		summary, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
