package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/store"
)

// SessionStore is the SQL implementation of store.SessionStore. Update is a
// compare-and-swap on the cursor column, which serializes concurrent answer
// submissions against the same session at the storage layer.
type SessionStore struct {
	db *sqlx.DB
}

var _ store.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a session store backed by the given database.
func NewSessionStore(db *sqlx.DB) *SessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &SessionStore{db: db}
}

// sessionRow mirrors the sessions table. The deck and filters are persisted
// as JSON text so the row shape stays stable as filters evolve.
type sessionRow struct {
	ID                   string        `db:"id"`
	LearnerID            string        `db:"learner_id"`
	Name                 string        `db:"name"`
	SessionType          string        `db:"session_type"`
	StudyMode            string        `db:"study_mode"`
	Filters              string        `db:"filters"`
	Deck                 string        `db:"deck"`
	Cursor               int           `db:"cursor"`
	CorrectCount         int           `db:"correct_count"`
	IncorrectCount       int           `db:"incorrect_count"`
	TotalResponseSeconds float64       `db:"total_response_seconds"`
	HintsUsed            int           `db:"hints_used"`
	Status               string        `db:"status"`
	TimeLimitSeconds     int64         `db:"time_limit_seconds"`
	HasTimeLimit         bool          `db:"has_time_limit"`
	MaxCards             int           `db:"max_cards"`
	CreatedAt            int64         `db:"created_at"`
	CompletedAt          sql.NullInt64 `db:"completed_at"`
}

func toSessionRow(session *domain.Session) (*sessionRow, error) {
	filters, err := json.Marshal(session.Filters)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session filters: %w", err)
	}
	deck, err := json.Marshal(session.Deck)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session deck: %w", err)
	}

	row := &sessionRow{
		ID:                   session.ID.String(),
		LearnerID:            session.LearnerID.String(),
		Name:                 session.Name,
		SessionType:          string(session.Type),
		StudyMode:            string(session.Mode),
		Filters:              string(filters),
		Deck:                 string(deck),
		Cursor:               session.Cursor,
		CorrectCount:         session.Stats.CorrectCount,
		IncorrectCount:       session.Stats.IncorrectCount,
		TotalResponseSeconds: session.Stats.TotalResponseSeconds,
		HintsUsed:            session.Stats.HintsUsed,
		Status:               string(session.Status),
		TimeLimitSeconds:     int64(session.TimeLimit.Seconds()),
		HasTimeLimit:         session.HasTimeLimit,
		MaxCards:             session.MaxCards,
		CreatedAt:            session.CreatedAt.Unix(),
		CompletedAt:          nullUnix(session.CompletedAt),
	}
	return row, nil
}

func (r sessionRow) toDomain() (*domain.Session, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed session id %q", store.ErrInvalidEntity, r.ID)
	}
	learnerID, err := uuid.Parse(r.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed learner id %q", store.ErrInvalidEntity, r.LearnerID)
	}

	var filters domain.SessionFilters
	if err := json.Unmarshal([]byte(r.Filters), &filters); err != nil {
		return nil, fmt.Errorf("%w: malformed session filters", store.ErrInvalidEntity)
	}
	var deck []domain.DeckEntry
	if err := json.Unmarshal([]byte(r.Deck), &deck); err != nil {
		return nil, fmt.Errorf("%w: malformed session deck", store.ErrInvalidEntity)
	}

	session := &domain.Session{
		ID:        id,
		LearnerID: learnerID,
		Name:      r.Name,
		Type:      domain.SessionType(r.SessionType),
		Mode:      domain.StudyMode(r.StudyMode),
		Filters:   filters,
		Deck:      deck,
		Cursor:    r.Cursor,
		Stats: domain.SessionStats{
			CorrectCount:         r.CorrectCount,
			IncorrectCount:       r.IncorrectCount,
			TotalResponseSeconds: r.TotalResponseSeconds,
			HintsUsed:            r.HintsUsed,
		},
		Status:       domain.SessionStatus(r.Status),
		TimeLimit:    time.Duration(r.TimeLimitSeconds) * time.Second,
		HasTimeLimit: r.HasTimeLimit,
		MaxCards:     r.MaxCards,
		CreatedAt:    time.Unix(r.CreatedAt, 0).UTC(),
	}
	if r.CompletedAt.Valid {
		t := time.Unix(r.CompletedAt.Int64, 0).UTC()
		session.CompletedAt = &t
	}
	return session, nil
}

const sessionColumns = `id, learner_id, name, session_type, study_mode, filters,
	deck, cursor, correct_count, incorrect_count, total_response_seconds,
	hints_used, status, time_limit_seconds, has_time_limit, max_cards,
	created_at, completed_at`

// Create implements store.SessionStore.Create.
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	row, err := toSessionRow(session)
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err = s.db.NamedExecContext(ctx, `INSERT INTO sessions (`+sessionColumns+`)
		VALUES (:id, :learner_id, :name, :session_type, :study_mode, :filters,
			:deck, :cursor, :correct_count, :incorrect_count, :total_response_seconds,
			:hints_used, :status, :time_limit_seconds, :has_time_limit, :max_cards,
			:created_at, :completed_at)`, row)
	if err != nil {
		return store.NewStoreError("session", "create", "insert failed", err)
	}
	return nil
}

// GetByID implements store.SessionStore.GetByID.
func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+sessionColumns+" FROM sessions WHERE id = $1", id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, store.NewStoreError("session", "get", "query failed", err)
	}
	return row.toDomain()
}

// Update implements store.SessionStore.Update. The write only lands when the
// stored cursor still equals expectedCursor; otherwise store.ErrConflict is
// returned and the caller must re-read.
func (s *SessionStore) Update(
	ctx context.Context,
	session *domain.Session,
	expectedCursor int,
) error {
	row, err := toSessionRow(session)
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET
		cursor = $1, correct_count = $2, incorrect_count = $3,
		total_response_seconds = $4, hints_used = $5, status = $6,
		completed_at = $7
		WHERE id = $8 AND cursor = $9`,
		row.Cursor,
		row.CorrectCount,
		row.IncorrectCount,
		row.TotalResponseSeconds,
		row.HintsUsed,
		row.Status,
		row.CompletedAt,
		row.ID,
		expectedCursor,
	)
	if err != nil {
		return store.NewStoreError("session", "update", "exec failed", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return store.NewStoreError("session", "update", "rows affected failed", err)
	}
	if affected > 0 {
		return nil
	}

	// Zero rows is either a missing session or a lost cursor race.
	var exists int
	err = s.db.GetContext(ctx, &exists,
		"SELECT 1 FROM sessions WHERE id = $1", row.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrSessionNotFound
	}
	if err != nil {
		return store.NewStoreError("session", "update", "existence check failed", err)
	}
	return store.ErrConflict
}

// Delete implements store.SessionStore.Delete.
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = $1", id.String())
	if err != nil {
		return store.NewStoreError("session", "delete", "exec failed", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return store.NewStoreError("session", "delete", "rows affected failed", err)
	}
	if affected == 0 {
		return store.ErrSessionNotFound
	}
	return nil
}

// MarkAbandonedBefore implements store.SessionStore.MarkAbandonedBefore.
func (s *SessionStore) MarkAbandonedBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions
		SET status = $1, completed_at = $2
		WHERE status = $3 AND created_at < $4`,
		string(domain.SessionStatusAbandoned),
		cutoff.Unix(),
		string(domain.SessionStatusActive),
		cutoff.Unix(),
	)
	if err != nil {
		return 0, store.NewStoreError("session", "sweep", "exec failed", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("session", "sweep", "rows affected failed", err)
	}
	return affected, nil
}
