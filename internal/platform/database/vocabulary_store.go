package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/store"
)

// VocabularyStore is the SQL implementation of store.VocabularyStore.
type VocabularyStore struct {
	db *sqlx.DB
}

var _ store.VocabularyStore = (*VocabularyStore)(nil)

// NewVocabularyStore creates a vocabulary store backed by the given database.
func NewVocabularyStore(db *sqlx.DB) *VocabularyStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &VocabularyStore{db: db}
}

// itemRow mirrors the vocabulary_items table.
type itemRow struct {
	ID           string `db:"id"`
	Word         string `db:"word"`
	Definition   string `db:"definition"`
	Translation  string `db:"translation"`
	Example      string `db:"example"`
	ExampleTr    string `db:"example_tr"`
	Level        string `db:"level"`
	PartOfSpeech string `db:"part_of_speech"`
	Topic        string `db:"topic"`
	Category     string `db:"category"`
	CreatedAt    int64  `db:"created_at"`
}

func (r itemRow) toDomain() (*domain.VocabularyItem, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed item id %q", store.ErrInvalidEntity, r.ID)
	}
	return &domain.VocabularyItem{
		ID:                 id,
		Word:               r.Word,
		Definition:         r.Definition,
		Translation:        r.Translation,
		Example:            r.Example,
		ExampleTranslation: r.ExampleTr,
		Level:              domain.Level(r.Level),
		PartOfSpeech:       r.PartOfSpeech,
		Topic:              r.Topic,
		Category:           r.Category,
		CreatedAt:          time.Unix(r.CreatedAt, 0).UTC(),
	}, nil
}

const itemColumns = `id, word, definition, translation, example, example_tr,
	level, part_of_speech, topic, category, created_at`

// FindItems implements store.VocabularyStore.FindItems.
func (s *VocabularyStore) FindItems(
	ctx context.Context,
	filters store.ItemFilters,
) ([]*domain.VocabularyItem, error) {
	var (
		conds []string
		args  []interface{}
	)
	addCond := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, column+" = $"+strconv.Itoa(len(args)))
	}
	addCond("topic", filters.Topic)
	addCond("category", filters.Category)
	addCond("level", string(filters.Level))
	addCond("part_of_speech", filters.PartOfSpeech)

	if filters.SearchTerm != "" {
		args = append(args, "%"+strings.ToLower(filters.SearchTerm)+"%")
		n := strconv.Itoa(len(args))
		conds = append(conds,
			"(LOWER(word) LIKE $"+n+" OR LOWER(definition) LIKE $"+n+" OR LOWER(translation) LIKE $"+n+")")
	}

	query := "SELECT " + itemColumns + " FROM vocabulary_items"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY word"
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	var rows []itemRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, store.NewStoreError("vocabulary item", "find", "query failed", err)
	}

	items := make([]*domain.VocabularyItem, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// GetByID implements store.VocabularyStore.GetByID.
func (s *VocabularyStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.VocabularyItem, error) {
	var row itemRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+itemColumns+" FROM vocabulary_items WHERE id = $1", id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrItemNotFound
		}
		return nil, store.NewStoreError("vocabulary item", "get", "query failed", err)
	}
	return row.toDomain()
}

// CreateMultiple implements store.VocabularyStore.CreateMultiple. All items
// are inserted in one transaction; any failure rolls the batch back.
func (s *VocabularyStore) CreateMultiple(
	ctx context.Context,
	items []*domain.VocabularyItem,
) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return store.NewStoreError("vocabulary item", "create", "validation failed", err)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return store.NewStoreError("vocabulary item", "create", "begin transaction failed", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insert = `INSERT INTO vocabulary_items
		(id, word, definition, translation, example, example_tr,
		 level, part_of_speech, topic, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	for _, item := range items {
		_, err := tx.ExecContext(ctx, insert,
			item.ID.String(),
			item.Word,
			item.Definition,
			item.Translation,
			item.Example,
			item.ExampleTranslation,
			string(item.Level),
			item.PartOfSpeech,
			item.Topic,
			item.Category,
			item.CreatedAt.Unix(),
		)
		if err != nil {
			return store.NewStoreError("vocabulary item", "create", "insert failed", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return store.NewStoreError("vocabulary item", "create", "commit failed", err)
	}
	return nil
}
