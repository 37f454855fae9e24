package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/lexireef/studyhall-api/internal/domain"
)

// ItemFilters narrows a vocabulary catalog query. Zero-valued fields are
// ignored; SearchTerm matches against word, definition and translation.
type ItemFilters struct {
	Topic        string
	Category     string
	Level        domain.Level
	PartOfSpeech string
	SearchTerm   string
	Limit        int
}

// VocabularyStore defines the interface for vocabulary catalog persistence.
// The study engine treats the catalog as read-only; CreateMultiple exists
// for the bulk importer.
type VocabularyStore interface {
	// FindItems returns catalog items matching the filters, ordered by word.
	FindItems(ctx context.Context, filters ItemFilters) ([]*domain.VocabularyItem, error)

	// GetByID retrieves an item by its unique ID.
	// Returns ErrItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error)

	// CreateMultiple saves a batch of items. All items must pass domain
	// validation; the batch is written atomically.
	CreateMultiple(ctx context.Context, items []*domain.VocabularyItem) error
}
