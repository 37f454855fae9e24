package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Level represents a CEFR proficiency level.
type Level string

// Supported CEFR levels, ordered from beginner to mastery.
const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

// IsValid reports whether the level is one of the supported CEFR levels.
func (l Level) IsValid() bool {
	switch l {
	case LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2:
		return true
	default:
		return false
	}
}

// Common validation errors for VocabularyItem
var (
	ErrItemWordEmpty       = errors.New("vocabulary item word cannot be empty")
	ErrItemDefinitionEmpty = errors.New("vocabulary item definition cannot be empty")
	ErrItemInvalidLevel    = errors.New("vocabulary item level is not a valid CEFR level")
)

// VocabularyItem is a single catalog entry a learner can study.
// Items are produced by the content pipeline and are read-only to the
// study engine: sessions reference items by ID and never mutate them.
type VocabularyItem struct {
	ID                 uuid.UUID `json:"id"`
	Word               string    `json:"word"`
	Definition         string    `json:"definition"`
	Translation        string    `json:"translation"`
	Example            string    `json:"example"`
	ExampleTranslation string    `json:"example_translation"`
	Level              Level     `json:"level"`
	PartOfSpeech       string    `json:"part_of_speech"`
	Topic              string    `json:"topic"`
	Category           string    `json:"category"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewVocabularyItem creates a catalog entry with a fresh ID.
func NewVocabularyItem(
	word, definition, translation string,
	level Level,
) (*VocabularyItem, error) {
	item := &VocabularyItem{
		ID:          uuid.New(),
		Word:        word,
		Definition:  definition,
		Translation: translation,
		Level:       level,
		CreatedAt:   time.Now().UTC(),
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the VocabularyItem has valid data.
// Returns an error if any field fails validation.
func (v *VocabularyItem) Validate() error {
	if v.Word == "" {
		return ErrItemWordEmpty
	}

	if v.Definition == "" {
		return ErrItemDefinitionEmpty
	}

	if !v.Level.IsValid() {
		return ErrItemInvalidLevel
	}

	return nil
}
