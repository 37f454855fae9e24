// Package importer loads vocabulary catalogs from spreadsheet files. It is
// used by the import-vocab command to seed or extend the catalog; the study
// engine itself never writes catalog rows.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/store"
)

// Column layout of an import sheet. Columns are 0-based row indices after
// excelize flattens each row.
const (
	colWord = iota
	colDefinition
	colTranslation
	colExample
	colExampleTranslation
	colLevel
	colPartOfSpeech
	colTopic
	colCategory
	minColumns = colTranslation + 1
)

// Config controls one import run.
type Config struct {
	FilePath  string
	SheetName string

	// StartRow is 1-based; the default of 2 skips a header row.
	StartRow int

	// DryRun parses and validates without writing.
	DryRun bool
}

// DefaultConfig returns the standard import layout.
func DefaultConfig(filePath string) Config {
	return Config{
		FilePath:  filePath,
		SheetName: "Sheet1",
		StartRow:  2,
	}
}

// Result summarizes one import run.
type Result struct {
	TotalProcessed int
	Imported       int
	Skipped        int
	Errors         []string
}

// Importer reads spreadsheet files into the vocabulary catalog.
type Importer struct {
	items  store.VocabularyStore
	logger *slog.Logger
}

// New creates an importer writing to the given catalog store.
func New(items store.VocabularyStore, logger *slog.Logger) *Importer {
	if items == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("vocabulary store cannot be nil for Importer")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Importer{
		items:  items,
		logger: logger.With(slog.String("component", "importer")),
	}
}

// ImportFile reads the configured sheet and writes all valid rows as one
// batch. Rows that fail validation are reported in the result and skipped;
// the batch is only written when at least one row survives.
func (imp *Importer) ImportFile(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("import file path cannot be empty")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}
	if cfg.StartRow < 1 {
		cfg.StartRow = 1
	}

	f, err := excelize.OpenFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			imp.logger.Warn("failed to close spreadsheet", slog.String("error", cerr.Error()))
		}
	}()

	rows, err := f.GetRows(cfg.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", cfg.SheetName, err)
	}

	result := &Result{}
	batch := make([]*domain.VocabularyItem, 0, len(rows))

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow {
			continue
		}
		if isBlankRow(row) {
			continue
		}
		result.TotalProcessed++

		item, err := parseRow(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		batch = append(batch, item)
	}

	if cfg.DryRun {
		result.Imported = len(batch)
		imp.logger.Info("dry run complete",
			slog.Int("rows", result.TotalProcessed),
			slog.Int("valid", len(batch)),
			slog.Int("skipped", result.Skipped))
		return result, nil
	}

	if len(batch) > 0 {
		if err := imp.items.CreateMultiple(ctx, batch); err != nil {
			return nil, fmt.Errorf("failed to store imported items: %w", err)
		}
		result.Imported = len(batch)
	}

	imp.logger.Info("import complete",
		slog.String("file", cfg.FilePath),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped))

	return result, nil
}

// parseRow converts one spreadsheet row into a validated catalog item.
func parseRow(row []string) (*domain.VocabularyItem, error) {
	if len(row) < minColumns {
		return nil, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(row))
	}

	level := domain.LevelA1
	if raw := cell(row, colLevel); raw != "" {
		level = domain.Level(strings.ToUpper(raw))
		if !level.IsValid() {
			return nil, fmt.Errorf("unknown level %q", raw)
		}
	}

	item, err := domain.NewVocabularyItem(
		cell(row, colWord),
		cell(row, colDefinition),
		cell(row, colTranslation),
		level,
	)
	if err != nil {
		return nil, err
	}

	item.Example = cell(row, colExample)
	item.ExampleTranslation = cell(row, colExampleTranslation)
	item.PartOfSpeech = cell(row, colPartOfSpeech)
	item.Topic = cell(row, colTopic)
	item.Category = cell(row, colCategory)

	return item, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
