package importer_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lexireef/studyhall-api/internal/importer"
	"github.com/lexireef/studyhall-api/internal/store"
	"github.com/lexireef/studyhall-api/internal/testutils"
)

// writeSheet builds an xlsx file with a header row followed by the given
// data rows and returns its path.
func writeSheet(t *testing.T, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	header := []string{
		"Word", "Definition", "Translation", "Example", "Example translation",
		"Level", "Part of speech", "Topic", "Category",
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &row))
	}

	path := filepath.Join(t.TempDir(), "vocab.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func newImporter(items store.VocabularyStore) *importer.Importer {
	return importer.New(items, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestImportFile(t *testing.T) {
	t.Parallel()

	t.Run("imports valid rows as one batch", func(t *testing.T) {
		t.Parallel()

		path := writeSheet(t, [][]string{
			{"apple", "a round fruit", "manzana", "I ate an apple", "Comí una manzana", "A1", "noun", "food", "fruit"},
			{"run", "move quickly on foot", "correr", "", "", "A2", "verb", "movement", ""},
		})

		items := testutils.NewFakeVocabularyStore()
		result, err := newImporter(items).ImportFile(context.Background(), importer.DefaultConfig(path))
		require.NoError(t, err)

		assert.Equal(t, 2, result.TotalProcessed)
		assert.Equal(t, 2, result.Imported)
		assert.Zero(t, result.Skipped)
		assert.Empty(t, result.Errors)

		stored, err := items.FindItems(context.Background(), store.ItemFilters{})
		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, "apple", stored[0].Word)
		assert.Equal(t, "manzana", stored[0].Translation)
		assert.Equal(t, "food", stored[0].Topic)
		assert.Equal(t, "verb", stored[1].PartOfSpeech)
	})

	t.Run("skips invalid rows and reports them", func(t *testing.T) {
		t.Parallel()

		path := writeSheet(t, [][]string{
			{"apple", "a round fruit", "manzana", "", "", "A1"},
			{"", "missing the word", "falta", "", "", "A1"},
			{"moon", "the natural satellite", "luna", "", "", "Z9"},
		})

		items := testutils.NewFakeVocabularyStore()
		result, err := newImporter(items).ImportFile(context.Background(), importer.DefaultConfig(path))
		require.NoError(t, err)

		assert.Equal(t, 3, result.TotalProcessed)
		assert.Equal(t, 1, result.Imported)
		assert.Equal(t, 2, result.Skipped)
		require.Len(t, result.Errors, 2)
		assert.Contains(t, result.Errors[1], "unknown level")

		stored, err := items.FindItems(context.Background(), store.ItemFilters{})
		require.NoError(t, err)
		assert.Len(t, stored, 1)
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		t.Parallel()

		path := writeSheet(t, [][]string{
			{"apple", "a round fruit", "manzana"},
		})

		items := testutils.NewFakeVocabularyStore()
		cfg := importer.DefaultConfig(path)
		cfg.DryRun = true

		result, err := newImporter(items).ImportFile(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)

		stored, err := items.FindItems(context.Background(), store.ItemFilters{})
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("defaults the level when the column is empty", func(t *testing.T) {
		t.Parallel()

		path := writeSheet(t, [][]string{
			{"apple", "a round fruit", "manzana"},
		})

		items := testutils.NewFakeVocabularyStore()
		result, err := newImporter(items).ImportFile(context.Background(), importer.DefaultConfig(path))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)

		stored, err := items.FindItems(context.Background(), store.ItemFilters{})
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "A1", string(stored[0].Level))
	})

	t.Run("fails for a missing file", func(t *testing.T) {
		t.Parallel()

		items := testutils.NewFakeVocabularyStore()
		_, err := newImporter(items).ImportFile(
			context.Background(),
			importer.DefaultConfig(filepath.Join(t.TempDir(), "nope.xlsx")),
		)
		assert.Error(t, err)
	})

	t.Run("fails for an unknown sheet", func(t *testing.T) {
		t.Parallel()

		path := writeSheet(t, [][]string{
			{"apple", "a round fruit", "manzana"},
		})

		items := testutils.NewFakeVocabularyStore()
		cfg := importer.DefaultConfig(path)
		cfg.SheetName = "Missing"

		_, err := newImporter(items).ImportFile(context.Background(), cfg)
		assert.Error(t, err)
	})
}
