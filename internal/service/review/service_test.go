package review_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/domain/srs"
	"github.com/lexireef/studyhall-api/internal/service/review"
	"github.com/lexireef/studyhall-api/internal/store"
	"github.com/lexireef/studyhall-api/internal/testutils"
)

var reviewNow = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*review.Service, *testutils.FakeVocabularyStore, *testutils.FakeReviewStateStore) {
	t.Helper()

	items := testutils.NewFakeVocabularyStore()
	states := testutils.NewFakeReviewStateStore()
	svc := review.NewService(items, states, srs.NewDefaultService(),
		func() time.Time { return reviewNow }, nil)
	return svc, items, states
}

func addItem(t *testing.T, items *testutils.FakeVocabularyStore) *domain.VocabularyItem {
	t.Helper()

	item, err := domain.NewVocabularyItem("lighthouse", "a tower with a warning light", "faro", domain.LevelB1)
	require.NoError(t, err)
	items.Add(item)
	return item
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestGet(t *testing.T) {
	t.Parallel()

	t.Run("untouched item yields a default state", func(t *testing.T) {
		t.Parallel()

		svc, items, _ := newService(t)
		item := addItem(t, items)
		learnerID := uuid.New()

		state, err := svc.Get(context.Background(), learnerID, item.ID)
		require.NoError(t, err)

		assert.Equal(t, learnerID, state.LearnerID)
		assert.Equal(t, item.ID, state.ItemID)
		assert.Zero(t, state.ReviewCount)
		assert.InDelta(t, domain.DefaultEaseFactor, state.EaseFactor, 0.001)
		assert.Nil(t, state.NextDueAt)
	})

	t.Run("unknown item is not found", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newService(t)
		_, err := svc.Get(context.Background(), uuid.New(), uuid.New())
		assert.True(t, store.IsNotFoundError(err))
	})
}

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("sets flags and note on first touch", func(t *testing.T) {
		t.Parallel()

		svc, items, states := newService(t)
		item := addItem(t, items)
		learnerID := uuid.New()

		state, err := svc.Apply(context.Background(), learnerID, item.ID, review.Patch{
			Favorite: boolPtr(true),
			Note:     strPtr("tricky spelling"),
		})
		require.NoError(t, err)

		assert.True(t, state.Favorite)
		assert.False(t, state.Hidden)
		assert.Equal(t, "tricky spelling", state.Note)

		stored, err := states.Get(context.Background(), learnerID, item.ID)
		require.NoError(t, err)
		assert.True(t, stored.Favorite)
		assert.Equal(t, "tricky spelling", stored.Note)
	})

	t.Run("nil fields leave existing values alone", func(t *testing.T) {
		t.Parallel()

		svc, items, states := newService(t)
		item := addItem(t, items)
		learnerID := uuid.New()

		seed, err := domain.NewReviewState(learnerID, item.ID)
		require.NoError(t, err)
		seed.Favorite = true
		seed.Note = "keep me"
		states.Seed(seed)

		state, err := svc.Apply(context.Background(), learnerID, item.ID, review.Patch{
			Hidden: boolPtr(true),
		})
		require.NoError(t, err)

		assert.True(t, state.Favorite)
		assert.True(t, state.Hidden)
		assert.Equal(t, "keep me", state.Note)
	})

	t.Run("postpone pushes the due date without counting a review", func(t *testing.T) {
		t.Parallel()

		svc, items, states := newService(t)
		item := addItem(t, items)
		learnerID := uuid.New()

		seed, err := domain.NewReviewState(learnerID, item.ID)
		require.NoError(t, err)
		due := reviewNow.AddDate(0, 0, 2)
		seed.NextDueAt = &due
		seed.ReviewCount = 3
		states.Seed(seed)

		state, err := svc.Apply(context.Background(), learnerID, item.ID, review.Patch{
			PostponeDays: intPtr(5),
		})
		require.NoError(t, err)

		require.NotNil(t, state.NextDueAt)
		assert.Equal(t, due.AddDate(0, 0, 5), *state.NextDueAt)
		assert.Equal(t, 3, state.ReviewCount)

		stored, err := states.Get(context.Background(), learnerID, item.ID)
		require.NoError(t, err)
		assert.Equal(t, due.AddDate(0, 0, 5), *stored.NextDueAt)
	})

	t.Run("empty patch is rejected", func(t *testing.T) {
		t.Parallel()

		svc, items, _ := newService(t)
		item := addItem(t, items)

		_, err := svc.Apply(context.Background(), uuid.New(), item.ID, review.Patch{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("non-positive postpone is rejected", func(t *testing.T) {
		t.Parallel()

		svc, items, _ := newService(t)
		item := addItem(t, items)

		_, err := svc.Apply(context.Background(), uuid.New(), item.ID, review.Patch{
			PostponeDays: intPtr(0),
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown item is not found", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newService(t)
		_, err := svc.Apply(context.Background(), uuid.New(), uuid.New(), review.Patch{
			Favorite: boolPtr(true),
		})
		assert.True(t, store.IsNotFoundError(err))
	})
}

func TestListProgress(t *testing.T) {
	t.Parallel()

	svc, items, states := newService(t)
	learnerID := uuid.New()

	first := addItem(t, items)
	second, err := domain.NewVocabularyItem("harbor", "a sheltered port", "puerto", domain.LevelA2)
	require.NoError(t, err)
	items.Add(second)

	for _, item := range []*domain.VocabularyItem{first, second} {
		seed, err := domain.NewReviewState(learnerID, item.ID)
		require.NoError(t, err)
		states.Seed(seed)
	}

	progress, err := svc.ListProgress(context.Background(), learnerID)
	require.NoError(t, err)
	assert.Len(t, progress, 2)
}
