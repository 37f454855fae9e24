package selection

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/testutils"
)

func newItem(word, topic string) *domain.VocabularyItem {
	return &domain.VocabularyItem{
		ID:          uuid.New(),
		Word:        word,
		Definition:  "definition of " + word,
		Translation: word + "-tr",
		Level:       domain.LevelB1,
		Topic:       topic,
	}
}

func newState(learnerID uuid.UUID, item *domain.VocabularyItem) *domain.ReviewState {
	state, err := domain.NewReviewState(learnerID, item.ID)
	if err != nil {
		panic(err)
	}
	return state
}

// reviewedState marks the state as reviewed with a due date offset in days
// relative to now (negative means overdue).
func reviewedState(
	learnerID uuid.UUID,
	item *domain.VocabularyItem,
	now time.Time,
	dueOffsetDays int,
) *domain.ReviewState {
	state := newState(learnerID, item)
	state.ReviewCount = 1
	reviewed := now.AddDate(0, 0, dueOffsetDays-1)
	due := now.AddDate(0, 0, dueOffsetDays)
	state.LastReviewedAt = &reviewed
	state.NextDueAt = &due
	state.IntervalDays = 1
	return state
}

func TestBuildDeckFreshLearnerTopicFilter(t *testing.T) {
	t.Parallel() // Enable parallel execution
	learnerID := uuid.New()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	items := testutils.NewFakeVocabularyStore()
	for i := 0; i < 8; i++ {
		items.Add(newItem("shop-word-"+string(rune('a'+i)), "shopping"))
	}
	items.Add(newItem("unrelated", "travel"))

	selector := NewSelector(items, testutils.NewFakeReviewStateStore(), nil)

	deck, err := selector.BuildDeck(context.Background(), Request{
		LearnerID: learnerID,
		Filters:   domain.SessionFilters{Topic: "shopping", SmartSelection: true},
		Mode:      domain.StudyModeReview,
		MaxCards:  5,
		Now:       now,
	})
	require.NoError(t, err)

	assert.Len(t, deck, 5)
	seen := make(map[uuid.UUID]bool)
	for _, entry := range deck {
		assert.False(t, seen[entry.ItemID], "deck entries must be distinct")
		seen[entry.ItemID] = true
		assert.Equal(t, domain.StudyModeReview, entry.Mode)
	}
}

func TestBuildDeckEmpty(t *testing.T) {
	t.Parallel() // Enable parallel execution
	selector := NewSelector(testutils.NewFakeVocabularyStore(), testutils.NewFakeReviewStateStore(), nil)

	_, err := selector.BuildDeck(context.Background(), Request{
		LearnerID: uuid.New(),
		Filters:   domain.SessionFilters{Topic: "nope"},
		Mode:      domain.StudyModeReview,
		MaxCards:  10,
		Now:       time.Now().UTC(),
	})
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestBuildDeckTierOrdering(t *testing.T) {
	t.Parallel() // Enable parallel execution
	learnerID := uuid.New()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	items := testutils.NewFakeVocabularyStore()
	states := testutils.NewFakeReviewStateStore()

	fresh := newItem("fresh", "mixed-bag")
	overdue := newItem("overdue", "mixed-bag")
	notDue := newItem("notdue", "mixed-bag")
	items.Add(fresh, overdue, notDue)

	states.Seed(
		reviewedState(learnerID, overdue, now, -3),
		reviewedState(learnerID, notDue, now, 5),
	)

	selector := NewSelector(items, states, nil)

	deck, err := selector.BuildDeck(context.Background(), Request{
		LearnerID: learnerID,
		Filters:   domain.SessionFilters{IncludeReviewed: true, SmartSelection: true},
		Mode:      domain.StudyModeReview,
		MaxCards:  3,
		Now:       now,
	})
	require.NoError(t, err)
	require.Len(t, deck, 3)

	// Never-reviewed outranks overdue, which outranks not-yet-due.
	assert.Equal(t, fresh.ID, deck[0].ItemID)
	assert.Equal(t, overdue.ID, deck[1].ItemID)
	assert.Equal(t, notDue.ID, deck[2].ItemID)
}

func TestBuildDeckNotDueExcludedWhenPoolIsLarge(t *testing.T) {
	t.Parallel() // Enable parallel execution
	learnerID := uuid.New()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	items := testutils.NewFakeVocabularyStore()
	states := testutils.NewFakeReviewStateStore()

	overdueA := newItem("alpha", "t")
	overdueB := newItem("beta", "t")
	notDue := newItem("gamma", "t")
	items.Add(overdueA, overdueB, notDue)

	states.Seed(
		reviewedState(learnerID, overdueA, now, -1),
		reviewedState(learnerID, overdueB, now, -2),
		reviewedState(learnerID, notDue, now, 4),
	)

	selector := NewSelector(items, states, nil)

	deck, err := selector.BuildDeck(context.Background(), Request{
		LearnerID: learnerID,
		Filters:   domain.SessionFilters{IncludeReviewed: true, SmartSelection: true},
		Mode:      domain.StudyModeReview,
		MaxCards:  2,
		Now:       now,
	})
	require.NoError(t, err)
	require.Len(t, deck, 2)

	for _, entry := range deck {
		assert.NotEqual(t, notDue.ID, entry.ItemID, "not-yet-due items must not crowd the deck")
	}
}

func TestBuildDeckSmartOrdersByEaseFactor(t *testing.T) {
	t.Parallel() // Enable parallel execution
	learnerID := uuid.New()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	items := testutils.NewFakeVocabularyStore()
	states := testutils.NewFakeReviewStateStore()

	weak := newItem("weak", "t")
	strong := newItem("strong", "t")
	items.Add(weak, strong)

	weakState := reviewedState(learnerID, weak, now, -1)
	weakState.EaseFactor = 1.4
	strongState := reviewedState(learnerID, strong, now, -5)
	strongState.EaseFactor = 2.8
	states.Seed(weakState, strongState)

	selector := NewSelector(items, states, nil)

	deck, err := selector.BuildDeck(context.Background(), Request{
		LearnerID: learnerID,
		Filters:   domain.SessionFilters{IncludeReviewed: true, SmartSelection: true},
		Mode:      domain.StudyModeReview,
		MaxCards:  2,
		Now:       now,
	})
	require.NoError(t, err)
	require.Len(t, deck, 2)

	// Weaker ease factor ranks first even though the other item is more overdue.
	assert.Equal(t, weak.ID, deck[0].ItemID)
	assert.Equal(t, strong.ID, deck[1].ItemID)
}

func TestBuildDeckSeededShuffleIsReproducible(t *testing.T) {
	t.Parallel() // Enable parallel execution
	learnerID := uuid.New()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	items := testutils.NewFakeVocabularyStore()
	for i := 0; i < 12; i++ {
		items.Add(newItem("word-"+string(rune('a'+i)), "t"))
	}

	selector := NewSelector(items, testutils.NewFakeReviewStateStore(), nil)

	build := func(seed uint64) []domain.DeckEntry {
		deck, err := selector.BuildDeck(context.Background(), Request{
			LearnerID: learnerID,
			Filters:   domain.SessionFilters{},
			Mode:      domain.StudyModeReview,
			MaxCards:  12,
			Seed:      seed,
			Now:       now,
		})
		require.NoError(t, err)
		return deck
	}

	first := build(42)
	second := build(42)
	assert.Equal(t, first, second, "same seed must reproduce the same order")

	other := build(99)
	assert.NotEqual(t, first, other, "different seeds should give different orders")
}

func TestBuildDeckDifficultyFilter(t *testing.T) {
	t.Parallel() // Enable parallel execution
	learnerID := uuid.New()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	items := testutils.NewFakeVocabularyStore()
	states := testutils.NewFakeReviewStateStore()

	hardItem := newItem("hard-one", "t")
	easyItem := newItem("easy-one", "t")
	unrated := newItem("unrated", "t")
	items.Add(hardItem, easyItem, unrated)

	hardState := reviewedState(learnerID, hardItem, now, -1)
	hardState.LastRating = domain.DifficultyHard
	easyState := reviewedState(learnerID, easyItem, now, -1)
	easyState.LastRating = domain.DifficultyEasy
	states.Seed(hardState, easyState)

	selector := NewSelector(items, states, nil)

	deck, err := selector.BuildDeck(context.Background(), Request{
		LearnerID: learnerID,
		Filters: domain.SessionFilters{
			IncludeReviewed:  true,
			SmartSelection:   true,
			DifficultyFilter: []domain.DifficultyRating{domain.DifficultyHard},
		},
		Mode:     domain.StudyModeReview,
		MaxCards: 10,
		Now:      now,
	})
	require.NoError(t, err)

	got := make(map[uuid.UUID]bool)
	for _, entry := range deck {
		got[entry.ItemID] = true
	}
	assert.True(t, got[hardItem.ID], "items rated in the filter set stay")
	assert.True(t, got[unrated.ID], "never-rated items pass the filter")
	assert.False(t, got[easyItem.ID], "items rated outside the filter set are excluded")
}

func TestBuildDeckHiddenAndReviewedExclusions(t *testing.T) {
	t.Parallel() // Enable parallel execution
	learnerID := uuid.New()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	items := testutils.NewFakeVocabularyStore()
	states := testutils.NewFakeReviewStateStore()

	hidden := newItem("hidden", "t")
	seen := newItem("seen", "t")
	fresh := newItem("fresh", "t")
	items.Add(hidden, seen, fresh)

	hiddenState := reviewedState(learnerID, hidden, now, -1)
	hiddenState.Hidden = true
	states.Seed(hiddenState, reviewedState(learnerID, seen, now, -1))

	selector := NewSelector(items, states, nil)

	deck, err := selector.BuildDeck(context.Background(), Request{
		LearnerID: learnerID,
		Filters:   domain.SessionFilters{SmartSelection: true},
		Mode:      domain.StudyModeReview,
		MaxCards:  10,
		Now:       now,
	})
	require.NoError(t, err)
	require.Len(t, deck, 1)
	assert.Equal(t, fresh.ID, deck[0].ItemID)
}

func TestBuildDeckFavoritesBoosted(t *testing.T) {
	t.Parallel() // Enable parallel execution
	learnerID := uuid.New()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	items := testutils.NewFakeVocabularyStore()
	states := testutils.NewFakeReviewStateStore()

	favorite := newItem("favorite", "t")
	overdue := newItem("overdue", "t")
	items.Add(favorite, overdue)

	favoriteState := reviewedState(learnerID, favorite, now, 10) // not due
	favoriteState.Favorite = true
	favoriteState.EaseFactor = 2.9
	states.Seed(favoriteState, reviewedState(learnerID, overdue, now, -2))

	selector := NewSelector(items, states, nil)

	deck, err := selector.BuildDeck(context.Background(), Request{
		LearnerID: learnerID,
		Filters: domain.SessionFilters{
			IncludeReviewed:  true,
			IncludeFavorites: true,
			SmartSelection:   true,
		},
		Mode:     domain.StudyModeReview,
		MaxCards: 2,
		Now:      now,
	})
	require.NoError(t, err)
	require.Len(t, deck, 2)

	// The favorite lands in the top tier despite not being due.
	assert.Equal(t, favorite.ID, deck[0].ItemID)
}

func TestBuildDeckMixedModeAssignment(t *testing.T) {
	t.Parallel() // Enable parallel execution
	learnerID := uuid.New()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	items := testutils.NewFakeVocabularyStore()
	for i := 0; i < 7; i++ {
		items.Add(newItem("word-"+string(rune('a'+i)), "t"))
	}

	selector := NewSelector(items, testutils.NewFakeReviewStateStore(), nil)

	deck, err := selector.BuildDeck(context.Background(), Request{
		LearnerID: learnerID,
		Filters:   domain.SessionFilters{SmartSelection: true},
		Mode:      domain.StudyModeMixed,
		MaxCards:  7,
		Now:       now,
	})
	require.NoError(t, err)
	require.Len(t, deck, 7)

	for i, entry := range deck {
		want := domain.ConcreteStudyModes[i%len(domain.ConcreteStudyModes)]
		assert.Equal(t, want, entry.Mode, "entry %d", i)
		assert.True(t, entry.Mode.IsConcrete())
	}
}
