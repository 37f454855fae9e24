// Package testutils provides in-memory store implementations shared by
// service and handler tests. The fakes honor the same optimistic-locking
// contracts as the SQL stores so concurrency paths are exercised.
package testutils

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/store"
)

// FakeVocabularyStore is an in-memory store.VocabularyStore.
type FakeVocabularyStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.VocabularyItem
}

var _ store.VocabularyStore = (*FakeVocabularyStore)(nil)

// NewFakeVocabularyStore creates an empty in-memory catalog.
func NewFakeVocabularyStore() *FakeVocabularyStore {
	return &FakeVocabularyStore{items: make(map[uuid.UUID]*domain.VocabularyItem)}
}

// Add inserts items directly, bypassing validation. Test setup only.
func (s *FakeVocabularyStore) Add(items ...*domain.VocabularyItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		copied := *item
		s.items[item.ID] = &copied
	}
}

// FindItems implements store.VocabularyStore.FindItems.
func (s *FakeVocabularyStore) FindItems(
	_ context.Context,
	filters store.ItemFilters,
) ([]*domain.VocabularyItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.VocabularyItem
	for _, item := range s.items {
		if filters.Topic != "" && item.Topic != filters.Topic {
			continue
		}
		if filters.Category != "" && item.Category != filters.Category {
			continue
		}
		if filters.Level != "" && item.Level != filters.Level {
			continue
		}
		if filters.PartOfSpeech != "" && item.PartOfSpeech != filters.PartOfSpeech {
			continue
		}
		if filters.SearchTerm != "" && !matchesSearch(item, filters.SearchTerm) {
			continue
		}
		copied := *item
		out = append(out, &copied)
	}

	sort.Slice(out, func(a, b int) bool { return out[a].Word < out[b].Word })

	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func matchesSearch(item *domain.VocabularyItem, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(item.Word), term) ||
		strings.Contains(strings.ToLower(item.Definition), term) ||
		strings.Contains(strings.ToLower(item.Translation), term)
}

// GetByID implements store.VocabularyStore.GetByID.
func (s *FakeVocabularyStore) GetByID(
	_ context.Context,
	id uuid.UUID,
) (*domain.VocabularyItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, store.ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

// CreateMultiple implements store.VocabularyStore.CreateMultiple.
func (s *FakeVocabularyStore) CreateMultiple(
	_ context.Context,
	items []*domain.VocabularyItem,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return store.NewStoreError("vocabulary item", "create", "validation failed", err)
		}
	}
	for _, item := range items {
		copied := *item
		s.items[item.ID] = &copied
	}
	return nil
}

type stateKey struct {
	learner uuid.UUID
	item    uuid.UUID
}

// FakeReviewStateStore is an in-memory store.ReviewStateStore with the same
// version-based compare-and-swap semantics as the SQL implementation.
type FakeReviewStateStore struct {
	mu     sync.Mutex
	states map[stateKey]*domain.ReviewState
}

var _ store.ReviewStateStore = (*FakeReviewStateStore)(nil)

// NewFakeReviewStateStore creates an empty in-memory review state store.
func NewFakeReviewStateStore() *FakeReviewStateStore {
	return &FakeReviewStateStore{states: make(map[stateKey]*domain.ReviewState)}
}

// Seed inserts states directly for test setup, assigning version 1.
func (s *FakeReviewStateStore) Seed(states ...*domain.ReviewState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range states {
		clone := st.Clone()
		if clone.Version == 0 {
			clone.Version = 1
		}
		s.states[stateKey{st.LearnerID, st.ItemID}] = clone
	}
}

// Get implements store.ReviewStateStore.Get.
func (s *FakeReviewStateStore) Get(
	_ context.Context,
	learnerID, itemID uuid.UUID,
) (*domain.ReviewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[stateKey{learnerID, itemID}]
	if !ok {
		return nil, store.ErrReviewStateNotFound
	}
	return st.Clone(), nil
}

// ListByLearner implements store.ReviewStateStore.ListByLearner.
func (s *FakeReviewStateStore) ListByLearner(
	_ context.Context,
	learnerID uuid.UUID,
) ([]*domain.ReviewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.ReviewState
	for key, st := range s.states {
		if key.learner == learnerID {
			out = append(out, st.Clone())
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].ItemID.String() < out[b].ItemID.String()
	})
	return out, nil
}

// Upsert implements store.ReviewStateStore.Upsert.
func (s *FakeReviewStateStore) Upsert(_ context.Context, state *domain.ReviewState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := stateKey{state.LearnerID, state.ItemID}
	existing, ok := s.states[key]
	if ok && existing.Version != state.Version {
		return store.ErrConflict
	}

	clone := state.Clone()
	clone.Version = state.Version + 1
	s.states[key] = clone
	state.Version = clone.Version
	return nil
}

// FakeSessionStore is an in-memory store.SessionStore with cursor-based
// compare-and-swap on Update.
type FakeSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.Session
}

var _ store.SessionStore = (*FakeSessionStore)(nil)

// NewFakeSessionStore creates an empty in-memory session store.
func NewFakeSessionStore() *FakeSessionStore {
	return &FakeSessionStore{sessions: make(map[uuid.UUID]*domain.Session)}
}

func cloneSession(s *domain.Session) *domain.Session {
	clone := *s
	clone.Deck = append([]domain.DeckEntry(nil), s.Deck...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		clone.CompletedAt = &t
	}
	return &clone
}

// Create implements store.SessionStore.Create.
func (s *FakeSessionStore) Create(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		return store.ErrDuplicate
	}
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

// GetByID implements store.SessionStore.GetByID.
func (s *FakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

// Update implements store.SessionStore.Update.
func (s *FakeSessionStore) Update(
	_ context.Context,
	session *domain.Session,
	expectedCursor int,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sessions[session.ID]
	if !ok {
		return store.ErrSessionNotFound
	}
	if existing.Cursor != expectedCursor {
		return store.ErrConflict
	}
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

// Delete implements store.SessionStore.Delete.
func (s *FakeSessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return store.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// MarkAbandonedBefore implements store.SessionStore.MarkAbandonedBefore.
func (s *FakeSessionStore) MarkAbandonedBefore(
	_ context.Context,
	cutoff time.Time,
) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, session := range s.sessions {
		if session.Status == domain.SessionStatusActive && session.CreatedAt.Before(cutoff) {
			session.Status = domain.SessionStatusAbandoned
			t := cutoff.UTC()
			session.CompletedAt = &t
			n++
		}
	}
	return n, nil
}

// FakeSummaryStore is an in-memory store.SummaryStore.
type FakeSummaryStore struct {
	mu        sync.Mutex
	summaries []*domain.SessionSummary
}

var _ store.SummaryStore = (*FakeSummaryStore)(nil)

// NewFakeSummaryStore creates an empty in-memory summary store.
func NewFakeSummaryStore() *FakeSummaryStore {
	return &FakeSummaryStore{}
}

// Create implements store.SummaryStore.Create.
func (s *FakeSummaryStore) Create(_ context.Context, summary *domain.SessionSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *summary
	s.summaries = append(s.summaries, &copied)
	return nil
}

// ListByLearner implements store.SummaryStore.ListByLearner.
func (s *FakeSummaryStore) ListByLearner(
	_ context.Context,
	learnerID uuid.UUID,
	since time.Time,
) ([]*domain.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.SessionSummary
	for _, summary := range s.summaries {
		if summary.LearnerID != learnerID {
			continue
		}
		if !since.IsZero() && summary.FinalizedAt.Before(since) {
			continue
		}
		copied := *summary
		out = append(out, &copied)
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].FinalizedAt.After(out[b].FinalizedAt)
	})
	return out, nil
}

// FakeReviewLogStore is an in-memory store.ReviewLogStore.
type FakeReviewLogStore struct {
	mu      sync.Mutex
	nextID  int64
	entries []domain.ReviewLogEntry
}

var _ store.ReviewLogStore = (*FakeReviewLogStore)(nil)

// NewFakeReviewLogStore creates an empty in-memory review log.
func NewFakeReviewLogStore() *FakeReviewLogStore {
	return &FakeReviewLogStore{}
}

// Record implements store.ReviewLogStore.Record.
func (s *FakeReviewLogStore) Record(_ context.Context, entry *domain.ReviewLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	entry.ID = s.nextID
	s.entries = append(s.entries, *entry)
	return nil
}

// ActiveDays implements store.ReviewLogStore.ActiveDays.
func (s *FakeReviewLogStore) ActiveDays(
	_ context.Context,
	learnerID uuid.UUID,
) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[time.Time]bool)
	for _, e := range s.entries {
		if e.LearnerID != learnerID {
			continue
		}
		seen[utcDay(e.AnsweredAt)] = true
	}

	days := make([]time.Time, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(a, b int) bool { return days[a].Before(days[b]) })
	return days, nil
}

// DailyActivity implements store.ReviewLogStore.DailyActivity.
func (s *FakeReviewLogStore) DailyActivity(
	_ context.Context,
	learnerID uuid.UUID,
	since time.Time,
) ([]store.DayActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDay := make(map[time.Time]*store.DayActivity)
	for _, e := range s.entries {
		if e.LearnerID != learnerID || e.AnsweredAt.Before(since) {
			continue
		}
		day := utcDay(e.AnsweredAt)
		agg, ok := byDay[day]
		if !ok {
			agg = &store.DayActivity{Day: day}
			byDay[day] = agg
		}
		agg.Total++
		if e.Correct {
			agg.Correct++
		}
	}

	out := make([]store.DayActivity, 0, len(byDay))
	for _, agg := range byDay {
		out = append(out, *agg)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Day.Before(out[b].Day) })
	return out, nil
}

func utcDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
