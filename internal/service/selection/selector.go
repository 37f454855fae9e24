// Package selection builds session decks: it scores catalog items by how
// overdue they are, applies the session filters, and orders the result
// either by weakness (smart selection) or by a seeded shuffle.
package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/store"
)

// ErrEmptyDeck is returned when zero items satisfy the filters after
// exclusions. No session should be created from an empty deck.
var ErrEmptyDeck = errors.New("no items match the session filters")

// Priority tiers. Material the learner has never seen (and boosted
// favorites) always outranks overdue material, which always outranks
// not-yet-due material. The not-due tier only backfills short decks.
const (
	tierNew = iota
	tierOverdue
	tierNotDue
)

// Selector builds ordered decks from the vocabulary catalog and the
// learner's review states.
type Selector struct {
	items  store.VocabularyStore
	states store.ReviewStateStore
	logger *slog.Logger
}

// NewSelector creates a deck selector.
func NewSelector(
	items store.VocabularyStore,
	states store.ReviewStateStore,
	logger *slog.Logger,
) *Selector {
	if items == nil {
		panic("items store cannot be nil")
	}
	if states == nil {
		panic("states store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Selector{
		items:  items,
		states: states,
		logger: logger.With(slog.String("component", "card_selector")),
	}
}

// Request describes one deck build.
//
// Seed drives the non-smart shuffle. The session service derives it from the
// session ID (the big-endian first eight bytes of the UUID), which is part
// of the contract: the same session always reproduces the same order.
type Request struct {
	LearnerID uuid.UUID
	Filters   domain.SessionFilters
	Mode      domain.StudyMode
	MaxCards  int
	Seed      uint64
	Now       time.Time
}

// candidate pairs an item with its (possibly absent) review state and the
// derived ranking keys.
type candidate struct {
	item    *domain.VocabularyItem
	tier    int
	ease    float64
	overdue float64
}

// BuildDeck produces the ordered deck for a new session.
//
// Ranking: items are bucketed into tiers (never-reviewed and boosted
// favorites, then overdue by days past due, then not-yet-due). Tier order is
// absolute. Within a tier, smart selection orders by ascending ease factor
// with longest-overdue then item ID as tie-breakers; otherwise each tier is
// shuffled with the seeded generator. Not-yet-due items only appear when the
// higher tiers cannot fill maxCards.
func (s *Selector) BuildDeck(ctx context.Context, req Request) ([]domain.DeckEntry, error) {
	if req.MaxCards <= 0 {
		return nil, fmt.Errorf("%w: max cards must be positive", domain.ErrValidation)
	}

	items, err := s.items.FindItems(ctx, store.ItemFilters{
		Topic:        req.Filters.Topic,
		Category:     req.Filters.Category,
		Level:        req.Filters.Level,
		PartOfSpeech: req.Filters.PartOfSpeech,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidate items: %w", err)
	}

	states, err := s.states.ListByLearner(ctx, req.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review states: %w", err)
	}

	stateByItem := make(map[uuid.UUID]*domain.ReviewState, len(states))
	for _, st := range states {
		stateByItem[st.ItemID] = st
	}

	tiers := [3][]candidate{}
	for _, item := range items {
		c, ok := s.classify(item, stateByItem[item.ID], req)
		if !ok {
			continue
		}
		tiers[c.tier] = append(tiers[c.tier], c)
	}

	if req.Filters.SmartSelection {
		for i := range tiers {
			orderByWeakness(tiers[i])
		}
	} else {
		rng := rand.New(rand.NewSource(int64(req.Seed)))
		for i := range tiers {
			// Stable pre-order so the shuffle is a pure function of the seed.
			orderByItemID(tiers[i])
			rng.Shuffle(len(tiers[i]), func(a, b int) {
				tiers[i][a], tiers[i][b] = tiers[i][b], tiers[i][a]
			})
		}
	}

	picked := append([]candidate{}, tiers[tierNew]...)
	picked = append(picked, tiers[tierOverdue]...)
	if len(picked) < req.MaxCards {
		// The overdue pool is thin; backfill short sessions with material
		// that is not due yet.
		picked = append(picked, tiers[tierNotDue]...)
	}
	if len(picked) > req.MaxCards {
		picked = picked[:req.MaxCards]
	}

	if len(picked) == 0 {
		return nil, ErrEmptyDeck
	}

	deck := make([]domain.DeckEntry, len(picked))
	for i, c := range picked {
		deck[i] = domain.DeckEntry{
			ItemID: c.item.ID,
			Mode:   effectiveMode(req.Mode, i),
		}
	}

	s.logger.Debug("deck built",
		slog.String("learner_id", req.LearnerID.String()),
		slog.Int("candidates", len(items)),
		slog.Int("deck_size", len(deck)),
		slog.Bool("smart", req.Filters.SmartSelection))

	return deck, nil
}

// classify applies the per-item exclusions and computes the ranking keys.
// The second return value is false when the item is filtered out.
func (s *Selector) classify(
	item *domain.VocabularyItem,
	state *domain.ReviewState,
	req Request,
) (candidate, bool) {
	c := candidate{item: item, ease: domain.DefaultEaseFactor}

	if state == nil {
		// Never reviewed: top tier, default ease, always due.
		c.tier = tierNew
		return c, true
	}

	if state.Hidden {
		return candidate{}, false
	}

	if state.Reviewed() && !req.Filters.IncludeReviewed {
		return candidate{}, false
	}

	// Items never rated pass the difficulty filter.
	if len(req.Filters.DifficultyFilter) > 0 && state.LastRating != "" {
		if !containsRating(req.Filters.DifficultyFilter, state.LastRating) {
			return candidate{}, false
		}
	}

	c.ease = state.EaseFactor
	c.overdue = state.OverdueDays(req.Now)

	switch {
	case req.Filters.IncludeFavorites && state.Favorite:
		// Favorites outrank due status entirely.
		c.tier = tierNew
	case !state.Reviewed():
		c.tier = tierNew
	case state.Due(req.Now):
		c.tier = tierOverdue
	default:
		c.tier = tierNotDue
	}

	return c, true
}

// orderByWeakness sorts a tier for smart selection: weakest ease factor
// first, then longest overdue, then item ID for determinism.
func orderByWeakness(tier []candidate) {
	sort.Slice(tier, func(a, b int) bool {
		if tier[a].ease != tier[b].ease {
			return tier[a].ease < tier[b].ease
		}
		if tier[a].overdue != tier[b].overdue {
			return tier[a].overdue > tier[b].overdue
		}
		return tier[a].item.ID.String() < tier[b].item.ID.String()
	})
}

func orderByItemID(tier []candidate) {
	sort.Slice(tier, func(a, b int) bool {
		return tier[a].item.ID.String() < tier[b].item.ID.String()
	})
}

// effectiveMode resolves the study mode for deck position i. Mixed sessions
// cycle through the concrete modes in deck order.
func effectiveMode(mode domain.StudyMode, i int) domain.StudyMode {
	if mode != domain.StudyModeMixed {
		return mode
	}
	return domain.ConcreteStudyModes[i%len(domain.ConcreteStudyModes)]
}

func containsRating(set []domain.DifficultyRating, rating domain.DifficultyRating) bool {
	for _, r := range set {
		if r == rating {
			return true
		}
	}
	return false
}
