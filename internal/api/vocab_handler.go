package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/platform/logger"
	"github.com/lexireef/studyhall-api/internal/service/review"
	"github.com/lexireef/studyhall-api/internal/store"
)

// maxCatalogPageSize caps a single catalog listing.
const maxCatalogPageSize = 200

// VocabHandler handles vocabulary catalog and review-state HTTP requests.
type VocabHandler struct {
	items  store.VocabularyStore
	review *review.Service
	logger *slog.Logger
}

// NewVocabHandler creates a new VocabHandler.
func NewVocabHandler(
	items store.VocabularyStore,
	reviewService *review.Service,
	logger *slog.Logger,
) *VocabHandler {
	if items == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("vocabulary store cannot be nil for VocabHandler")
	}
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("review service cannot be nil for VocabHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &VocabHandler{
		items:  items,
		review: reviewService,
		logger: logger.With(slog.String("component", "vocab_handler")),
	}
}

// ListItems handles GET /vocabulary requests. Filters come from query
// parameters; results are capped at maxCatalogPageSize.
func (h *VocabHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	if _, ok := getLearnerIDFromContext(r); !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Learner ID not found or invalid")
		return
	}

	q := r.URL.Query()
	filters := store.ItemFilters{
		Topic:        q.Get("topic"),
		Category:     q.Get("category"),
		Level:        domain.Level(q.Get("level")),
		PartOfSpeech: q.Get("partOfSpeech"),
		SearchTerm:   q.Get("search"),
		Limit:        maxCatalogPageSize,
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			RespondWithError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if limit < maxCatalogPageSize {
			filters.Limit = limit
		}
	}

	items, err := h.items.FindItems(r.Context(), filters)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list vocabulary")
		return
	}

	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, itemToResponse(item))
	}
	RespondWithJSON(w, r, http.StatusOK, out)
}

// GetItem handles GET /vocabulary/{id} requests.
func (h *VocabHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	_, itemID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	item, err := h.items.GetByID(r.Context(), itemID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// GetReviewState handles GET /vocabulary/{id}/review-state requests. Items
// the learner never touched yield a default state.
func (h *VocabHandler) GetReviewState(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, itemID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	state, err := h.review.Get(r.Context(), learnerID, itemID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, reviewStateToResponse(state))
}

// PatchReviewState handles PATCH /vocabulary/{id}/review-state requests:
// favorite and hidden flags, the personal note, and manual postponement.
func (h *VocabHandler) PatchReviewState(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, itemID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req PatchReviewStateRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	state, err := h.review.Apply(r.Context(), learnerID, itemID, review.Patch{
		Favorite:     req.Favorite,
		Hidden:       req.Hidden,
		Note:         req.Note,
		PostponeDays: req.PostponeDays,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("review state patched",
		slog.String("item_id", itemID.String()),
		slog.Bool("postponed", req.PostponeDays != nil))

	RespondWithJSON(w, r, http.StatusOK, reviewStateToResponse(state))
}

// ListProgress handles GET /vocabulary/progress requests, returning all of
// the learner's review states.
func (h *VocabHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := getLearnerIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Learner ID not found or invalid")
		return
	}

	states, err := h.review.ListProgress(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list progress")
		return
	}

	out := make([]ReviewStateResponse, 0, len(states))
	for _, state := range states {
		out = append(out, reviewStateToResponse(state))
	}
	RespondWithJSON(w, r, http.StatusOK, out)
}
