package api

import (
	"log/slog"
	"net/http"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/platform/logger"
	"github.com/lexireef/studyhall-api/internal/service/session"
)

// SessionHandler handles study session HTTP requests.
type SessionHandler struct {
	sessions *session.Service
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *session.Service, logger *slog.Logger) *SessionHandler {
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("session service cannot be nil for SessionHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// CreateSession handles POST /sessions requests. It builds a deck from the
// requested filters and returns the new session's identity.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := getLearnerIDFromContext(r)
	if !ok {
		log.Warn("learner ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "Learner ID not found or invalid")
		return
	}

	var req CreateSessionRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := ValidateRequest(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	created, err := h.sessions.CreateSession(r.Context(), learnerID, session.CreateSessionInput{
		Name:             req.SessionName,
		Type:             domain.SessionType(req.SessionType),
		Mode:             domain.StudyMode(req.StudyMode),
		Filters:          req.Filters(),
		MaxCards:         req.MaxCards,
		TimeLimitMinutes: req.TimeLimitMinutes,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, CreateSessionResponse{
		SessionID:   created.ID,
		TotalCards:  len(created.Deck),
		StudyMode:   string(created.Mode),
		SessionType: string(created.Type),
	})
}

// GetCurrentCard handles GET /sessions/{id}/card requests.
func (h *SessionHandler) GetCurrentCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, sessionID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	card, err := h.sessions.GetCurrentCard(r.Context(), sessionID, learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, CurrentCardResponse{
		Item:       itemToResponse(card.Item),
		StudyMode:  string(card.Mode),
		CardIndex:  card.CardIndex,
		TotalCards: card.TotalCards,
	})
}

// SubmitAnswer handles POST /sessions/{id}/answer requests. It grades the
// answer against the current card and advances the session.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, sessionID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := ValidateRequest(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.sessions.SubmitAnswer(r.Context(), sessionID, learnerID, session.SubmitAnswerInput{
		ItemID:              req.ItemID,
		Response:            req.UserAnswer,
		ResponseTimeSeconds: req.ResponseTimeSeconds,
		HintsUsed:           req.HintsUsed,
		ConfidenceLevel:     req.ConfidenceLevel,
		Rating:              domain.DifficultyRating(req.DifficultyRating),
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, SubmitAnswerResponse{
		Correct:           result.Correct,
		ConfidenceScore:   result.ConfidenceScore,
		SessionComplete:   result.SessionComplete,
		NextCardAvailable: result.NextCardAvailable,
		SessionStats:      statsToResponse(result.Stats),
	})
}

// CompleteSession handles POST /sessions/{id}/complete requests.
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, sessionID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	completed, err := h.sessions.CompleteSession(r.Context(), sessionID, learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("session completed via API",
		slog.String("session_id", completed.ID.String()),
		slog.Int("answered", completed.Stats.Answered()))

	RespondWithJSON(w, r, http.StatusOK, StatusResponse{
		Success: true,
		Message: "Session completed",
	})
}

// DeleteSession handles DELETE /sessions/{id} requests.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, sessionID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.sessions.DeleteSession(r.Context(), sessionID, learnerID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, StatusResponse{
		Success: true,
		Message: "Session deleted",
	})
}
