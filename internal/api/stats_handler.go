package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/service/stats"
)

const (
	// defaultOverviewDays is the stats window when the client does not ask
	// for one.
	defaultOverviewDays = 30

	// defaultTrendDays is the trend comparison window.
	defaultTrendDays = 14

	// maxStatsWindowDays caps how far back a single query may reach.
	maxStatsWindowDays = 365
)

// StatsHandler handles learner analytics HTTP requests.
type StatsHandler struct {
	aggregator *stats.Aggregator
	logger     *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(aggregator *stats.Aggregator, logger *slog.Logger) *StatsHandler {
	if aggregator == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("stats aggregator cannot be nil for StatsHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &StatsHandler{
		aggregator: aggregator,
		logger:     logger.With(slog.String("component", "stats_handler")),
	}
}

// GetOverview handles GET /stats/overview requests. The window defaults to
// thirty days and is adjustable with the days query parameter.
func (h *StatsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := getLearnerIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Learner ID not found or invalid")
		return
	}

	days, err := windowParam(r, "days", defaultOverviewDays)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	overview, err := h.aggregator.ComputeOverview(r.Context(), learnerID, days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute overview")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, overviewToResponse(overview))
}

// GetStreak handles GET /stats/streak requests.
func (h *StatsHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := getLearnerIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Learner ID not found or invalid")
		return
	}

	streak, err := h.aggregator.ComputeStreak(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute streak")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, StreakResponse{
		CurrentStreak: streak.Current,
		LongestStreak: streak.Longest,
	})
}

// GetTrend handles GET /stats/trend requests. The window defaults to fourteen
// days and is adjustable with the days query parameter.
func (h *StatsHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := getLearnerIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Learner ID not found or invalid")
		return
	}

	days, err := windowParam(r, "days", defaultTrendDays)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	trend, err := h.aggregator.ComputeTrend(r.Context(), learnerID, days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute trend")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TrendResponse{
		WindowDays: days,
		Trend:      string(trend),
	})
}

// windowParam reads a positive day-count query parameter, applying the
// fallback when absent.
func windowParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 || days > maxStatsWindowDays {
		return 0, stats.ErrInvalidWindow
	}
	return days, nil
}
