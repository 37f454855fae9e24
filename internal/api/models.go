package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/service/stats"
)

// Common request/response structures

// CreateSessionRequest defines the payload for the session creation endpoint.
type CreateSessionRequest struct {
	SessionName string `json:"sessionName"  validate:"max=200"`
	SessionType string `json:"sessionType"  validate:"required"`
	StudyMode   string `json:"studyMode"    validate:"required"`

	TopicName        string   `json:"topicName,omitempty"`
	CategoryName     string   `json:"categoryName,omitempty"`
	Level            string   `json:"level,omitempty"`
	PartOfSpeech     string   `json:"partOfSpeech,omitempty"`
	DifficultyFilter []string `json:"difficultyFilter,omitempty"`

	MaxCards         int  `json:"maxCards"         validate:"gte=0,lte=500"`
	TimeLimitMinutes *int `json:"timeLimitMinutes,omitempty"`
	IncludeReviewed  bool `json:"includeReviewed"`
	IncludeFavorites bool `json:"includeFavorites"`
	SmartSelection   bool `json:"smartSelection"`
}

// Filters converts the request's filter fields to the domain representation.
func (r CreateSessionRequest) Filters() domain.SessionFilters {
	difficulty := make([]domain.DifficultyRating, 0, len(r.DifficultyFilter))
	for _, d := range r.DifficultyFilter {
		difficulty = append(difficulty, domain.DifficultyRating(d))
	}
	return domain.SessionFilters{
		Topic:            r.TopicName,
		Category:         r.CategoryName,
		Level:            domain.Level(r.Level),
		PartOfSpeech:     r.PartOfSpeech,
		DifficultyFilter: difficulty,
		IncludeReviewed:  r.IncludeReviewed,
		IncludeFavorites: r.IncludeFavorites,
		SmartSelection:   r.SmartSelection,
	}
}

// CreateSessionResponse defines the successful response for session creation.
type CreateSessionResponse struct {
	SessionID   uuid.UUID `json:"sessionId"`
	TotalCards  int       `json:"totalCards"`
	StudyMode   string    `json:"studyMode"`
	SessionType string    `json:"sessionType"`
}

// ItemResponse is a vocabulary item as exposed over the API.
type ItemResponse struct {
	ID                 uuid.UUID `json:"id"`
	Word               string    `json:"word"`
	Definition         string    `json:"definition"`
	Translation        string    `json:"translation"`
	Example            string    `json:"example,omitempty"`
	ExampleTranslation string    `json:"exampleTranslation,omitempty"`
	Level              string    `json:"level"`
	PartOfSpeech       string    `json:"partOfSpeech,omitempty"`
	Topic              string    `json:"topic,omitempty"`
	Category           string    `json:"category,omitempty"`
}

func itemToResponse(item *domain.VocabularyItem) ItemResponse {
	return ItemResponse{
		ID:                 item.ID,
		Word:               item.Word,
		Definition:         item.Definition,
		Translation:        item.Translation,
		Example:            item.Example,
		ExampleTranslation: item.ExampleTranslation,
		Level:              string(item.Level),
		PartOfSpeech:       item.PartOfSpeech,
		Topic:              item.Topic,
		Category:           item.Category,
	}
}

// CurrentCardResponse is the card under a session's cursor.
type CurrentCardResponse struct {
	Item       ItemResponse `json:"item"`
	StudyMode  string       `json:"studyMode"`
	CardIndex  int          `json:"cardIndex"`
	TotalCards int          `json:"totalCards"`
}

// SubmitAnswerRequest defines the payload for answering the current card.
type SubmitAnswerRequest struct {
	ItemID              uuid.UUID `json:"itemId"              validate:"required"`
	UserAnswer          string    `json:"userAnswer"`
	ResponseTimeSeconds float64   `json:"responseTimeSeconds" validate:"gte=0"`
	HintsUsed           int       `json:"hintsUsed"           validate:"gte=0"`
	ConfidenceLevel     int       `json:"confidenceLevel"     validate:"gte=0,lte=5"`
	DifficultyRating    string    `json:"difficultyRating"    validate:"required"`
}

// SessionStatsResponse mirrors a session's live stats.
type SessionStatsResponse struct {
	CorrectCount         int     `json:"correctCount"`
	IncorrectCount       int     `json:"incorrectCount"`
	TotalResponseSeconds float64 `json:"totalResponseSeconds"`
	HintsUsed            int     `json:"hintsUsed"`
}

func statsToResponse(stats domain.SessionStats) SessionStatsResponse {
	return SessionStatsResponse{
		CorrectCount:         stats.CorrectCount,
		IncorrectCount:       stats.IncorrectCount,
		TotalResponseSeconds: stats.TotalResponseSeconds,
		HintsUsed:            stats.HintsUsed,
	}
}

// SubmitAnswerResponse defines the successful response for an answer
// submission.
type SubmitAnswerResponse struct {
	Correct           bool                 `json:"correct"`
	ConfidenceScore   float64              `json:"confidenceScore"`
	SessionComplete   bool                 `json:"sessionComplete"`
	NextCardAvailable bool                 `json:"nextCardAvailable"`
	SessionStats      SessionStatsResponse `json:"sessionStats"`
}

// StatusResponse is the generic success acknowledgement.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PatchReviewStateRequest defines the payload for editing per-item review
// state. All fields are optional; at least one must be present.
type PatchReviewStateRequest struct {
	Favorite     *bool   `json:"favorite,omitempty"`
	Hidden       *bool   `json:"hidden,omitempty"`
	Note         *string `json:"note,omitempty"`
	PostponeDays *int    `json:"postponeDays,omitempty"`
}

// ReviewStateResponse exposes a learner's per-item review state.
type ReviewStateResponse struct {
	ItemID         uuid.UUID  `json:"itemId"`
	ReviewCount    int        `json:"reviewCount"`
	LastReviewedAt *time.Time `json:"lastReviewedAt,omitempty"`
	NextDueAt      *time.Time `json:"nextDueAt,omitempty"`
	EaseFactor     float64    `json:"easeFactor"`
	IntervalDays   int        `json:"intervalDays"`
	LastRating     string     `json:"lastRating,omitempty"`
	Favorite       bool       `json:"favorite"`
	Hidden         bool       `json:"hidden"`
	Note           string     `json:"note,omitempty"`
	CorrectCount   int        `json:"correctCount"`
	IncorrectCount int        `json:"incorrectCount"`
}

func reviewStateToResponse(state *domain.ReviewState) ReviewStateResponse {
	return ReviewStateResponse{
		ItemID:         state.ItemID,
		ReviewCount:    state.ReviewCount,
		LastReviewedAt: state.LastReviewedAt,
		NextDueAt:      state.NextDueAt,
		EaseFactor:     state.EaseFactor,
		IntervalDays:   state.IntervalDays,
		LastRating:     string(state.LastRating),
		Favorite:       state.Favorite,
		Hidden:         state.Hidden,
		Note:           state.Note,
		CorrectCount:   state.CorrectCount,
		IncorrectCount: state.IncorrectCount,
	}
}

// StreakResponse reports consecutive-day study activity.
type StreakResponse struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
}

// TrendResponse reports the accuracy trend over a window.
type TrendResponse struct {
	WindowDays int    `json:"windowDays"`
	Trend      string `json:"trend"`
}

// OverviewResponse aggregates recent study activity for the dashboard.
type OverviewResponse struct {
	WindowDays        int     `json:"windowDays"`
	SessionCount      int     `json:"sessionCount"`
	CardsAnswered     int     `json:"cardsAnswered"`
	CorrectCount      int     `json:"correctCount"`
	AccuracyPct       float64 `json:"accuracyPct"`
	TotalStudySeconds float64 `json:"totalStudySeconds"`
	CurrentStreakDays int     `json:"currentStreakDays"`
	LongestStreakDays int     `json:"longestStreakDays"`
}

func overviewToResponse(o stats.Overview) OverviewResponse {
	return OverviewResponse{
		WindowDays:        o.WindowDays,
		SessionCount:      o.SessionCount,
		CardsAnswered:     o.CardsAnswered,
		CorrectCount:      o.CorrectCount,
		AccuracyPct:       o.AccuracyPct,
		TotalStudySeconds: o.TotalStudySeconds,
		CurrentStreakDays: o.CurrentStreakDays,
		LongestStreakDays: o.LongestStreakDays,
	}
}
