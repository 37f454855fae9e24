package api_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexireef/studyhall-api/internal/api"
	"github.com/lexireef/studyhall-api/internal/domain"
)

// recordAnswers seeds one review log entry per (day offset, correct) pair,
// relative to the fixed test clock.
func recordAnswers(t *testing.T, env *testEnv, learnerID uuid.UUID, entries map[int][]bool) {
	t.Helper()

	for offset, results := range entries {
		day := apiTestNow.AddDate(0, 0, -offset)
		for _, correct := range results {
			err := env.log.Record(context.Background(), &domain.ReviewLogEntry{
				LearnerID:  learnerID,
				ItemID:     uuid.New(),
				SessionID:  uuid.New(),
				Mode:       domain.StudyModeReview,
				Correct:    correct,
				AnsweredAt: day,
			})
			require.NoError(t, err)
		}
	}
}

func TestGetStreakEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("counts consecutive active days", func(t *testing.T) {
		t.Parallel()

		learnerID := uuid.New()
		env := newTestEnv(t, learnerID)
		recordAnswers(t, env, learnerID, map[int][]bool{
			0: {true},
			1: {true, false},
			2: {true},
		})

		var streak api.StreakResponse
		rec := env.doJSON(t, http.MethodGet, "/api/stats/streak", nil, &streak)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 3, streak.CurrentStreak)
		assert.Equal(t, 3, streak.LongestStreak)
	})

	t.Run("returns zeros for a learner with no activity", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, uuid.New())

		var streak api.StreakResponse
		rec := env.doJSON(t, http.MethodGet, "/api/stats/streak", nil, &streak)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, streak.CurrentStreak)
		assert.Equal(t, 0, streak.LongestStreak)
	})
}

func TestGetTrendEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("reports improving accuracy as positive", func(t *testing.T) {
		t.Parallel()

		learnerID := uuid.New()
		env := newTestEnv(t, learnerID)
		recordAnswers(t, env, learnerID, map[int][]bool{
			// Recent half: all correct. Earlier half: all wrong.
			0: {true, true},
			1: {true, true},
			8: {false, false},
			9: {false, false},
		})

		var trend api.TrendResponse
		rec := env.doJSON(t, http.MethodGet, "/api/stats/trend?days=14", nil, &trend)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 14, trend.WindowDays)
		assert.Equal(t, "positive", trend.Trend)
	})

	t.Run("defaults the window when absent", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, uuid.New())

		var trend api.TrendResponse
		rec := env.doJSON(t, http.MethodGet, "/api/stats/trend", nil, &trend)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 14, trend.WindowDays)
		assert.Equal(t, "stable", trend.Trend)
	})

	t.Run("rejects a non-positive window", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, uuid.New())

		rec := env.doJSON(t, http.MethodGet, "/api/stats/trend?days=0", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetOverviewEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("aggregates finalized sessions in the window", func(t *testing.T) {
		t.Parallel()

		learnerID := uuid.New()
		env := newTestEnv(t, learnerID)

		summaries := []*domain.SessionSummary{
			{
				SessionID:      uuid.New(),
				LearnerID:      learnerID,
				StudyMode:      domain.StudyModeReview,
				TotalCards:     10,
				CorrectCount:   8,
				IncorrectCount: 2,
				AccuracyPct:    80,
				Duration:       5 * time.Minute,
				CreatedAt:      apiTestNow.AddDate(0, 0, -2),
				FinalizedAt:    apiTestNow.AddDate(0, 0, -2).Add(5 * time.Minute),
			},
			{
				SessionID:      uuid.New(),
				LearnerID:      learnerID,
				StudyMode:      domain.StudyModeTest,
				TotalCards:     5,
				CorrectCount:   2,
				IncorrectCount: 3,
				AccuracyPct:    40,
				Duration:       3 * time.Minute,
				CreatedAt:      apiTestNow.AddDate(0, 0, -1),
				FinalizedAt:    apiTestNow.AddDate(0, 0, -1).Add(3 * time.Minute),
			},
			{
				// Outside a 30-day window; must not be counted.
				SessionID:      uuid.New(),
				LearnerID:      learnerID,
				StudyMode:      domain.StudyModeReview,
				TotalCards:     9,
				CorrectCount:   9,
				AccuracyPct:    100,
				Duration:       time.Minute,
				CreatedAt:      apiTestNow.AddDate(0, 0, -60),
				FinalizedAt:    apiTestNow.AddDate(0, 0, -60).Add(time.Minute),
			},
		}
		for _, s := range summaries {
			require.NoError(t, env.summaries.Create(context.Background(), s))
		}
		recordAnswers(t, env, learnerID, map[int][]bool{1: {true}, 2: {true}})

		var overview api.OverviewResponse
		rec := env.doJSON(t, http.MethodGet, "/api/stats/overview", nil, &overview)

		require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
		assert.Equal(t, 30, overview.WindowDays)
		assert.Equal(t, 2, overview.SessionCount)
		assert.Equal(t, 15, overview.CardsAnswered)
		assert.Equal(t, 10, overview.CorrectCount)
		assert.InDelta(t, 66.67, overview.AccuracyPct, 0.01)
		assert.InDelta(t, (8 * time.Minute).Seconds(), overview.TotalStudySeconds, 0.01)
	})

	t.Run("narrows the window with the days parameter", func(t *testing.T) {
		t.Parallel()

		learnerID := uuid.New()
		env := newTestEnv(t, learnerID)

		require.NoError(t, env.summaries.Create(context.Background(), &domain.SessionSummary{
			SessionID:    uuid.New(),
			LearnerID:    learnerID,
			StudyMode:    domain.StudyModeReview,
			TotalCards:   4,
			CorrectCount: 4,
			AccuracyPct:  100,
			Duration:     time.Minute,
			CreatedAt:    apiTestNow.AddDate(0, 0, -10),
			FinalizedAt:  apiTestNow.AddDate(0, 0, -10),
		}))

		var overview api.OverviewResponse
		rec := env.doJSON(t, http.MethodGet, "/api/stats/overview?days=7", nil, &overview)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 7, overview.WindowDays)
		assert.Equal(t, 0, overview.SessionCount)
	})

	t.Run("rejects an oversized window", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, uuid.New())

		rec := env.doJSON(t, http.MethodGet, "/api/stats/overview?days=10000", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
