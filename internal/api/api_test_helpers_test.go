package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lexireef/studyhall-api/internal/api"
	"github.com/lexireef/studyhall-api/internal/api/shared"
	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/domain/srs"
	"github.com/lexireef/studyhall-api/internal/service/review"
	"github.com/lexireef/studyhall-api/internal/service/selection"
	"github.com/lexireef/studyhall-api/internal/service/session"
	"github.com/lexireef/studyhall-api/internal/service/stats"
	"github.com/lexireef/studyhall-api/internal/testutils"
)

// apiTestNow is the fixed wall clock used by all handler tests.
var apiTestNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// testEnv bundles a fully wired router with the fake stores behind it, so
// tests can seed data and assert on persisted effects.
type testEnv struct {
	router *chi.Mux

	items     *testutils.FakeVocabularyStore
	states    *testutils.FakeReviewStateStore
	sessions  *testutils.FakeSessionStore
	summaries *testutils.FakeSummaryStore
	log       *testutils.FakeReviewLogStore

	// now is mutable so tests can advance time mid-flight.
	now time.Time
}

// newTestEnv builds the full service stack on in-memory stores and mounts
// the handlers the way the server does, with learnerID injected into the
// request context in place of the real authentication middleware.
func newTestEnv(t *testing.T, learnerID uuid.UUID) *testEnv {
	t.Helper()

	env := &testEnv{
		items:     testutils.NewFakeVocabularyStore(),
		states:    testutils.NewFakeReviewStateStore(),
		sessions:  testutils.NewFakeSessionStore(),
		summaries: testutils.NewFakeSummaryStore(),
		log:       testutils.NewFakeReviewLogStore(),
		now:       apiTestNow,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := func() time.Time { return env.now }

	srsService := srs.NewDefaultService()
	selector := selection.NewSelector(env.items, env.states, logger)
	sessionService := session.NewService(
		env.sessions, env.items, env.states, env.summaries, env.log,
		selector, srsService, 0, clock, logger,
	)
	reviewService := review.NewService(env.items, env.states, srsService, clock, logger)
	aggregator := stats.NewAggregator(env.summaries, env.log, clock, logger)

	sessionHandler := api.NewSessionHandler(sessionService, logger)
	vocabHandler := api.NewVocabHandler(env.items, reviewService, logger)
	statsHandler := api.NewStatsHandler(aggregator, logger)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := context.WithValue(req.Context(), shared.LearnerIDContextKey, learnerID)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})

		r.Post("/sessions", sessionHandler.CreateSession)
		r.Get("/sessions/{id}/card", sessionHandler.GetCurrentCard)
		r.Post("/sessions/{id}/answer", sessionHandler.SubmitAnswer)
		r.Post("/sessions/{id}/complete", sessionHandler.CompleteSession)
		r.Delete("/sessions/{id}", sessionHandler.DeleteSession)

		r.Get("/vocabulary", vocabHandler.ListItems)
		r.Get("/vocabulary/progress", vocabHandler.ListProgress)
		r.Get("/vocabulary/{id}", vocabHandler.GetItem)
		r.Get("/vocabulary/{id}/review-state", vocabHandler.GetReviewState)
		r.Patch("/vocabulary/{id}/review-state", vocabHandler.PatchReviewState)

		r.Get("/stats/overview", statsHandler.GetOverview)
		r.Get("/stats/streak", statsHandler.GetStreak)
		r.Get("/stats/trend", statsHandler.GetTrend)
	})

	env.router = router
	return env
}

// seedItems adds n distinct catalog items and returns them ordered by word.
func (env *testEnv) seedItems(t *testing.T, n int) []*domain.VocabularyItem {
	t.Helper()

	items := make([]*domain.VocabularyItem, 0, n)
	for i := 0; i < n; i++ {
		word := string(rune('a'+i)) + "pple"
		item, err := domain.NewVocabularyItem(word, "definition of "+word, "translation", domain.LevelA1)
		require.NoError(t, err)
		item.Topic = "food"
		items = append(items, item)
	}
	env.items.Add(items...)
	return items
}

// doJSON performs a request with an optional JSON body and decodes the JSON
// response into out when out is non-nil.
func (env *testEnv) doJSON(
	t *testing.T,
	method, target string,
	body interface{},
	out interface{},
) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out),
			"response body: %s", rec.Body.String())
	}
	return rec
}

// createSession is a convenience wrapper that creates a review session over
// the seeded catalog and returns the response.
func (env *testEnv) createSession(t *testing.T, maxCards int) api.CreateSessionResponse {
	t.Helper()

	var resp api.CreateSessionResponse
	rec := env.doJSON(t, http.MethodPost, "/api/sessions", map[string]interface{}{
		"sessionType": "quick",
		"studyMode":   "review",
		"maxCards":    maxCards,
	}, &resp)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	return resp
}
