package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/lexireef/studyhall-api/internal/api"
	apimiddleware "github.com/lexireef/studyhall-api/internal/api/middleware"
)

// setupRouter wires all routes and middleware onto a fresh router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   app.config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	sessionHandler := api.NewSessionHandler(app.sessionService, app.logger)
	vocabHandler := api.NewVocabHandler(app.vocabularyStore, app.reviewService, app.logger)
	statsHandler := api.NewStatsHandler(app.aggregator, app.logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.config.Auth.JWTSecret)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

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
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
