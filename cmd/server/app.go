package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/lexireef/studyhall-api/internal/config"
	"github.com/lexireef/studyhall-api/internal/domain/srs"
	"github.com/lexireef/studyhall-api/internal/importer"
	"github.com/lexireef/studyhall-api/internal/platform/database"
	"github.com/lexireef/studyhall-api/internal/platform/logger"
	"github.com/lexireef/studyhall-api/internal/scheduler"
	"github.com/lexireef/studyhall-api/internal/service/review"
	"github.com/lexireef/studyhall-api/internal/service/selection"
	"github.com/lexireef/studyhall-api/internal/service/session"
	"github.com/lexireef/studyhall-api/internal/service/stats"
	"github.com/lexireef/studyhall-api/internal/store"
)

// application holds all initialized dependencies for the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	vocabularyStore store.VocabularyStore

	sessionService *session.Service
	reviewService  *review.Service
	aggregator     *stats.Aggregator
	importer       *importer.Importer
	scheduler      *scheduler.Scheduler
}

// newApplication loads configuration, connects the database, runs migrations
// and wires the service graph. The caller owns cleanup.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver))

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	vocabularyStore := database.NewVocabularyStore(db)
	reviewStateStore := database.NewReviewStateStore(db)
	sessionStore := database.NewSessionStore(db)
	summaryStore := database.NewSummaryStore(db)
	reviewLogStore := database.NewReviewLogStore(db)

	srsService := srs.NewDefaultService()
	selector := selection.NewSelector(vocabularyStore, reviewStateStore, log)

	sessionService := session.NewService(
		sessionStore,
		vocabularyStore,
		reviewStateStore,
		summaryStore,
		reviewLogStore,
		selector,
		srsService,
		cfg.Session.DefaultMaxCards,
		nil,
		log,
	)
	reviewService := review.NewService(vocabularyStore, reviewStateStore, srsService, nil, log)
	aggregator := stats.NewAggregator(summaryStore, reviewLogStore, nil, log)

	app := &application{
		config:          cfg,
		logger:          log,
		db:              db,
		vocabularyStore: vocabularyStore,
		sessionService:  sessionService,
		reviewService:   reviewService,
		aggregator:      aggregator,
		importer:        importer.New(vocabularyStore, log),
		scheduler: scheduler.New(
			sessionStore,
			cfg.Session.StaleAfter,
			cfg.Session.SweepInterval,
			nil,
			log,
		),
	}

	log.Info("application initialized")
	return app, nil
}

// cleanup releases application resources. Safe to call more than once.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
		app.db = nil
	}

	app.logger.Info("application shutdown completed")
}
