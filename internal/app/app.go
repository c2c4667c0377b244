package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"detectwidget/internal/config"
	"detectwidget/internal/handler"
	"detectwidget/internal/logger"
	"detectwidget/internal/repository/memory"
	"detectwidget/internal/repository/sqlite"
	"detectwidget/internal/route"
	"detectwidget/internal/service/predict"
	"detectwidget/internal/service/websocket"
)

const sessionPurgeInterval = time.Minute

type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	sessions   *memory.SessionRegistry
	hubService *websocket.HubService
	env        *handler.Env
}

func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	sessions := memory.NewSessionRegistry(cfg.SessionTTLDuration())
	predictor := predict.NewClient(cfg.PredictURL, cfg.PredictTimeoutDuration())
	hub := websocket.NewHubService(log)

	env, err := handler.NewEnv(cfg, log, db, sessions, predictor, hub)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		config:     cfg,
		logger:     log,
		db:         db,
		sessions:   sessions,
		hubService: hub,
		env:        env,
	}, nil
}

// Handler returns the application's router.
func (a *App) Handler() http.Handler {
	return route.SetupRoutes(a.env)
}

func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer a.db.Close()

	// Start background services
	go a.hubService.Run(ctx)
	go a.sessions.Run(ctx, sessionPurgeInterval)

	a.logger.Info("Vision widget server listening on http://localhost:%d", a.config.Port)
	a.logger.Info("Prediction endpoint: %s", a.config.PredictURL)
	a.logger.Info("Database: %s", a.config.DatabasePath)

	return http.ListenAndServe(fmt.Sprintf(":%d", a.config.Port), a.Handler())
}
