package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cherry0021/ryot/internal/api"
	"github.com/cherry0021/ryot/internal/config"
	"github.com/cherry0021/ryot/internal/controllers"
	"github.com/cherry0021/ryot/internal/graph"
	"github.com/cherry0021/ryot/internal/models"
	"github.com/cherry0021/ryot/internal/providers"
	"github.com/cherry0021/ryot/internal/scheduler"
	"github.com/cherry0021/ryot/internal/services/anilist"
	"github.com/cherry0021/ryot/internal/services/audible"
	"github.com/cherry0021/ryot/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting Ryot")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize metadata providers
	audibleClient, err := audible.NewClient(cfg.AudibleLocale, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Audible client: %w", err)
	}

	animeClient, err := anilist.NewClient(models.LotAnime, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize AniList anime client: %w", err)
	}

	mangaClient, err := anilist.NewClient(models.LotManga, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize AniList manga client: %w", err)
	}

	registry := providers.Registry{
		{Source: models.SourceAudible, Lot: models.LotAudioBook}: audibleClient,
		{Source: models.SourceAnilist, Lot: models.LotAnime}:     animeClient,
		{Source: models.SourceAnilist, Lot: models.LotManga}:     mangaClient,
	}
	logger.Info("Metadata providers initialized")

	// 5. Initialize controllers
	detailsCtrl := controllers.NewDetailsController(db, logger)
	progressCtrl := controllers.NewProgressController(db, cfg.SeasonUpdateConcurrency, logger)
	commitCtrl := controllers.NewCommitController(db, registry, logger)
	refreshCtrl := controllers.NewRefreshController(db, registry, detailsCtrl, logger)
	logger.Info("Controllers initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(refreshCtrl, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	resolver := graph.NewResolver(db, registry, detailsCtrl, progressCtrl, commitCtrl, logger)
	server, err := api.NewServer(cfg, db, progressCtrl, resolver, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	// Start server in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Ryot is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("Ryot stopped")
	return nil
}
