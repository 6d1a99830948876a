package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/pgnarchive/internal/api"
	"github.com/vytor/pgnarchive/internal/chesscom"
	"github.com/vytor/pgnarchive/internal/config"
	"github.com/vytor/pgnarchive/internal/db"
	"github.com/vytor/pgnarchive/internal/jobs"
	"github.com/vytor/pgnarchive/internal/logger"
	"github.com/vytor/pgnarchive/internal/repository/sqlite"
	"github.com/vytor/pgnarchive/internal/services"
	"github.com/vytor/pgnarchive/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("PGN Archive Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("import_worker_count=%d", cfg.ImportWorkerCount)
	log.Debug("import_queue_size=%d", cfg.ImportQueueSize)
	log.Debug("replay_worker_count=%d", cfg.ReplayWorkerCount)
	log.Debug("replay_queue_size=%d", cfg.ReplayQueueSize)
	log.Debug("build_boards_on_import=%t", cfg.BuildBoardsOnImport)
	log.Debug("verify_replay=%t", cfg.VerifyReplay)
	log.Debug("export_dir=%s", cfg.ExportDir)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	gameRepo := sqlite.NewGameRepository(database.DB)
	positionRepo := sqlite.NewPositionRepository(database.DB)
	importRepo := sqlite.NewImportRepository(database.DB)

	importPool := worker.NewPool("import", cfg.ImportWorkerCount, cfg.ImportQueueSize)
	replayPool := worker.NewPool("replay", cfg.ReplayWorkerCount, cfg.ReplayQueueSize)
	queue := jobs.NewWorkerQueue(importPool, replayPool)

	importService := services.NewImportService(gameRepo, importRepo, queue, services.ImportConfig{
		BuildBoards: cfg.BuildBoardsOnImport,
	})
	gameService := services.NewGameService(gameRepo, positionRepo, queue, services.ReplayConfig{
		Verify: cfg.VerifyReplay,
	})
	queue.Bind(importService, gameService)

	srv := &api.Server{
		DB:             database.DB,
		GameService:    gameService,
		ImportService:  importService,
		StatsService:   services.NewStatsService(gameRepo),
		ExportService:  services.NewExportService(gameRepo, services.ExportConfig{Dir: cfg.ExportDir, Parallel: int64(cfg.ParquetParallel)}),
		ArchiveService: services.NewArchiveService(chesscom.New(), importService),
		MaxImportBytes: int64(cfg.MaxImportBytes),
		RequestTimeout: cfg.RequestTimeout,
	}

	// Workers outlive requests, so they get their own context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	importPool.Start(ctx)
	replayPool.Start(ctx)

	if cfg.ImportDir != "" {
		go func() {
			summaries, err := importService.ImportDir(ctx, cfg.ImportDir, cfg.ImportGlob)
			if err != nil {
				log.Warn("startup import finished with errors: %v", err)
			}
			log.Info("startup import processed %d files from %s", len(summaries), cfg.ImportDir)
		}()
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Imports may queue replays, so the import pool drains first.
	log.Debug("draining import pool")
	importPool.Close()
	log.Debug("draining replay pool")
	replayPool.Close()
	cancel()

	log.Info("===========================================")
	log.Info("PGN Archive Server Stopped")
	log.Info("===========================================")
}
