// Command ingest imports a directory of PGN files, or a Chess.com player's
// recent archives, into the archive database. It can replay every new game
// and write a Parquet export when done.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vytor/pgnarchive/internal/chesscom"
	"github.com/vytor/pgnarchive/internal/config"
	"github.com/vytor/pgnarchive/internal/db"
	"github.com/vytor/pgnarchive/internal/jobs"
	"github.com/vytor/pgnarchive/internal/logger"
	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/repository/sqlite"
	"github.com/vytor/pgnarchive/internal/services"
	"github.com/vytor/pgnarchive/internal/worker"
)

func main() {
	cfg := config.Load()

	dir := flag.String("dir", cfg.ImportDir, "directory holding the PGN files")
	glob := flag.String("glob", cfg.ImportGlob, "file name pattern inside -dir")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	replay := flag.Bool("replay", cfg.BuildBoardsOnImport, "replay every inserted game and store its positions")
	parquetPath := flag.String("parquet", "", "write every stored game to this Parquet file when done")
	player := flag.String("player", "", "import this Chess.com player's archives instead of -dir")
	months := flag.Int("months", 1, "number of recent monthly archives to import with -player")
	flag.Parse()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	cfg.ImportDir, cfg.ImportGlob, cfg.DBPath, cfg.BuildBoardsOnImport = *dir, *glob, *dbPath, *replay
	if cfg.ImportDir == "" && *player == "" {
		fmt.Fprintln(os.Stderr, "ingest: -dir or -player is required")
		flag.Usage()
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(2)
	}

	opts := options{parquetPath: *parquetPath, player: *player, months: *months}
	if err := run(cfg, opts, log); err != nil {
		log.Error("ingest failed: %v", err)
		os.Exit(1)
	}
}

type options struct {
	parquetPath string
	player      string
	months      int
}

func run(cfg config.Config, opts options, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.NewContext(ctx, log)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

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

	importPool.Start(ctx)
	replayPool.Start(ctx)

	start := time.Now()
	var (
		summaries []models.ImportSummary
		importErr error
	)
	if opts.player != "" {
		archives := services.NewArchiveService(chesscom.New(), importService)
		summaries, importErr = archives.ImportPlayer(ctx, opts.player, opts.months)
	} else {
		summaries, importErr = importService.ImportDir(ctx, cfg.ImportDir, cfg.ImportGlob)
	}

	importPool.Close()
	replayPool.Close()

	var total models.ImportSummary
	for _, s := range summaries {
		log.WithFields(map[string]any{
			"parsed":   s.Parsed,
			"inserted": s.Inserted,
			"skipped":  s.Skipped,
			"rejected": s.Rejected,
		}).Info("%s", s.Source)
		total.Parsed += s.Parsed
		total.Inserted += s.Inserted
		total.Skipped += s.Skipped
		total.Rejected += s.Rejected
	}
	log.Info("imported %d sources in %v: %d parsed, %d inserted, %d skipped, %d rejected",
		len(summaries), time.Since(start).Round(time.Millisecond),
		total.Parsed, total.Inserted, total.Skipped, total.Rejected)
	if importErr != nil {
		return importErr
	}

	if opts.parquetPath == "" {
		return nil
	}
	exportService := services.NewExportService(gameRepo, services.ExportConfig{
		Dir:      filepath.Dir(opts.parquetPath),
		Parallel: int64(cfg.ParquetParallel),
	})
	result, err := exportService.Export(ctx, models.GameFilter{}, filepath.Base(opts.parquetPath))
	if err != nil {
		return err
	}
	log.Info("wrote %d games to %s", result.Rows, result.Path)
	return nil
}
