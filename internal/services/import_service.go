package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/pgnarchive/internal/chess"
	"github.com/vytor/pgnarchive/internal/errors"
	"github.com/vytor/pgnarchive/internal/jobs"
	"github.com/vytor/pgnarchive/internal/logger"
	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/pgn"
	"github.com/vytor/pgnarchive/internal/repository"
)

const (
	defaultImportBatchSize = 500
	maxReportedErrors      = 100
)

// ImportService handles game import business logic
type ImportService interface {
	ImportReader(ctx context.Context, source string, r io.Reader) (*models.ImportSummary, error)
	ImportText(ctx context.Context, source, text string) (*models.ImportSummary, error)
	ImportFile(ctx context.Context, path string) (*models.ImportSummary, error)
	ImportDir(ctx context.Context, dir, glob string) ([]models.ImportSummary, error)
	GetImport(ctx context.Context, id string) (*models.ImportSummary, error)
	ListImports(ctx context.Context, limit int) ([]models.ImportSummary, error)
}

// ImportConfig holds configuration for imports
type ImportConfig struct {
	// BuildBoards queues a replay of every inserted game.
	BuildBoards bool
	BatchSize   int
}

type importService struct {
	gameRepo   repository.GameRepository
	importRepo repository.ImportRepository
	jobQueue   jobs.JobQueue
	config     ImportConfig
}

// NewImportService creates a new ImportService. jobQueue may be nil, in
// which case ImportDir imports files one after another and no replays are
// queued.
func NewImportService(gameRepo repository.GameRepository, importRepo repository.ImportRepository, jobQueue jobs.JobQueue, config ImportConfig) ImportService {
	if config.BatchSize <= 0 {
		config.BatchSize = defaultImportBatchSize
	}
	return &importService{
		gameRepo:   gameRepo,
		importRepo: importRepo,
		jobQueue:   jobQueue,
		config:     config,
	}
}

// importRun tracks one import while it streams through a PGN source.
type importRun struct {
	summary models.ImportSummary
	batch   []models.Game
	seen    map[string]bool
	log     *logger.Logger
}

func (r *importRun) reject(line int, err error) {
	r.summary.Rejected++
	if chess.IsFault(err) {
		r.log.Warn("rejected game at line %d: %v", line, err)
	} else {
		r.log.Info("skipped game with bad metadata at line %d: %v", line, err)
	}
	if len(r.summary.Errors) < maxReportedErrors {
		r.summary.Errors = append(r.summary.Errors, fmt.Sprintf("game at line %d: %v", line, err))
	}
}

func (s *importService) ImportReader(ctx context.Context, source string, r io.Reader) (*models.ImportSummary, error) {
	importID := uuid.New().String()
	log := logger.FromContext(ctx).WithPrefix("import").WithFields(map[string]any{
		"import_id": importID,
		"source":    source,
	})
	log.Info("starting import")
	start := time.Now()

	run := &importRun{
		summary: models.ImportSummary{ImportID: importID, Source: source},
		seen:    map[string]bool{},
		log:     log,
	}

	reader := pgn.NewReader(r)
	var readErr error
	for {
		if err := ctx.Err(); err != nil {
			readErr = err
			break
		}
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}

		run.summary.Parsed++
		game, err := pgn.ParseGame(rec)
		if err != nil {
			run.reject(rec.Line, err)
			continue
		}
		game.ImportID = importID
		run.batch = append(run.batch, *game)

		if len(run.batch) >= s.config.BatchSize {
			if err := s.flush(ctx, run); err != nil {
				readErr = err
				break
			}
		}
	}
	if readErr == nil {
		readErr = s.flush(ctx, run)
	}

	run.summary.CreatedAt = time.Now().UTC()
	if err := s.importRepo.Insert(context.WithoutCancel(ctx), run.summary); err != nil {
		log.Error("failed to record import summary: %v", err)
		if readErr == nil {
			readErr = err
		}
	}

	log.WithFields(map[string]any{
		"parsed":   run.summary.Parsed,
		"inserted": run.summary.Inserted,
		"skipped":  run.summary.Skipped,
		"rejected": run.summary.Rejected,
	}).Info("import finished in %v", time.Since(start))

	if readErr != nil {
		log.Error("import stopped early: %v", readErr)
		return &run.summary, errors.NewInternalError(readErr)
	}
	return &run.summary, nil
}

// flush stores the pending batch, leaving out games whose Site is already
// stored or appeared earlier in this import.
func (s *importService) flush(ctx context.Context, run *importRun) error {
	if len(run.batch) == 0 {
		return nil
	}
	defer func() { run.batch = run.batch[:0] }()

	sites := make([]string, 0, len(run.batch))
	for _, g := range run.batch {
		if g.Site != "" {
			sites = append(sites, g.Site)
		}
	}
	existing, err := s.gameRepo.ExistingSites(ctx, sites)
	if err != nil {
		return fmt.Errorf("check existing games: %w", err)
	}

	fresh := make([]models.Game, 0, len(run.batch))
	for _, g := range run.batch {
		if g.Site != "" {
			if existing[g.Site] || run.seen[g.Site] {
				run.summary.Skipped++
				continue
			}
			run.seen[g.Site] = true
		}
		fresh = append(fresh, g)
	}
	if len(fresh) == 0 {
		return nil
	}

	ids, err := s.gameRepo.InsertBatch(ctx, fresh)
	if err != nil {
		return fmt.Errorf("insert games: %w", err)
	}
	for _, id := range ids {
		if id == 0 {
			run.summary.Skipped++
			continue
		}
		run.summary.Inserted++
		if s.config.BuildBoards && s.jobQueue != nil {
			if err := s.jobQueue.EnqueueReplay(ctx, id); err != nil {
				run.log.Warn("failed to queue replay for game %d: %v", id, err)
			}
		}
	}
	run.log.Debug("stored batch: %d new of %d", len(fresh), len(run.batch))
	return nil
}

func (s *importService) ImportText(ctx context.Context, source, text string) (*models.ImportSummary, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewValidationError("pgn", "cannot be empty")
	}
	if source == "" {
		source = "text"
	}
	return s.ImportReader(ctx, source, strings.NewReader(text))
}

func (s *importService) ImportFile(ctx context.Context, path string) (*models.ImportSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewNotFoundError("file", path)
		}
		return nil, errors.NewInternalError(err)
	}
	defer f.Close()
	return s.ImportReader(ctx, path, f)
}

// ImportDir imports every file in dir matching glob. Files run on the import
// pool when there is a job queue. The summaries come back sorted by source.
func (s *importService) ImportDir(ctx context.Context, dir, glob string) ([]models.ImportSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("import").WithField("dir", dir)
	if glob == "" {
		glob = "*.pgn"
	}
	paths, err := filepath.Glob(filepath.Join(dir, glob))
	if err != nil {
		return nil, errors.NewValidationError("glob", err.Error())
	}
	log.Info("importing %d files matching %s", len(paths), glob)

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		summaries []models.ImportSummary
		failures  []error
	)
	collect := func(summary *models.ImportSummary, err error) {
		mu.Lock()
		defer mu.Unlock()
		if summary != nil {
			summaries = append(summaries, *summary)
		}
		if err != nil {
			failures = append(failures, err)
		}
	}

	for _, path := range paths {
		if s.jobQueue == nil {
			collect(s.ImportFile(ctx, path))
			continue
		}
		wg.Add(1)
		err := s.jobQueue.EnqueueImportFile(ctx, path, func(summary *models.ImportSummary, err error) {
			defer wg.Done()
			collect(summary, err)
		})
		if err != nil {
			wg.Done()
			log.Warn("failed to queue %s: %v", path, err)
			collect(nil, fmt.Errorf("%s: %w", path, err))
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("stopped waiting for imports: %v", ctx.Err())
		return nil, errors.NewInternalError(ctx.Err())
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Source < summaries[j].Source })
	if len(failures) > 0 {
		return summaries, errors.NewInternalError(stderrors.Join(failures...))
	}
	return summaries, nil
}

func (s *importService) GetImport(ctx context.Context, id string) (*models.ImportSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting import: id=%s", id)

	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NewValidationError("id", "must be a UUID")
	}
	summary, err := s.importRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("import", id)
		}
		log.Error("failed to get import: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return summary, nil
}

func (s *importService) ListImports(ctx context.Context, limit int) ([]models.ImportSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	summaries, err := s.importRepo.List(ctx, limit)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list imports: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return summaries, nil
}
