package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/pgnarchive/internal/errors"
	"github.com/vytor/pgnarchive/internal/export"
	"github.com/vytor/pgnarchive/internal/logger"
	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/repository"
)

// ExportResult describes a written export file.
type ExportResult struct {
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

// ExportService writes stored games to Parquet files
type ExportService interface {
	Export(ctx context.Context, filter models.GameFilter, name string) (*ExportResult, error)
}

// ExportConfig holds configuration for exports
type ExportConfig struct {
	Dir      string
	Parallel int64
}

type exportService struct {
	gameRepo repository.GameRepository
	config   ExportConfig
}

// NewExportService creates a new ExportService
func NewExportService(gameRepo repository.GameRepository, config ExportConfig) ExportService {
	if config.Parallel <= 0 {
		config.Parallel = 4
	}
	return &exportService{gameRepo: gameRepo, config: config}
}

// Export writes every game matching filter to name inside the export
// directory. An empty name gets a generated one.
func (s *exportService) Export(ctx context.Context, filter models.GameFilter, name string) (*ExportResult, error) {
	if name == "" {
		name = fmt.Sprintf("games-%s-%s.parquet", time.Now().UTC().Format("20060102"), uuid.New().String()[:8])
	}
	if filepath.Base(name) != name || !strings.HasSuffix(name, ".parquet") {
		return nil, errors.NewValidationError("name", "must be a plain file name ending in .parquet")
	}
	if err := os.MkdirAll(s.config.Dir, 0o755); err != nil {
		return nil, errors.NewInternalError(err)
	}
	path := filepath.Join(s.config.Dir, name)

	log := logger.FromContext(ctx).WithPrefix("export").WithField("path", path)
	log.Info("starting export")
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	records := make(chan export.GameRecord, statsPageSize)
	produced := make(chan error, 1)
	go func() {
		defer close(records)
		produced <- s.produce(ctx, filter, records)
	}()

	rows, err := export.WriteParquet(path, records, s.config.Parallel)
	if err != nil {
		cancel()
		<-produced
		log.Error("failed to write parquet: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if err := <-produced; err != nil {
		log.Error("failed to read games: %v", err)
		_ = os.Remove(path)
		return nil, errors.Wrap(err)
	}

	log.Info("exported %d games in %v", rows, time.Since(start))
	return &ExportResult{Path: path, Rows: rows}, nil
}

func (s *exportService) produce(ctx context.Context, filter models.GameFilter, out chan<- export.GameRecord) error {
	page := filter
	page.OrderBy, page.OrderDir = "id", "ASC"
	page.Limit = statsPageSize
	for {
		games, err := s.gameRepo.List(ctx, page)
		if err != nil {
			return err
		}
		for i := range games {
			select {
			case out <- export.NewGameRecord(&games[i]):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if len(games) < page.Limit {
			return nil
		}
		page.Offset += len(games)
	}
}
