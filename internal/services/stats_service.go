package services

import (
	"context"

	"github.com/vytor/pgnarchive/internal/errors"
	"github.com/vytor/pgnarchive/internal/logger"
	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/repository"
	"github.com/vytor/pgnarchive/internal/stats"
)

const statsPageSize = 500

// StatsService handles statistics-related business logic
type StatsService interface {
	Aggregate(ctx context.Context, filter models.GameFilter, query models.StatsQuery) ([]models.BinStat, error)
}

type statsService struct {
	gameRepo repository.GameRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(gameRepo repository.GameRepository) StatsService {
	return &statsService{gameRepo: gameRepo}
}

// Aggregate narrows stored games with filter in SQL, then runs the query's
// stages over them page by page. query.Limit caps how many stored games are
// read; zero reads them all.
func (s *statsService) Aggregate(ctx context.Context, filter models.GameFilter, query models.StatsQuery) ([]models.BinStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats")
	log.Debug("aggregating: filters=%v, expr=%q, bin=%s, map=%s", query.Filters, query.Expr, query.Bin, query.Map)

	filters := make([]stats.Filter, 0, len(query.Filters)+1)
	for _, def := range query.Filters {
		f, err := stats.ParseFilter(def)
		if err != nil {
			return nil, errors.NewValidationError("filters", err.Error())
		}
		filters = append(filters, f)
	}
	if query.Expr != "" {
		f, err := stats.Expr(query.Expr)
		if err != nil {
			return nil, errors.NewValidationError("expr", err.Error())
		}
		filters = append(filters, f)
	}
	bin, err := stats.ParseBin(query.Bin, query.BinSize)
	if err != nil {
		return nil, errors.NewValidationError("bin", err.Error())
	}
	mapper, err := stats.ParseMap(query.Map)
	if err != nil {
		return nil, errors.NewValidationError("map", err.Error())
	}

	agg := stats.NewAggregator(filters, bin, mapper)
	page := filter
	page.OrderBy, page.OrderDir = "id", "ASC"
	read, kept := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewInternalError(err)
		}
		page.Limit = statsPageSize
		if query.Limit > 0 && query.Limit-read < page.Limit {
			page.Limit = query.Limit - read
		}
		page.Offset = filter.Offset + read

		games, err := s.gameRepo.List(ctx, page)
		if err != nil {
			log.Error("failed to list games: %v", err)
			return nil, errors.Wrap(err)
		}
		for i := range games {
			if agg.Add(&games[i]) {
				kept++
			}
		}
		read += len(games)
		if len(games) < page.Limit || (query.Limit > 0 && read >= query.Limit) {
			break
		}
	}

	result := agg.Result()
	log.Info("aggregated %d of %d games into %d bins", kept, read, len(result))
	return result, nil
}
