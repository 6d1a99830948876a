package repository

import (
	"context"

	"github.com/vytor/pgnarchive/internal/models"
)

// GameRepository handles game data access
type GameRepository interface {
	Get(ctx context.Context, id int64) (*models.Game, error)
	List(ctx context.Context, filter models.GameFilter) ([]models.Game, error)
	Count(ctx context.Context, filter models.GameFilter) (int, error)
	Insert(ctx context.Context, game models.Game) (int64, error)
	// InsertBatch returns the IDs of newly inserted games, parallel to
	// games; a zero ID marks a game skipped as a duplicate.
	InsertBatch(ctx context.Context, games []models.Game) ([]int64, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdateOpening(ctx context.Context, id int64, ecoCode, openingName string) error
	ExistingSites(ctx context.Context, sites []string) (map[string]bool, error)
}

// PositionRepository handles position data access
type PositionRepository interface {
	InsertBatch(ctx context.Context, positions []models.Position) ([]int64, error)
	PositionsForGame(ctx context.Context, gameID int64) ([]models.Position, error)
	// ReplaceForGame atomically swaps all positions of a game.
	ReplaceForGame(ctx context.Context, gameID int64, positions []models.Position) error
}

// ImportRepository records the outcome of import runs
type ImportRepository interface {
	Insert(ctx context.Context, summary models.ImportSummary) error
	Get(ctx context.Context, id string) (*models.ImportSummary, error)
	List(ctx context.Context, limit int) ([]models.ImportSummary, error)
}
