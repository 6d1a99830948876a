package worker

import (
	"context"

	"github.com/vytor/pgnarchive/internal/models"
)

// FileImporter imports one PGN file. It is implemented by the import
// service; the interface keeps this package free of a services import.
type FileImporter interface {
	ImportFile(ctx context.Context, path string) (*models.ImportSummary, error)
}

// GameReplayer rebuilds and stores the positions of one game.
type GameReplayer interface {
	ReplayGame(ctx context.Context, gameID int64) error
}

// ImportFileJob imports every game of a PGN file. OnDone, when set, receives
// the outcome.
type ImportFileJob struct {
	Importer FileImporter
	Path     string
	OnDone   func(*models.ImportSummary, error)
}

func (j *ImportFileJob) Name() string { return "import_file" }

func (j *ImportFileJob) Run(ctx context.Context) error {
	summary, err := j.Importer.ImportFile(ctx, j.Path)
	if j.OnDone != nil {
		j.OnDone(summary, err)
	}
	return err
}

// ReplayGameJob rebuilds the per-ply positions of a stored game.
type ReplayGameJob struct {
	Replayer GameReplayer
	GameID   int64
}

func (j *ReplayGameJob) Name() string { return "replay_game" }

func (j *ReplayGameJob) Run(ctx context.Context) error {
	return j.Replayer.ReplayGame(ctx, j.GameID)
}
