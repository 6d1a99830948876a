package jobs

import (
	"context"

	"github.com/vytor/pgnarchive/internal/models"
)

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueReplay(ctx context.Context, gameID int64) error
	EnqueueImportFile(ctx context.Context, path string, onDone func(*models.ImportSummary, error)) error
}
