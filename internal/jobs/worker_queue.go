package jobs

import (
	"context"
	"errors"
	"sync"

	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/worker"
)

// ErrNotBound is returned when a job is enqueued before Bind.
var ErrNotBound = errors.New("job queue has no handlers bound")

// WorkerQueue implements JobQueue using worker pools. The services that
// handle the jobs also enqueue them, so they are attached after
// construction with Bind.
type WorkerQueue struct {
	importPool *worker.Pool
	replayPool *worker.Pool

	mu       sync.RWMutex
	importer worker.FileImporter
	replayer worker.GameReplayer
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(importPool, replayPool *worker.Pool) *WorkerQueue {
	return &WorkerQueue{
		importPool: importPool,
		replayPool: replayPool,
	}
}

// Bind sets the handlers that run queued jobs.
func (q *WorkerQueue) Bind(importer worker.FileImporter, replayer worker.GameReplayer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.importer = importer
	q.replayer = replayer
}

func (q *WorkerQueue) EnqueueReplay(ctx context.Context, gameID int64) error {
	q.mu.RLock()
	replayer := q.replayer
	q.mu.RUnlock()
	if replayer == nil {
		return ErrNotBound
	}
	return q.replayPool.Submit(ctx, &worker.ReplayGameJob{
		Replayer: replayer,
		GameID:   gameID,
	})
}

func (q *WorkerQueue) EnqueueImportFile(ctx context.Context, path string, onDone func(*models.ImportSummary, error)) error {
	q.mu.RLock()
	importer := q.importer
	q.mu.RUnlock()
	if importer == nil {
		return ErrNotBound
	}
	return q.importPool.Submit(ctx, &worker.ImportFileJob{
		Importer: importer,
		Path:     path,
		OnDone:   onDone,
	})
}
