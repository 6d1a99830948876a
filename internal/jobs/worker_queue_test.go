package jobs_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/pgnarchive/internal/jobs"
	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/worker"
)

type recorder struct {
	mu     sync.Mutex
	paths  []string
	replay []int64
}

func (r *recorder) ImportFile(_ context.Context, path string) (*models.ImportSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return &models.ImportSummary{Source: path}, nil
}

func (r *recorder) ReplayGame(_ context.Context, gameID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replay = append(r.replay, gameID)
	return nil
}

func TestWorkerQueue_RequiresBind(t *testing.T) {
	q := jobs.NewWorkerQueue(worker.NewPool("import", 1, 1), worker.NewPool("replay", 1, 1))

	assert.ErrorIs(t, q.EnqueueReplay(context.Background(), 1), jobs.ErrNotBound)
	assert.ErrorIs(t, q.EnqueueImportFile(context.Background(), "a.pgn", nil), jobs.ErrNotBound)
}

func TestWorkerQueue_RunsJobsOnPools(t *testing.T) {
	importPool := worker.NewPool("import", 1, 4)
	replayPool := worker.NewPool("replay", 2, 4)
	q := jobs.NewWorkerQueue(importPool, replayPool)

	rec := &recorder{}
	q.Bind(rec, rec)
	importPool.Start(context.Background())
	replayPool.Start(context.Background())

	var done []string
	require.NoError(t, q.EnqueueImportFile(context.Background(), "a.pgn", func(s *models.ImportSummary, err error) {
		done = append(done, s.Source)
	}))
	require.NoError(t, q.EnqueueReplay(context.Background(), 3))
	require.NoError(t, q.EnqueueReplay(context.Background(), 4))

	importPool.Close()
	replayPool.Close()

	assert.Equal(t, []string{"a.pgn"}, rec.paths)
	assert.ElementsMatch(t, []int64{3, 4}, rec.replay)
	assert.Equal(t, []string{"a.pgn"}, done)
}
