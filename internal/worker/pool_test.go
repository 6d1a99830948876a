package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/worker"
)

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

func TestPool_CloseDrainsQueuedJobs(t *testing.T) {
	p := worker.NewPool("test", 2, 16)
	var ran atomic.Int32

	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(context.Background(), funcJob{name: "count", fn: func(context.Context) error {
			ran.Add(1)
			return nil
		}}))
	}
	p.Start(context.Background())
	p.Close()

	assert.Equal(t, int32(10), ran.Load())
	assert.ErrorIs(t, p.Submit(context.Background(), funcJob{name: "late"}), worker.ErrPoolClosed)
}

func TestPool_FailingAndPanickingJobsDoNotStopWorkers(t *testing.T) {
	p := worker.NewPool("test", 1, 4)
	p.Start(context.Background())

	var ran atomic.Int32
	require.NoError(t, p.Submit(context.Background(), funcJob{name: "fails", fn: func(context.Context) error {
		return errors.New("boom")
	}}))
	require.NoError(t, p.Submit(context.Background(), funcJob{name: "panics", fn: func(context.Context) error {
		panic("contract breach")
	}}))
	require.NoError(t, p.Submit(context.Background(), funcJob{name: "after", fn: func(context.Context) error {
		ran.Add(1)
		return nil
	}}))
	p.Close()

	assert.Equal(t, int32(1), ran.Load())
}

func TestPool_StopCancelsRunningJobs(t *testing.T) {
	p := worker.NewPool("test", 1, 4)
	p.Start(context.Background())

	started := make(chan struct{})
	var cancelled atomic.Bool
	require.NoError(t, p.Submit(context.Background(), funcJob{name: "blocks", fn: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}}))

	<-started
	p.Stop()
	assert.True(t, cancelled.Load())
	p.Stop()
}

func TestPool_SubmitHonoursContextWhenQueueIsFull(t *testing.T) {
	p := worker.NewPool("test", 1, 1)
	require.NoError(t, p.Submit(context.Background(), funcJob{name: "fills"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Submit(ctx, funcJob{name: "waits"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, p.QueueSize())
	p.Stop()
}

type stubImporter struct {
	mu    sync.Mutex
	paths []string
}

func (s *stubImporter) ImportFile(_ context.Context, path string) (*models.ImportSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path)
	return &models.ImportSummary{Source: path, Parsed: 2, Inserted: 2}, nil
}

type stubReplayer struct{ ids []int64 }

func (s *stubReplayer) ReplayGame(_ context.Context, gameID int64) error {
	s.ids = append(s.ids, gameID)
	if gameID < 0 {
		return errors.New("no such game")
	}
	return nil
}

func TestImportFileJob(t *testing.T) {
	importer := &stubImporter{}
	var got *models.ImportSummary
	job := &worker.ImportFileJob{
		Importer: importer,
		Path:     "games/a.pgn",
		OnDone:   func(s *models.ImportSummary, err error) { got = s },
	}

	assert.Equal(t, "import_file", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []string{"games/a.pgn"}, importer.paths)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Inserted)
}

func TestReplayGameJob(t *testing.T) {
	replayer := &stubReplayer{}

	assert.NoError(t, (&worker.ReplayGameJob{Replayer: replayer, GameID: 7}).Run(context.Background()))
	assert.Error(t, (&worker.ReplayGameJob{Replayer: replayer, GameID: -1}).Run(context.Background()))
	assert.Equal(t, []int64{7, -1}, replayer.ids)
}
