package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/pgnarchive/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueReplay(ctx context.Context, gameID int64) error {
	args := m.Called(ctx, gameID)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueImportFile(ctx context.Context, path string, onDone func(*models.ImportSummary, error)) error {
	args := m.Called(ctx, path, onDone)
	return args.Error(0)
}
