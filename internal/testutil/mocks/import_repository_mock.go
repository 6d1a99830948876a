package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/pgnarchive/internal/models"
)

// MockImportRepository is a mock implementation of repository.ImportRepository
type MockImportRepository struct {
	mock.Mock
}

func (m *MockImportRepository) Insert(ctx context.Context, summary models.ImportSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockImportRepository) Get(ctx context.Context, id string) (*models.ImportSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportSummary), args.Error(1)
}

func (m *MockImportRepository) List(ctx context.Context, limit int) ([]models.ImportSummary, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ImportSummary), args.Error(1)
}
