package mocks

import (
	"context"
	"errors"

	"github.com/godilite/career-predictor/internal/repository/models"
)

// MockPredictionStore is a mock implementation of the PredictionStore interface.
type MockPredictionStore struct {
	SaveFunc       func(ctx context.Context, rec models.PredictionRecord) error
	GetFunc        func(ctx context.Context, id string) (models.PredictionRecord, error)
	ListByUserFunc func(ctx context.Context, userID string, limit int) ([]models.PredictionRecord, error)
}

func (m *MockPredictionStore) Save(ctx context.Context, rec models.PredictionRecord) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, rec)
	}
	return errors.New("SaveFunc not implemented")
}

func (m *MockPredictionStore) Get(ctx context.Context, id string) (models.PredictionRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return models.PredictionRecord{}, errors.New("GetFunc not implemented")
}

func (m *MockPredictionStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.PredictionRecord, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit)
	}
	return nil, errors.New("ListByUserFunc not implemented")
}
