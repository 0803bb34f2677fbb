package mocks

import (
	"context"
	"errors"

	"github.com/godilite/career-predictor/internal/assessment"
	"github.com/godilite/career-predictor/internal/service"
)

// MockPredictor is a mock implementation of the Predictor interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockPredictor struct {
	PredictFunc func(ctx context.Context, in assessment.Input) (*service.PredictionResult, error)
}

// Predict implements the Predictor interface
func (m *MockPredictor) Predict(ctx context.Context, in assessment.Input) (*service.PredictionResult, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, in)
	}
	return nil, errors.New("PredictFunc not implemented")
}
