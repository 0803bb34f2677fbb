package mocks

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/godilite/career-predictor/internal/model"
)

// MockClassifier is a mock implementation of the Classifier interface
// for testing the service layer.
type MockClassifier struct {
	ClassifyFunc func(ctx context.Context, req model.Request) (model.Response, error)

	calls atomic.Int32
}

// Classify implements the Classifier interface
func (m *MockClassifier) Classify(ctx context.Context, req model.Request) (model.Response, error) {
	m.calls.Add(1)
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, req)
	}
	return model.Response{}, errors.New("ClassifyFunc not implemented")
}

// Calls reports how many times Classify was invoked.
func (m *MockClassifier) Calls() int {
	return int(m.calls.Load())
}
