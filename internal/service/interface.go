package service

import (
	"context"

	"github.com/godilite/career-predictor/internal/model"
)

// Classifier defines the boundary to the external classification model.
type Classifier interface {
	Classify(ctx context.Context, req model.Request) (model.Response, error)
}
