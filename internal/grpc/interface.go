package grpc

import (
	"context"
	"time"

	"github.com/godilite/career-predictor/internal/assessment"
	"github.com/godilite/career-predictor/internal/repository/models"
	"github.com/godilite/career-predictor/internal/service"
)

// Cacher is a read-through cache for encoded responses. Get reports a miss with
// cache.ErrMiss.
type Cacher interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type Predictor interface {
	Predict(ctx context.Context, in assessment.Input) (*service.PredictionResult, error)
}

// PredictionStore persists prediction records.
type PredictionStore interface {
	Save(ctx context.Context, rec models.PredictionRecord) error
	Get(ctx context.Context, id string) (models.PredictionRecord, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.PredictionRecord, error)
}
