package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	careerv1 "github.com/godilite/career-predictor/api/v1"
	"github.com/godilite/career-predictor/internal/assessment"
	"github.com/godilite/career-predictor/internal/repository"
	"github.com/godilite/career-predictor/internal/repository/models"
	"github.com/godilite/career-predictor/internal/service"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultStoreTimeout  = 5 * time.Second

	defaultListLimit = 20
	maxListLimit     = 100
)

const cacheKeyPrediction = "grpc:prediction"

type GRPCHandlers struct {
	careerv1.UnimplementedCareerPredictionServer
	predictor     Predictor
	store         PredictionStore
	cache         Cacher
	logger        *zap.Logger
	sfGroup       singleflight.Group
	cacheTTL      time.Duration
	exposeDetails bool
	now           func() time.Time
	newID         func() string
}

type HandlerOption func(*GRPCHandlers)

// WithErrorDetails includes underlying model diagnostics in status messages.
func WithErrorDetails(enabled bool) HandlerOption {
	return func(h *GRPCHandlers) {
		h.exposeDetails = enabled
	}
}

func WithClock(now func() time.Time) HandlerOption {
	return func(h *GRPCHandlers) {
		h.now = now
	}
}

func WithIDGenerator(newID func() string) HandlerOption {
	return func(h *GRPCHandlers) {
		h.newID = newID
	}
}

// NewGRPCHandlers initializes the gRPC handlers. cache may be nil.
func NewGRPCHandlers(predictor Predictor, store PredictionStore, cache Cacher, logger *zap.Logger, ttl time.Duration, opts ...HandlerOption) *GRPCHandlers {
	if predictor == nil {
		panic("nil Predictor provided to NewGRPCHandlers")
	}
	if store == nil {
		panic("nil PredictionStore provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	h := &GRPCHandlers{
		predictor: predictor,
		store:     store,
		cache:     cache,
		logger:    logger.Named("grpc-handler"),
		cacheTTL:  ttl,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func predictionKey(id string) string {
	return fmt.Sprintf("%s:%s", cacheKeyPrediction, id)
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	var verr *assessment.ValidationError
	switch {
	case errors.As(err, &verr):
		s.logger.Info("invalid answers", zap.String("op", op), zap.String("field", verr.Field), zap.String("reason", verr.Message))
		return status.Error(codes.InvalidArgument, verr.Message)
	case errors.Is(err, service.ErrModelReported):
		s.logger.Warn("model reported failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, service.ErrModelInvocation):
		s.logger.Error("model invocation failed", zap.String("op", op), zap.Error(err))
		code := codes.Unavailable
		if errors.Is(err, context.DeadlineExceeded) {
			code = codes.DeadlineExceeded
		}
		return status.Error(code, s.detail("prediction model unavailable", err))
	case errors.Is(err, service.ErrContractViolation):
		s.logger.Error("model contract violation", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, s.detail("prediction model returned an invalid response", err))
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Info("prediction not found", zap.String("op", op))
		return status.Error(codes.NotFound, "prediction not found")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, s.detail(op+" failed", err))
	}
}

func (s *GRPCHandlers) detail(msg string, err error) string {
	if s.exposeDetails {
		return fmt.Sprintf("%s: %v", msg, err)
	}
	return msg
}

func (s *GRPCHandlers) respond(op string, v any) (*structpb.Struct, error) {
	out, err := careerv1.ToStruct(v)
	if err != nil {
		s.logger.Error("failed to encode response", zap.String("op", op), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "%s failed to encode response", op)
	}
	return out, nil
}

// Predict validates the answers, runs the prediction and stores the result.
func (s *GRPCHandlers) Predict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in careerv1.PredictRequest
	if err := careerv1.FromStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	if in.Answers == nil {
		return nil, status.Error(codes.InvalidArgument, "answers are required")
	}

	input, err := assessment.ParseInput(in.Answers)
	if err != nil {
		return nil, s.handleError(ctx, "Predict", err)
	}

	result, err := s.predictor.Predict(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, "Predict", err)
	}

	rec := newRecord(s.newID(), strings.TrimSpace(in.UserID), input.Kind(), result, s.now())

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultStoreTimeout)
	defer cancel()
	if err := s.store.Save(storeCtx, rec); err != nil {
		s.logger.Error("failed to store prediction", zap.String("id", rec.ID), zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to store prediction")
	}

	return s.respond("Predict", toPrediction(rec))
}

func (s *GRPCHandlers) GetPrediction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in careerv1.GetPredictionRequest
	if err := careerv1.FromStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultStoreTimeout)
	defer cancel()

	prediction, err := FindAndCache(ctx, s.cache, &s.sfGroup, predictionKey(id), s.cacheTTL, s.logger,
		func(fetchCtx context.Context) (careerv1.Prediction, error) {
			rec, err := s.store.Get(fetchCtx, id)
			if err != nil {
				return careerv1.Prediction{}, err
			}
			return toPrediction(rec), nil
		})
	if err != nil {
		return nil, s.handleError(ctx, "GetPrediction", err)
	}

	return s.respond("GetPrediction", prediction)
}

// ListPredictions returns a user's predictions, newest first.
func (s *GRPCHandlers) ListPredictions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in careerv1.ListPredictionsRequest
	if err := careerv1.FromStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}

	limit := in.Limit
	switch {
	case limit < 0:
		return nil, status.Error(codes.InvalidArgument, "limit must not be negative")
	case limit == 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	ctx, cancel := context.WithTimeout(ctx, defaultStoreTimeout)
	defer cancel()

	recs, err := s.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, s.handleError(ctx, "ListPredictions", err)
	}

	resp := careerv1.ListPredictionsResponse{Predictions: make([]careerv1.Prediction, 0, len(recs))}
	for _, rec := range recs {
		resp.Predictions = append(resp.Predictions, toPrediction(rec))
	}
	return s.respond("ListPredictions", resp)
}

func newRecord(id, userID string, kind assessment.Kind, result *service.PredictionResult, createdAt time.Time) models.PredictionRecord {
	top := make([]models.CareerEntry, len(result.TopCareers))
	for i, c := range result.TopCareers {
		top[i] = models.CareerEntry{Career: c.Career, Probability: c.Probability, Percentage: c.Percentage}
	}
	return models.PredictionRecord{
		ID:                   id,
		UserID:               userID,
		InputKind:            kind.String(),
		RecommendedCareer:    result.RecommendedCareer,
		ConfidencePercentage: result.ConfidencePercentage,
		TopCareers:           top,
		Profile:              result.Profile.Features(),
		CreatedAt:            createdAt.UTC(),
	}
}

func toPrediction(rec models.PredictionRecord) careerv1.Prediction {
	top := make([]careerv1.Career, len(rec.TopCareers))
	for i, c := range rec.TopCareers {
		top[i] = careerv1.Career{Career: c.Career, Probability: c.Probability, Percentage: c.Percentage}
	}
	return careerv1.Prediction{
		ID:                   rec.ID,
		UserID:               rec.UserID,
		InputKind:            rec.InputKind,
		CreatedAt:            rec.CreatedAt,
		RecommendedCareer:    rec.RecommendedCareer,
		ConfidencePercentage: rec.ConfidencePercentage,
		TopCareers:           top,
		Profile:              rec.Profile,
	}
}
