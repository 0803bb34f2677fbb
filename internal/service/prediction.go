package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/godilite/career-predictor/internal/assessment"
	"github.com/godilite/career-predictor/internal/metrics"
	"github.com/godilite/career-predictor/internal/model"
)

const (
	defaultModelTimeout = 10 * time.Second
	tracerName          = "github.com/godilite/career-predictor/internal/service"
)

// PredictionService validates answers, aggregates them and asks the classification
// model for a career recommendation. It holds no per-request state and is safe for
// concurrent use.
type PredictionService struct {
	classifier Classifier
	logger     *zap.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	timeout    time.Duration
}

// Option configures a PredictionService.
type Option func(*PredictionService)

// WithTimeout bounds a single model call.
func WithTimeout(d time.Duration) Option {
	return func(s *PredictionService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMetrics records prediction outcomes and model latency on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *PredictionService) {
		s.metrics = m
	}
}

// WithTracer replaces the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *PredictionService) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewPredictionService creates a new PredictionService instance.
func NewPredictionService(classifier Classifier, logger *zap.Logger, opts ...Option) *PredictionService {
	if classifier == nil {
		panic("classifier must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &PredictionService{
		classifier: classifier,
		logger:     logger.Named("prediction-service"),
		tracer:     otel.Tracer(tracerName),
		timeout:    defaultModelTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Predict runs the full pipeline for one input. Validation failures never reach the
// model. Model failures are returned as ErrModelInvocation, ErrModelReported or
// ErrContractViolation; no partial result is ever returned.
func (s *PredictionService) Predict(ctx context.Context, in assessment.Input) (*PredictionResult, error) {
	if err := assessment.Validate(in); err != nil {
		s.metrics.ObservePrediction(metrics.OutcomeValidationError)
		s.logger.Warn("rejected answers", zap.Stringer("kind", in.Kind()), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	profile := profileOf(in)

	ctx, span := s.tracer.Start(ctx, "career.predict",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("input.kind", in.Kind().String())),
	)
	defer span.End()

	result, outcome, elapsed, err := s.classify(ctx, profile)
	s.metrics.ObserveModelCall(outcome, elapsed)
	s.metrics.ObservePrediction(outcome)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		s.logger.Error("prediction failed",
			zap.String("outcome", outcome),
			zap.Stringer("kind", in.Kind()),
			zap.Duration("model_latency", elapsed),
			zap.Error(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("career.recommended", result.RecommendedCareer),
		attribute.Float64("career.confidence", result.ConfidencePercentage),
	)
	s.logger.Info("prediction completed",
		zap.String("career", result.RecommendedCareer),
		zap.Float64("confidence", result.ConfidencePercentage),
		zap.Stringer("kind", in.Kind()),
		zap.Duration("model_latency", elapsed))

	return result, nil
}

func (s *PredictionService) classify(ctx context.Context, profile assessment.Profile) (*PredictionResult, string, time.Duration, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.classifier.Classify(callCtx, model.Request{Features: profile.Features()})
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("model call exceeded %s: %w", s.timeout, err)
		}
		return nil, metrics.OutcomeModelInvocation, elapsed, fmt.Errorf("%w: %w", ErrModelInvocation, err)
	}

	if resp.Failed() {
		msg := resp.Error
		if msg == "" {
			msg = "no error message"
		}
		return nil, metrics.OutcomeModelReported, elapsed, fmt.Errorf("%w: %s", ErrModelReported, msg)
	}

	result, err := assemble(profile, resp)
	if err != nil {
		return nil, metrics.OutcomeContractViolation, elapsed, err
	}
	return result, metrics.OutcomeSuccess, elapsed, nil
}

func profileOf(in assessment.Input) assessment.Profile {
	if in.Kind() == assessment.KindRawAnswers {
		return assessment.Aggregate(in.Answers())
	}
	return in.Profile()
}
