package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/godilite/career-predictor/internal/assessment"
)

func BenchmarkPredict(b *testing.B) {
	svc := NewPredictionService(okClassifier(), zap.NewNop())
	in := assessment.NewRawInput(uniformAnswers(3))
	ctx := context.Background()

	b.ReportAllocs()
	for b.Loop() {
		if _, err := svc.Predict(ctx, in); err != nil {
			b.Fatal(err)
		}
	}
}
