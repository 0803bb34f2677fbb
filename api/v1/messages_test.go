package careerv1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestToStruct(t *testing.T) {
	p := Prediction{
		ID:                   "abc",
		InputKind:            "profile",
		CreatedAt:            time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
		RecommendedCareer:    "Biologia",
		ConfidencePercentage: 33.3,
		TopCareers:           []Career{{Career: "Biologia", Probability: 0.333, Percentage: 33.3}},
		Profile:              map[string]float64{"N": 4.5},
	}

	s, err := ToStruct(p)

	require.NoError(t, err)
	assert.Equal(t, "abc", s.Fields["id"].GetStringValue())
	assert.Equal(t, "2025-05-01T08:00:00Z", s.Fields["created_at"].GetStringValue())
	assert.Equal(t, 33.3, s.Fields["porcentaje_confianza"].GetNumberValue())
	assert.Nil(t, s.Fields["user_id"])

	var back Prediction
	require.NoError(t, FromStruct(s, &back))
	assert.Equal(t, p, back)
}

func TestToStruct_NonObject(t *testing.T) {
	_, err := ToStruct([]int{1, 2})
	assert.Error(t, err)
}

func TestFromStruct(t *testing.T) {
	t.Run("predict request", func(t *testing.T) {
		s, err := structpb.NewStruct(map[string]any{
			"user_id": "u-1",
			"answers": map[string]any{"1": 3, "2": nil},
		})
		require.NoError(t, err)

		var req PredictRequest
		require.NoError(t, FromStruct(s, &req))

		assert.Equal(t, "u-1", req.UserID)
		assert.Equal(t, 3.0, req.Answers["1"])
		assert.Contains(t, req.Answers, "2")
		assert.Nil(t, req.Answers["2"])
	})

	t.Run("nil message", func(t *testing.T) {
		var req GetPredictionRequest
		require.NoError(t, FromStruct(nil, &req))
		assert.Empty(t, req.ID)
	})

	t.Run("wrong field type", func(t *testing.T) {
		s, err := structpb.NewStruct(map[string]any{"limit": "ten"})
		require.NoError(t, err)

		var req ListPredictionsRequest
		assert.Error(t, FromStruct(s, &req))
	})

	t.Run("fractional limit", func(t *testing.T) {
		s, err := structpb.NewStruct(map[string]any{"limit": 2.5})
		require.NoError(t, err)

		var req ListPredictionsRequest
		assert.Error(t, FromStruct(s, &req))
	})
}
