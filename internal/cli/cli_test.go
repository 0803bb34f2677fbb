package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/career-predictor/internal/model"
	"github.com/godilite/career-predictor/internal/service"
	"github.com/godilite/career-predictor/internal/service/mocks"
)

func writeAnswers(t *testing.T, dir, name string, v int) string {
	t.Helper()
	payload := make(map[string]int, 65)
	for i := 1; i <= 65; i++ {
		payload[strconv.Itoa(i)] = v
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func stubClassifier(t *testing.T, fn func(ctx context.Context, req model.Request) (model.Response, error)) *mocks.MockClassifier {
	t.Helper()
	m := &mocks.MockClassifier{ClassifyFunc: fn}
	orig := newClassifier
	newClassifier = func(model.Config) (service.Classifier, error) { return m, nil }
	t.Cleanup(func() { newClassifier = orig })
	return m
}

func rankedModel(ctx context.Context, req model.Request) (model.Response, error) {
	confidence := 0.35
	return model.Response{
		RecommendedCareer: "Medicina",
		Confidence:        &confidence,
		Ranking: []model.Candidate{
			{Career: "Medicina", Probability: 0.35},
			{Career: "Biologia", Probability: 0.25},
			{Career: "Enfermeria", Probability: 0.15},
			{Career: "Psicologia", Probability: 0.1},
			{Career: "Quimica", Probability: 0.05},
		},
	}, nil
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid raw answers print the profile", func(t *testing.T) {
		path := writeAnswers(t, dir, "ok.json", 3)

		out, err := execute(t, "validate", path)

		require.NoError(t, err)
		var reports []validateReport
		require.NoError(t, json.Unmarshal([]byte(out), &reports))
		require.Len(t, reports, 1)
		assert.True(t, reports[0].Valid)
		assert.Equal(t, "raw_answers", reports[0].Kind)
		assert.Len(t, reports[0].Profile, 17)
		assert.Equal(t, 3.0, reports[0].Profile["R"])
	})

	t.Run("invalid file fails the run but is still reported", func(t *testing.T) {
		good := writeAnswers(t, dir, "good.json", 2)
		bad := writeAnswers(t, dir, "bad.json", 7)

		out, err := execute(t, "validate", good, bad)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 files invalid")
		var reports []validateReport
		require.NoError(t, json.Unmarshal([]byte(out), &reports))
		require.Len(t, reports, 2)
		assert.True(t, reports[0].Valid)
		assert.False(t, reports[1].Valid)
		assert.Equal(t, "1", reports[1].Field)
		assert.Equal(t, "answer for item 1 must be between 1 and 5", reports[1].Error)
	})

	t.Run("unreadable file", func(t *testing.T) {
		out, err := execute(t, "validate", filepath.Join(dir, "missing.json"))

		require.Error(t, err)
		assert.Contains(t, out, "missing.json")
	})

	t.Run("requires a file", func(t *testing.T) {
		_, err := execute(t, "validate")
		assert.Error(t, err)
	})
}

func TestPredictCommand(t *testing.T) {
	dir := t.TempDir()

	t.Run("results keep argument order", func(t *testing.T) {
		stubClassifier(t, rankedModel)
		paths := []string{
			writeAnswers(t, dir, "a.json", 1),
			writeAnswers(t, dir, "b.json", 3),
			writeAnswers(t, dir, "c.json", 5),
		}

		out, err := execute(t, append([]string{"predict", "--concurrency", "2"}, paths...)...)

		require.NoError(t, err)
		var reports []predictReport
		require.NoError(t, json.Unmarshal([]byte(out), &reports))
		require.Len(t, reports, 3)
		for i, r := range reports {
			assert.Equal(t, paths[i], r.File)
			require.NotNil(t, r.Result)
			assert.Equal(t, "Medicina", r.Result.RecommendedCareer)
			assert.Equal(t, 35.0, r.Result.ConfidencePercentage)
			assert.Len(t, r.Result.TopCareers, 5)
		}
		assert.Equal(t, 5.0, reports[2].Result.Profile["LM"])
	})

	t.Run("invalid answers never reach the model", func(t *testing.T) {
		m := stubClassifier(t, rankedModel)
		bad := writeAnswers(t, dir, "bad.json", 0)

		out, err := execute(t, "predict", "--concurrency", "1", bad)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 1 predictions failed")
		assert.Contains(t, out, "invalid answers")
		assert.Equal(t, 0, m.Calls())
	})

	t.Run("model failure is reported per file", func(t *testing.T) {
		stubClassifier(t, func(ctx context.Context, req model.Request) (model.Response, error) {
			if req.Features["R"] == 4 {
				return model.Response{}, errors.New("boom")
			}
			return rankedModel(ctx, req)
		})
		ok := writeAnswers(t, dir, "ok.json", 2)
		fail := writeAnswers(t, dir, "fail.json", 4)

		out, err := execute(t, "predict", "--concurrency", "4", ok, fail)

		require.Error(t, err)
		var reports []predictReport
		require.NoError(t, json.Unmarshal([]byte(out), &reports))
		require.Len(t, reports, 2)
		assert.NotNil(t, reports[0].Result)
		assert.Nil(t, reports[1].Result)
		assert.Contains(t, reports[1].Error, "model invocation failed")
	})

	t.Run("rejects zero concurrency", func(t *testing.T) {
		stubClassifier(t, rankedModel)
		path := writeAnswers(t, dir, "z.json", 3)

		_, err := execute(t, "predict", "--concurrency", "0", path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "concurrency must be at least 1")
	})

	t.Run("bad config surfaces before any model call", func(t *testing.T) {
		m := stubClassifier(t, rankedModel)
		t.Setenv("MODEL_TRANSPORT", "carrier-pigeon")
		path := writeAnswers(t, dir, "cfg.json", 3)

		_, err := execute(t, "predict", "--concurrency", "1", path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config")
		assert.Equal(t, 0, m.Calls())
	})
}
