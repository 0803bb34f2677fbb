package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/career-predictor/internal/repository"
	"github.com/godilite/career-predictor/internal/repository/models"
)

func setupTestDB(t *testing.T) *repository.PredictionRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a fresh database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewPredictionRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func sampleRecord(id, userID string, createdAt time.Time) models.PredictionRecord {
	return models.PredictionRecord{
		ID:                   id,
		UserID:               userID,
		InputKind:            "raw_answers",
		RecommendedCareer:    "Ingenieria de Sistemas",
		ConfidencePercentage: 61.3,
		TopCareers: []models.CareerEntry{
			{Career: "Ingenieria de Sistemas", Probability: 0.613, Percentage: 61.3},
			{Career: "Matematicas", Probability: 0.2, Percentage: 20},
			{Career: "Fisica", Probability: 0.1, Percentage: 10},
			{Career: "Economia", Probability: 0.05, Percentage: 5},
			{Career: "Arquitectura", Probability: 0.037, Percentage: 3.7},
		},
		Profile:   map[string]float64{"R": 3.2, "I": 4.8, "Rendimiento_STEM": 5},
		CreatedAt: createdAt,
	}
}

func TestPredictionRepository_Integration(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	t.Run("migrate is idempotent", func(t *testing.T) {
		repo := setupTestDB(t)
		assert.NoError(t, repo.Migrate(ctx))
	})

	t.Run("save and get round trip", func(t *testing.T) {
		repo := setupTestDB(t)
		rec := sampleRecord("pred-1", "user-7", base.Add(123*time.Millisecond))

		require.NoError(t, repo.Save(ctx, rec))
		got, err := repo.Get(ctx, "pred-1")

		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, rec.UserID, got.UserID)
		assert.Equal(t, rec.InputKind, got.InputKind)
		assert.Equal(t, rec.RecommendedCareer, got.RecommendedCareer)
		assert.Equal(t, rec.ConfidencePercentage, got.ConfidencePercentage)
		assert.Equal(t, rec.TopCareers, got.TopCareers)
		assert.Equal(t, rec.Profile, got.Profile)
		assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("non-UTC timestamps are normalized", func(t *testing.T) {
		repo := setupTestDB(t)
		loc := time.FixedZone("UTC-5", -5*3600)
		rec := sampleRecord("pred-tz", "", base.In(loc))

		require.NoError(t, repo.Save(ctx, rec))
		got, err := repo.Get(ctx, "pred-tz")

		require.NoError(t, err)
		assert.True(t, base.Equal(got.CreatedAt))
		assert.Equal(t, time.UTC, got.CreatedAt.Location())
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := setupTestDB(t)

		_, err := repo.Get(ctx, "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("duplicate id", func(t *testing.T) {
		repo := setupTestDB(t)
		rec := sampleRecord("pred-1", "user-7", base)

		require.NoError(t, repo.Save(ctx, rec))
		err := repo.Save(ctx, rec)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "insert prediction")
	})

	t.Run("empty id is rejected", func(t *testing.T) {
		repo := setupTestDB(t)

		err := repo.Save(ctx, sampleRecord("", "user-7", base))

		assert.Error(t, err)
	})

	t.Run("list by user newest first with limit", func(t *testing.T) {
		repo := setupTestDB(t)
		for i := 0; i < 5; i++ {
			rec := sampleRecord(fmt.Sprintf("u1-%d", i), "user-1", base.Add(time.Duration(i)*time.Hour))
			require.NoError(t, repo.Save(ctx, rec))
		}
		require.NoError(t, repo.Save(ctx, sampleRecord("u2-0", "user-2", base.Add(10*time.Hour))))

		got, err := repo.ListByUser(ctx, "user-1", 3)

		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "u1-4", got[0].ID)
		assert.Equal(t, "u1-3", got[1].ID)
		assert.Equal(t, "u1-2", got[2].ID)
	})

	t.Run("sub-second ordering", func(t *testing.T) {
		repo := setupTestDB(t)
		require.NoError(t, repo.Save(ctx, sampleRecord("a", "user-1", base)))
		require.NoError(t, repo.Save(ctx, sampleRecord("b", "user-1", base.Add(100*time.Millisecond))))

		got, err := repo.ListByUser(ctx, "user-1", 10)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "b", got[0].ID)
	})

	t.Run("user without predictions", func(t *testing.T) {
		repo := setupTestDB(t)

		got, err := repo.ListByUser(ctx, "nobody", 10)

		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestNewPredictionRepository_NilDB(t *testing.T) {
	assert.Panics(t, func() {
		repository.NewPredictionRepository(nil)
	})
}
