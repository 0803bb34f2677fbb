package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/career-predictor/internal/repository/models"
)

var ErrNotFound = errors.New("prediction not found")

// fixed width so text ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
	CREATE TABLE IF NOT EXISTS predictions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL DEFAULT '',
		input_kind TEXT NOT NULL,
		recommended_career TEXT NOT NULL,
		confidence_percentage REAL NOT NULL,
		top_careers TEXT NOT NULL,
		profile TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_predictions_user_created ON predictions (user_id, created_at DESC);
`

const selectColumns = `id, user_id, input_kind, recommended_career, confidence_percentage, top_careers, profile, created_at`

type PredictionRepository struct {
	db *sql.DB
}

func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	if db == nil {
		panic("db must not be nil")
	}
	return &PredictionRepository{db: db}
}

// Migrate creates the predictions table if it does not exist.
func (r *PredictionRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate predictions: %w", err)
	}
	return nil
}

func (r *PredictionRepository) Save(ctx context.Context, rec models.PredictionRecord) error {
	if rec.ID == "" {
		return errors.New("save prediction: id is required")
	}
	top, err := json.Marshal(rec.TopCareers)
	if err != nil {
		return fmt.Errorf("encode top careers: %w", err)
	}
	profile, err := json.Marshal(rec.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	const query = `
		INSERT INTO predictions (id, user_id, input_kind, recommended_career, confidence_percentage, top_careers, profile, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.InputKind, rec.RecommendedCareer, rec.ConfidencePercentage,
		string(top), string(profile), rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (r *PredictionRepository) Get(ctx context.Context, id string) (models.PredictionRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM predictions WHERE id = ?`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PredictionRecord{}, ErrNotFound
		}
		return models.PredictionRecord{}, fmt.Errorf("query prediction %s: %w", id, err)
	}
	return rec, nil
}

// ListByUser returns the newest predictions of a user first.
func (r *PredictionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.PredictionRecord, error) {
	query := `SELECT ` + selectColumns + `
		FROM predictions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var out []models.PredictionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (models.PredictionRecord, error) {
	var (
		rec       models.PredictionRecord
		top       string
		profile   string
		createdAt string
	)
	err := s.Scan(&rec.ID, &rec.UserID, &rec.InputKind, &rec.RecommendedCareer,
		&rec.ConfidencePercentage, &top, &profile, &createdAt)
	if err != nil {
		return models.PredictionRecord{}, err
	}

	if err := json.Unmarshal([]byte(top), &rec.TopCareers); err != nil {
		return models.PredictionRecord{}, fmt.Errorf("decode top careers: %w", err)
	}
	if err := json.Unmarshal([]byte(profile), &rec.Profile); err != nil {
		return models.PredictionRecord{}, fmt.Errorf("decode profile: %w", err)
	}
	rec.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return models.PredictionRecord{}, fmt.Errorf("parse created_at: %w", err)
	}
	return rec, nil
}
