package models

import "time"

type CareerEntry struct {
	Career      string  `json:"carrera"`
	Probability float64 `json:"probabilidad"`
	Percentage  float64 `json:"porcentaje"`
}

// PredictionRecord is a stored prediction.
type PredictionRecord struct {
	ID                   string
	UserID               string
	InputKind            string
	RecommendedCareer    string
	ConfidencePercentage float64
	TopCareers           []CareerEntry
	Profile              map[string]float64
	CreatedAt            time.Time
}
