package careerv1

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type PredictRequest struct {
	UserID  string         `json:"user_id,omitempty"`
	Answers map[string]any `json:"answers"`
}

type GetPredictionRequest struct {
	ID string `json:"id"`
}

type ListPredictionsRequest struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit,omitempty"`
}

type Career struct {
	Career      string  `json:"carrera"`
	Probability float64 `json:"probabilidad"`
	Percentage  float64 `json:"porcentaje"`
}

// Prediction is a stored prediction as returned to clients.
type Prediction struct {
	ID                   string             `json:"id"`
	UserID               string             `json:"user_id,omitempty"`
	InputKind            string             `json:"input_kind"`
	CreatedAt            time.Time          `json:"created_at"`
	RecommendedCareer    string             `json:"carrera_recomendada"`
	ConfidencePercentage float64            `json:"porcentaje_confianza"`
	TopCareers           []Career           `json:"top_5_carreras"`
	Profile              map[string]float64 `json:"perfil"`
}

type ListPredictionsResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// ToStruct converts a JSON-serializable value into a Struct message.
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("build struct message: %w", err)
	}
	return out, nil
}

// FromStruct decodes a Struct message into v.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		s = new(structpb.Struct)
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("read struct message: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}
