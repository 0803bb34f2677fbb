package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/godilite/career-predictor/internal/assessment"
	"github.com/godilite/career-predictor/internal/model"
)

// TopCareerCount is the number of ranked careers in every result.
const TopCareerCount = 5

// CareerCandidate is one of the ranked careers of a PredictionResult.
type CareerCandidate struct {
	Career      string  `json:"carrera"`
	Probability float64 `json:"probabilidad"`
	Percentage  float64 `json:"porcentaje"`
}

// PredictionResult is the outcome of one successful prediction. It is built once
// and handed to the caller, who owns it from then on.
type PredictionResult struct {
	RecommendedCareer    string             `json:"carrera_recomendada"`
	ConfidencePercentage float64            `json:"porcentaje_confianza"`
	TopCareers           []CareerCandidate  `json:"top_5_carreras"`
	Profile              assessment.Profile `json:"perfil"`
}

// assemble turns a model response into a PredictionResult, failing when the
// response cannot satisfy the result invariants.
func assemble(profile assessment.Profile, resp model.Response) (*PredictionResult, error) {
	recommended := strings.TrimSpace(resp.RecommendedCareer)
	if recommended == "" {
		return nil, fmt.Errorf("%w: missing recommended career", ErrContractViolation)
	}
	if resp.Confidence == nil {
		return nil, fmt.Errorf("%w: missing confidence", ErrContractViolation)
	}
	confidence := *resp.Confidence
	if !isProbability(confidence) {
		return nil, fmt.Errorf("%w: confidence %v outside [0,1]", ErrContractViolation, confidence)
	}
	if len(resp.Ranking) < TopCareerCount {
		return nil, fmt.Errorf("%w: expected at least %d ranked careers, got %d",
			ErrContractViolation, TopCareerCount, len(resp.Ranking))
	}

	ranking := make([]model.Candidate, len(resp.Ranking))
	copy(ranking, resp.Ranking)
	for _, c := range ranking {
		if !isProbability(c.Probability) {
			return nil, fmt.Errorf("%w: probability %v for %q outside [0,1]",
				ErrContractViolation, c.Probability, c.Career)
		}
	}

	// equal probabilities keep the model's order
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Probability > ranking[j].Probability
	})

	top := make([]CareerCandidate, 0, TopCareerCount)
	seen := make(map[string]struct{}, TopCareerCount)
	for _, c := range ranking[:TopCareerCount] {
		name := strings.TrimSpace(c.Career)
		if name == "" {
			return nil, fmt.Errorf("%w: ranked career without a name", ErrContractViolation)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate career %q in top %d", ErrContractViolation, name, TopCareerCount)
		}
		seen[name] = struct{}{}
		top = append(top, CareerCandidate{
			Career:      name,
			Probability: c.Probability,
			Percentage:  toPercentage(c.Probability),
		})
	}

	return &PredictionResult{
		RecommendedCareer:    recommended,
		ConfidencePercentage: toPercentage(confidence),
		TopCareers:           top,
		Profile:              profile.Clone(),
	}, nil
}

func isProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}

func toPercentage(p float64) float64 {
	return assessment.RoundTo(p*100, 1)
}
