package assessment

import "math"

// Profile maps dimension codes to their averaged (or passed through) values.
type Profile map[Dimension]float64

// Clone returns an independent copy of p.
func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Values returns the profile values in dimension order; absent dimensions read as 0.
func (p Profile) Values() []float64 {
	out := make([]float64, 0, DimensionCount)
	for _, d := range Dimensions() {
		out = append(out, p[d])
	}
	return out
}

// Features returns the profile keyed by dimension code, as sent to the model.
func (p Profile) Features() map[string]float64 {
	out := make(map[string]float64, len(p))
	for k, v := range p {
		out[string(k)] = v
	}
	return out
}

// Aggregate reduces raw answers to a Profile. RIASEC and Gardner dimensions are the
// mean of their items rounded to one decimal; performance dimensions pass their single
// item through. Missing items count as 0, so callers validate first.
func Aggregate(answers RawAnswers) Profile {
	profile := make(Profile, DimensionCount)
	for _, row := range dimensionTable {
		if row.group == GroupPerformance {
			profile[row.code] = float64(answers[row.items[0]])
			continue
		}

		sum := 0
		for _, item := range row.items {
			sum += answers[item]
		}
		profile[row.code] = RoundTo(float64(sum)/float64(len(row.items)), 1)
	}
	return profile
}

// RoundTo rounds x to the given number of decimals, halves away from zero.
func RoundTo(x float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(x*scale) / scale
}
