package assessment

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// RawAnswers maps item numbers (1..65) to Likert answers.
type RawAnswers map[int]int

// Kind tells which variant an Input holds.
type Kind int

const (
	KindRawAnswers Kind = iota + 1
	KindProfile
)

func (k Kind) String() string {
	switch k {
	case KindRawAnswers:
		return "raw_answers"
	case KindProfile:
		return "profile"
	default:
		return "unknown"
	}
}

// Input is either a set of raw questionnaire answers or an already aggregated profile.
type Input struct {
	kind    Kind
	answers RawAnswers
	profile Profile

	// raw items that were not integers; read only by Validate
	fractional map[int]bool
}

// NewRawInput wraps per-item answers.
func NewRawInput(answers RawAnswers) Input {
	return Input{kind: KindRawAnswers, answers: answers.clone()}
}

// NewProfileInput wraps a pre-aggregated profile.
func NewProfileInput(profile Profile) Input {
	return Input{kind: KindProfile, profile: profile.Clone()}
}

func (in Input) Kind() Kind { return in.kind }

// Answers returns a copy of the raw answers; nil for profile inputs.
func (in Input) Answers() RawAnswers { return in.answers.clone() }

// Profile returns a copy of the pre-aggregated profile; nil for raw inputs.
func (in Input) Profile() Profile { return in.profile.Clone() }

func (a RawAnswers) clone() RawAnswers {
	if a == nil {
		return nil
	}
	out := make(RawAnswers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// payloadSchema only checks the payload shape; completeness and ranges are left to Validate.
var payloadSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"additionalProperties": {"type": ["number", "null"]}
}`)

// ParseInput turns a decoded JSON object into an Input. The payload holds raw answers
// when item 1 is present (as "1" or "q1"), otherwise a dimension profile. Null values
// are treated as absent.
func ParseInput(payload map[string]any) (Input, error) {
	if payload == nil {
		return Input{}, &ValidationError{Field: "payload", Message: "answers payload is required"}
	}

	result, err := gojsonschema.Validate(payloadSchema, gojsonschema.NewGoLoader(payload))
	if err != nil {
		return Input{}, &ValidationError{Field: "payload", Message: fmt.Sprintf("answers payload is malformed: %v", err)}
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return Input{}, &ValidationError{Field: "payload", Message: "answers payload is malformed: " + strings.Join(errs, "; ")}
	}

	if isRawPayload(payload) {
		answers, fractional := parseAnswers(payload)
		return Input{kind: KindRawAnswers, answers: answers, fractional: fractional}, nil
	}

	profile := make(Profile, DimensionCount)
	for _, d := range Dimensions() {
		v, ok := toFloat(payload[string(d)])
		if !ok {
			continue
		}
		profile[d] = v
	}
	return Input{kind: KindProfile, profile: profile}, nil
}

// ParseInputJSON decodes a JSON object and parses it with ParseInput.
func ParseInputJSON(data []byte) (Input, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return Input{}, &ValidationError{Field: "payload", Message: fmt.Sprintf("answers payload is not a JSON object: %v", err)}
	}
	return ParseInput(payload)
}

func isRawPayload(payload map[string]any) bool {
	if _, ok := payload["1"]; ok {
		return true
	}
	_, ok := payload["q1"]
	return ok
}

// parseAnswers returns the answers found in payload plus the items whose values were
// not integers. Value problems are left to Validate so that its ordering applies.
func parseAnswers(payload map[string]any) (RawAnswers, map[int]bool) {
	values := make(map[int]float64, ItemCount)

	// prefixed keys first so that a plain "12" wins over "q12"
	for _, prefixed := range []bool{true, false} {
		for key, raw := range payload {
			item, isPrefixed, ok := itemKey(key)
			if !ok || isPrefixed != prefixed {
				continue
			}
			v, ok := toFloat(raw)
			if !ok {
				delete(values, item)
				continue
			}
			values[item] = v
		}
	}

	answers := make(RawAnswers, len(values))
	var fractional map[int]bool
	for item := 1; item <= ItemCount; item++ {
		v, ok := values[item]
		if !ok {
			continue
		}
		switch {
		case v != math.Trunc(v):
			if fractional == nil {
				fractional = make(map[int]bool)
			}
			fractional[item] = true
			answers[item] = 0
		case v < math.MinInt32 || v > math.MaxInt32:
			// out of any sane range; keep it invalid for the range check
			answers[item] = 0
		default:
			answers[item] = int(v)
		}
	}
	return answers, fractional
}

func itemKey(key string) (item int, prefixed bool, ok bool) {
	trimmed := key
	if strings.HasPrefix(key, "q") || strings.HasPrefix(key, "Q") {
		trimmed = key[1:]
		prefixed = true
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 1 || n > ItemCount {
		return 0, false, false
	}
	return n, prefixed, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
