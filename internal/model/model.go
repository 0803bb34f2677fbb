// Package model talks to the external career classification model.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrMalformedResponse is returned when the model output cannot be decoded.
var ErrMalformedResponse = errors.New("malformed model response")

// Request is the payload submitted to the model.
type Request struct {
	Features map[string]float64 `json:"features"`
}

// Candidate is one ranked career as reported by the model.
type Candidate struct {
	Career      string  `json:"carrera"`
	Probability float64 `json:"probabilidad"`
}

// Response is the model output. Success is nil when the model did not report the flag;
// Confidence is nil when confianza was absent or null.
type Response struct {
	Success           *bool       `json:"success,omitempty"`
	Error             string      `json:"error,omitempty"`
	RecommendedCareer string      `json:"carrera_recomendada"`
	Confidence        *float64    `json:"confianza"`
	Ranking           []Candidate `json:"top_carreras"`
}

// Failed reports whether the model flagged its own failure.
func (r Response) Failed() bool {
	return r.Success != nil && !*r.Success
}

var responseSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"properties": {
		"success": {"type": "boolean"},
		"error": {"type": ["string", "null"]},
		"carrera_recomendada": {"type": ["string", "null"]},
		"confianza": {"type": ["number", "null"]},
		"top_carreras": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"properties": {
					"carrera": {"type": "string"},
					"probabilidad": {"type": "number"}
				},
				"required": ["carrera", "probabilidad"]
			}
		}
	}
}`)

// DecodeResponse parses model output. When the whole output is not JSON, the last
// non-empty line is tried, since model processes may print diagnostics first.
func DecodeResponse(out []byte) (Response, error) {
	payload := bytes.TrimSpace(out)
	if len(payload) == 0 {
		return Response{}, fmt.Errorf("%w: empty output", ErrMalformedResponse)
	}
	if !json.Valid(payload) {
		payload = lastLine(payload)
		if !json.Valid(payload) {
			return Response{}, fmt.Errorf("%w: output is not JSON: %s", ErrMalformedResponse, truncate(string(out), 200))
		}
	}

	result, err := gojsonschema.Validate(responseSchema, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return Response{}, fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(errs, "; "))
	}

	var resp Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return resp, nil
}

func lastLine(out []byte) []byte {
	lines := bytes.Split(out, []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if line := bytes.TrimSpace(lines[i]); len(line) > 0 {
			return line
		}
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
