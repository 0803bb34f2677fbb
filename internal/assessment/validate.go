package assessment

import (
	"fmt"
	"strconv"
)

// ValidationError names the first offending item or dimension of an input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks that in is well formed. Raw answers must cover items 1..65 with values
// in [1,5]; missing items are reported before non-integer or out-of-range ones, lowest
// item first.
// Profiles must carry all 17 dimensions; their values are not range checked.
func Validate(in Input) error {
	switch in.kind {
	case KindRawAnswers:
		return validateAnswers(in.answers, in.fractional)
	case KindProfile:
		return validateProfile(in.profile)
	default:
		return &ValidationError{Field: "payload", Message: "answers payload is required"}
	}
}

func validateAnswers(answers RawAnswers, fractional map[int]bool) error {
	for item := 1; item <= ItemCount; item++ {
		if _, ok := answers[item]; !ok {
			return missingAnswer(item)
		}
	}
	for item := 1; item <= ItemCount; item++ {
		if fractional[item] {
			return answerNotInteger(item)
		}
		if v := answers[item]; v < minAnswer || v > maxAnswer {
			return answerOutOfRange(item)
		}
	}
	return nil
}

func missingAnswer(item int) *ValidationError {
	return &ValidationError{
		Field:   strconv.Itoa(item),
		Message: fmt.Sprintf("missing answer for item %d", item),
	}
}

func answerOutOfRange(item int) *ValidationError {
	return &ValidationError{
		Field:   strconv.Itoa(item),
		Message: fmt.Sprintf("answer for item %d must be between %d and %d", item, minAnswer, maxAnswer),
	}
}

func answerNotInteger(item int) *ValidationError {
	return &ValidationError{
		Field:   strconv.Itoa(item),
		Message: fmt.Sprintf("answer for item %d must be an integer", item),
	}
}

func validateProfile(profile Profile) error {
	for _, d := range Dimensions() {
		if _, ok := profile[d]; !ok {
			return &ValidationError{
				Field:   string(d),
				Message: fmt.Sprintf("missing dimension %s", d),
			}
		}
	}
	return nil
}
