package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/godilite/career-predictor/internal/assessment"
)

//nolint:gochecknoglobals // Cobra boilerplate
var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Check answer files and print the aggregated profile",
	Long: `Validates each answer file without calling the model. Raw answers are
aggregated into the 17-dimension profile; profiles are echoed back.

Exits non-zero when any file is invalid.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(validateCmd)
}

type validateReport struct {
	File    string             `json:"file"`
	Kind    string             `json:"kind,omitempty"`
	Valid   bool               `json:"valid"`
	Field   string             `json:"field,omitempty"`
	Error   string             `json:"error,omitempty"`
	Profile map[string]float64 `json:"profile,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) (err error) {
	reports := make([]validateReport, len(args))
	invalid := 0
	for i, path := range args {
		reports[i] = validateFile(path)
		if !reports[i].Valid {
			invalid++
		}
	}

	if err = writeJSON(cmd.OutOrStdout(), reports); err != nil {
		return err
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d files invalid", invalid, len(args))
	}
	return nil
}

func validateFile(path string) validateReport {
	report := validateReport{File: path}

	in, err := readInput(path)
	if err == nil {
		report.Kind = in.Kind().String()
		err = assessment.Validate(in)
	}
	if err != nil {
		report.Error = err.Error()
		var verr *assessment.ValidationError
		if errors.As(err, &verr) {
			report.Field = verr.Field
		}
		return report
	}

	report.Valid = true
	profile := in.Profile()
	if in.Kind() == assessment.KindRawAnswers {
		profile = assessment.Aggregate(in.Answers())
	}
	report.Profile = profile.Features()
	return report
}

func readInput(path string) (assessment.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return assessment.Input{}, fmt.Errorf("read %s: %w", path, err)
	}
	return assessment.ParseInputJSON(data)
}
