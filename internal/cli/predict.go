package cli

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/godilite/career-predictor/internal/config"
	"github.com/godilite/career-predictor/internal/model"
	"github.com/godilite/career-predictor/internal/service"
)

const defaultConcurrency = 4

//nolint:gochecknoglobals // Cobra boilerplate
var predictConcurrency int

// replaced in tests
//
//nolint:gochecknoglobals // test seam
var newClassifier = func(cfg model.Config) (service.Classifier, error) {
	return model.New(cfg)
}

//nolint:gochecknoglobals // Cobra boilerplate
var predictCmd = &cobra.Command{
	Use:   "predict FILE...",
	Short: "Predict careers for one or more answer files",
	Long: `Runs every answer file through validation, aggregation and the configured
model, printing one result per file in argument order. Files are scored
concurrently; each model call is still bounded by MODEL_TIMEOUT.

Exits non-zero when any prediction fails.

Examples:
  careerctl predict answers.json
  careerctl predict --concurrency 8 cohort/*.json
  MODEL_TRANSPORT=http MODEL_URL=http://model:8000/predict careerctl predict a.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPredict,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(predictCmd)
	predictCmd.Flags().IntVarP(&predictConcurrency, "concurrency", "c", defaultConcurrency, "Maximum concurrent model calls")
}

type predictReport struct {
	File   string                    `json:"file"`
	Result *service.PredictionResult `json:"result,omitempty"`
	Error  string                    `json:"error,omitempty"`
}

func runPredict(cmd *cobra.Command, args []string) (err error) {
	if predictConcurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", predictConcurrency)
	}

	var cfg *config.Config
	cfg, err = loadConfig()
	if err != nil {
		return err
	}

	var logger *zap.Logger
	logger, err = config.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var classifier service.Classifier
	classifier, err = newClassifier(cfg.Model())
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}

	svc := service.NewPredictionService(classifier, logger, service.WithTimeout(cfg.ModelTimeout))
	reports := predictAll(cmd.Context(), svc, args, predictConcurrency)

	if err = writeJSON(cmd.OutOrStdout(), reports); err != nil {
		return err
	}

	failed := 0
	for _, r := range reports {
		if r.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d predictions failed", failed, len(reports))
	}
	return nil
}

func predictAll(ctx context.Context, svc *service.PredictionService, paths []string, concurrency int) []predictReport {
	if ctx == nil {
		ctx = context.Background()
	}

	reports := make([]predictReport, len(paths))
	reportsMu := sync.Mutex{}

	p := pool.New().WithMaxGoroutines(concurrency)
	for i, path := range paths {
		p.Go(func() {
			report := predictReport{File: path}
			in, err := readInput(path)
			if err == nil {
				report.Result, err = svc.Predict(ctx, in)
			}
			if err != nil {
				report.Error = err.Error()
			}

			reportsMu.Lock()
			reports[i] = report
			reportsMu.Unlock()
		})
	}
	p.Wait()

	return reports
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		if err := os.Setenv("CONFIG_FILE", configFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !verbose {
		cfg.LogLevel = "error"
	}
	return cfg, nil
}
