package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/godilite/career-predictor/internal/model"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	LogLevel              string
	DBPath                string
	DBDriver              string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	CacheTTL              time.Duration
	GRPCPort              int
	GRPCReflectionEnabled bool
	MetricsAddr           string

	ModelTransport string
	ModelCommand   string
	ModelArgs      []string
	ModelURL       string
	ModelTimeout   time.Duration
}

var defaults = map[string]any{
	"APP_ENV":                 "development",
	"LOG_LEVEL":               "info",
	"DB_DRIVER":               "sqlite3",
	"DB_PATH":                 "./data/predictions.db",
	"REDIS_ADDR":              "localhost:6379",
	"REDIS_PASSWORD":          "",
	"REDIS_DB":                0,
	"CACHE_TTL":               "10m",
	"GRPC_PORT":               50051,
	"GRPC_REFLECTION_ENABLED": false,
	"METRICS_ADDR":            ":9090",
	"MODEL_TRANSPORT":         model.TransportSubprocess,
	"MODEL_COMMAND":           "python3",
	"MODEL_ARGS":              "model/predict.py",
	"MODEL_URL":               "http://localhost:8000/predict",
	"MODEL_TIMEOUT":           "10s",
}

// LoadFromEnv loads configuration from environment variables, optionally layered over
// the YAML file named by CONFIG_FILE.
func LoadFromEnv() (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		AppEnv:                v.GetString("APP_ENV"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		DBPath:                v.GetString("DB_PATH"),
		DBDriver:              v.GetString("DB_DRIVER"),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		RedisDB:               v.GetInt("REDIS_DB"),
		CacheTTL:              v.GetDuration("CACHE_TTL"),
		GRPCPort:              v.GetInt("GRPC_PORT"),
		GRPCReflectionEnabled: v.GetBool("GRPC_REFLECTION_ENABLED"),
		MetricsAddr:           v.GetString("METRICS_ADDR"),
		ModelTransport:        strings.ToLower(v.GetString("MODEL_TRANSPORT")),
		ModelCommand:          v.GetString("MODEL_COMMAND"),
		ModelArgs:             strings.Fields(v.GetString("MODEL_ARGS")),
		ModelURL:              v.GetString("MODEL_URL"),
		ModelTimeout:          v.GetDuration("MODEL_TIMEOUT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.ModelTransport {
	case model.TransportSubprocess:
		if c.ModelCommand == "" {
			errs = append(errs, errors.New("MODEL_COMMAND is required for the subprocess transport"))
		}
	case model.TransportHTTP:
		if c.ModelURL == "" {
			errs = append(errs, errors.New("MODEL_URL is required for the http transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MODEL_TRANSPORT %q", c.ModelTransport))
	}
	if c.ModelTimeout <= 0 {
		errs = append(errs, errors.New("MODEL_TIMEOUT must be positive"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("GRPC_PORT %d out of range", c.GRPCPort))
	}
	if c.DBDriver == "" || c.DBPath == "" {
		errs = append(errs, errors.New("DB_DRIVER and DB_PATH are required"))
	}
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Model returns the classifier settings.
func (c *Config) Model() model.Config {
	return model.Config{
		Transport: c.ModelTransport,
		Command:   c.ModelCommand,
		Args:      append([]string(nil), c.ModelArgs...),
		URL:       c.ModelURL,
		Timeout:   c.ModelTimeout,
	}
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}
