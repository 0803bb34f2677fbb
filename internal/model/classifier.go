package model

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	TransportSubprocess = "subprocess"
	TransportHTTP       = "http"
)

// Classifier submits a feature vector to the classification model.
type Classifier interface {
	Classify(ctx context.Context, req Request) (Response, error)
}

// Config selects and parameterizes a model transport.
type Config struct {
	Transport string
	Command   string
	Args      []string
	URL       string
	Timeout   time.Duration
}

// New builds the classifier for cfg.Transport.
func New(cfg Config) (Classifier, error) {
	switch cfg.Transport {
	case TransportSubprocess, "":
		if cfg.Command == "" {
			return nil, fmt.Errorf("model command is required for the %s transport", TransportSubprocess)
		}
		return NewSubprocessClassifier(cfg.Command, cfg.Args), nil
	case TransportHTTP:
		if cfg.URL == "" {
			return nil, fmt.Errorf("model url is required for the %s transport", TransportHTTP)
		}
		var client *http.Client
		if cfg.Timeout > 0 {
			// leave headroom so the caller's context deadline fires first
			client = &http.Client{Timeout: cfg.Timeout + 5*time.Second}
		}
		return NewHTTPClassifier(cfg.URL, client), nil
	default:
		return nil, fmt.Errorf("unknown model transport %q", cfg.Transport)
	}
}
