package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBytes = 1 << 20

// HTTPClassifier posts requests to a model-serving endpoint.
type HTTPClassifier struct {
	url        string
	httpClient *http.Client
}

// NewHTTPClassifier creates a classifier for url. A nil client gets a default with a
// generous timeout; per-call deadlines come from the context.
func NewHTTPClassifier(url string, client *http.Client) *HTTPClassifier {
	if url == "" {
		panic("model url must not be empty")
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPClassifier{url: url, httpClient: client}
}

func (c *HTTPClassifier) Classify(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode model request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("create model request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("call model endpoint: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, fmt.Errorf("read model response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		if resp, err := DecodeResponse(data); err == nil && resp.Failed() {
			return resp, nil
		}
		return Response{}, fmt.Errorf("model endpoint returned status %d: %s", httpResp.StatusCode, truncate(string(data), 200))
	}

	return DecodeResponse(data)
}
