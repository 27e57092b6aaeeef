package offchain

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"solana-token-info/internal/logger"
)

// DefaultTimeout bounds a single off-chain document fetch.
const DefaultTimeout = 30 * time.Second

// HTTPClient fetches off-chain documents.
type HTTPClient interface {
	// Get performs a GET request and returns the body.
	// Non-2xx responses are errors.
	Get(ctx context.Context, url string) ([]byte, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// RealHTTPClient implements HTTPClient using the standard http package.
// It performs exactly one request per call.
type RealHTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a new real HTTP client.
func NewHTTPClient(timeout time.Duration) *RealHTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RealHTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs a GET request and returns the response body.
func (c *RealHTTPClient) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.WarnCtx(ctx, "failed to close response body", zap.Error(err), zap.String("url", url))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
