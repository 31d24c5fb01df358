package qloo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kapu/culturesphere-go/internal/constants"
	"github.com/kapu/culturesphere-go/internal/metrics"
	"github.com/kapu/culturesphere-go/internal/util"
	"github.com/kapu/culturesphere-go/pkg/errors"
	"go.uber.org/zap"
)

// Requester performs a single authenticated GET against the Qloo API and
// returns the raw body of a 2xx response.
type Requester interface {
	Get(ctx context.Context, path string, params url.Values, apiKey string) ([]byte, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = constants.QlooAPIConfig.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.QlooAPIConfig.Timeout
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// NewClientWithHTTP is used when the caller owns the transport (tests, proxies).
func NewClientWithHTTP(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	c := NewClient(ClientConfig{BaseURL: baseURL}, logger)
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string, params url.Values, apiKey string) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.NewAPIError("failed to create request", 0, map[string]any{
			"path": path,
		}).WithCause(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.QlooAPIConfig.APIKeyHeader, apiKey)

	c.logger.Debug("Qloo request",
		zap.String("path", path),
		zap.String("query", params.Encode()),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordQlooRequest(path, "network_error", time.Since(start))
		return nil, errors.NewAPIError("request failed", 0, map[string]any{
			"path": path,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordQlooRequest(path, "network_error", time.Since(start))
		return nil, errors.NewAPIError("failed to read response", 0, map[string]any{
			"path": path,
		}).WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordQlooRequest(path, "http_error", time.Since(start))
		return nil, errors.NewAPIError(
			fmt.Sprintf("Qloo API error: %s", resp.Status),
			resp.StatusCode,
			map[string]any{
				"path": path,
				"body": util.TruncateString(string(body), constants.QlooAPIConfig.ErrorBodyPreview),
			},
		).WithBody(string(body))
	}

	metrics.RecordQlooRequest(path, "ok", time.Since(start))
	return body, nil
}
