package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brightpath-advisory/concierge/internal/utils"
)

// ErrProvider wraps upstream provider failures. The orchestrator recovers
// these with a generic fallback reply; retry policy lives above this client.
var ErrProvider = errors.New("model provider error")

const (
	defaultEndpoint  = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

// Client is the language model contract consumed by agents.
type Client interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// HTTPClient calls a messages-API endpoint over HTTP.
type HTTPClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	timeout  time.Duration
}

// NewHTTPClient creates a provider client. An empty endpoint selects the
// default messages API.
func NewHTTPClient(endpoint, apiKey string, timeout time.Duration) *HTTPClient {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		timeout:  timeout,
	}
}

// Complete implements Client. Each call carries an independent timeout.
func (c *HTTPClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	body, err := utils.MarshalNoEscape(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	start := time.Now()
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrProvider, err)
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrProvider, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrProvider, resp.Error.Type, resp.Error.Message)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrProvider, httpResp.StatusCode, utils.Truncate(string(respBody), 200))
	}

	log.Debug().
		Str("model", resp.Model).
		Str("stop_reason", resp.StopReason).
		Int("input_tokens", resp.Usage.InputTokens).
		Int("output_tokens", resp.Usage.OutputTokens).
		Dur("latency", time.Since(start)).
		Msg("llm: completion")

	return &resp, nil
}
