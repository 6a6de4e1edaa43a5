package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"pos-terminal/internal/util"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Client talks to the storefront backend. Every response is the
// {success, data, message} envelope; anything else is ErrUnavailable.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a backend client rooted at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: util.GetLogger(),
	}
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Token      string          `json:"token,omitempty"`
	User       json.RawMessage `json:"user,omitempty"`
	ResetToken string          `json:"resetToken,omitempty"`
}

// call describes one backend request. route is the templated path used as a metric label.
type call struct {
	method string
	path   string
	route  string
	token  string
	body   any
}

func (c *Client) do(ctx context.Context, cl call) (*envelope, error) {
	var reader io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		util.BackendRequestDuration.WithLabelValues(cl.method, cl.route, "error").Observe(time.Since(start).Seconds())
		c.logger.Warn("Backend request failed",
			zap.String("method", cl.method),
			zap.String("route", cl.route),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	util.BackendRequestDuration.WithLabelValues(cl.method, cl.route, strconv.Itoa(resp.StatusCode)).
		Observe(time.Since(start).Seconds())

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: undecodable response (status %d): %v", ErrUnavailable, resp.StatusCode, err)
	}

	if !env.Success {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	return &env, nil
}

func decodeData(env *envelope, dst any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: response carried no data", ErrUnavailable)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("%w: malformed data: %v", ErrUnavailable, err)
	}
	return nil
}
