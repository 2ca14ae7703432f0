package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cloudpilot-backend/internal/logger"
)

var (
	ErrMissingServerURL = errors.New("metrics server URL is required")
	ErrMissingQuery     = errors.New("query expression is required")
	ErrQueryFailed      = errors.New("metrics query failed")
)

// QueryResult mirrors the Prometheus HTTP API response envelope.
type QueryResult struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Client proxies range queries to a caller-supplied Prometheus endpoint,
// pinning the time window so the dashboard always shows the same
// lookback. Failed queries are surfaced, not retried.
type Client struct {
	httpClient *http.Client
	lookback   time.Duration
	step       time.Duration
}

func NewClient(timeout, lookback, step time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		lookback:   lookback,
		step:       step,
	}
}

// QueryRange runs the expression over the configured lookback window at
// the configured resolution.
func (c *Client) QueryRange(ctx context.Context, serverURL, query string) (*QueryResult, error) {
	if serverURL == "" {
		return nil, ErrMissingServerURL
	}
	if query == "" {
		return nil, ErrMissingQuery
	}

	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid metrics server URL: %w", err)
	}
	endpoint := base.JoinPath("api", "v1", "query_range")

	now := time.Now()
	params := url.Values{}
	params.Set("query", query)
	params.Set("start", strconv.FormatInt(now.Add(-c.lookback).Unix(), 10))
	params.Set("end", strconv.FormatInt(now.Unix(), 10))
	params.Set("step", strconv.Itoa(int(c.step.Seconds())))
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}

	logger.ExternalServiceCall("prometheus", "query_range", "query", query)
	resp, err := c.httpClient.Do(req)
	logger.ExternalServiceResult("prometheus", "query_range", err, "query", query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metrics: %w", err)
	}
	defer resp.Body.Close()

	var result QueryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode metrics response: %w", err)
	}
	if result.Status != "success" {
		return nil, fmt.Errorf("%w: status %q", ErrQueryFailed, result.Status)
	}
	return &result, nil
}
