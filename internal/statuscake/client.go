package statuscake

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.statuscake.com/v1"

// Config holds StatusCake API connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client reads uptime test details and alert history from the StatusCake API.
type Client struct {
	cfg        *Config
	baseURL    string
	httpClient *http.Client
}

func New(cfg *Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg:     cfg,
		baseURL: base,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// UptimeTest is the subset of test details the summarizer consumes.
type UptimeTest struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Uptime float64 `json:"uptime"`
}

// UptimeAlert is one entry of a test's alert history. TriggeredAt is left as
// the API's fixed-offset string; parsing it is the summarizer's concern.
type UptimeAlert struct {
	Status      string `json:"status"`
	StatusCode  int    `json:"status_code"`
	TriggeredAt string `json:"triggered_at"`
}

type uptimeTestResponse struct {
	Data UptimeTest `json:"data"`
}

type uptimeAlertsResponse struct {
	Data []UptimeAlert `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("statuscake request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("statuscake %s failed with status %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode statuscake response: %w", err)
	}
	return nil
}

// UptimeTest fetches today's details for one uptime test.
func (c *Client) UptimeTest(ctx context.Context, testID string) (*UptimeTest, error) {
	var resp uptimeTestResponse
	if err := c.get(ctx, "/uptime/"+testID, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UptimeAlerts fetches the alert history for one uptime test, newest first.
func (c *Client) UptimeAlerts(ctx context.Context, testID string) ([]UptimeAlert, error) {
	var resp uptimeAlertsResponse
	if err := c.get(ctx, "/uptime/"+testID+"/alerts", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
