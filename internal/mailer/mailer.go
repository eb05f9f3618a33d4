package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Identity is a named email address.
type Identity struct {
	Email string `json:"Email"`
	Name  string `json:"Name"`
}

// Config holds the escalation email endpoint and fixed sender/recipient.
type Config struct {
	Endpoint string
	APIKey   string
	From     Identity
	To       Identity
	Timeout  time.Duration
}

// Client posts escalation emails to an API-key authenticated JSON endpoint.
// It is used only when ticket creation fails; there is no further tier.
type Client struct {
	cfg        *Config
	httpClient *http.Client
}

func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type message struct {
	From        Identity   `json:"From"`
	To          []Identity `json:"To"`
	Subject     string     `json:"Subject"`
	HTMLContent string     `json:"HTMLContent"`
}

// Send delivers one email with the given subject and HTML body.
func (c *Client) Send(ctx context.Context, subject, htmlContent string) error {
	body, err := json.Marshal(message{
		From:        c.cfg.From,
		To:          []Identity{c.cfg.To},
		Subject:     subject,
		HTMLContent: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("marshal mail body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
