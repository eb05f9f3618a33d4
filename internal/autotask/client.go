package autotask

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the zone discovery endpoint; per-tenant calls go to the
	// zone URL it returns.
	DefaultBaseURL = "https://webservices.autotask.net/ATServicesRest/V1.0/"

	userAgent = "statuscake-autotask-integration/1.0"
)

// Config holds Autotask REST credentials and connection settings.
type Config struct {
	BaseURL         string
	User            string
	Secret          string
	IntegrationCode string
	Timeout         time.Duration
}

// Client is a minimal Autotask REST API client covering entity queries and the
// ticket create/update/note operations this service needs. Construct one per
// invocation scope and pass it by reference; it holds no mutable state besides
// the resolved zone URL.
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
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:     cfg,
		baseURL: base,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type zoneInformation struct {
	URL string `json:"url"`
}

// DiscoverZone resolves the tenant's zone URL and switches the client to it.
// Failure leaves the configured base URL in place; callers treat this as
// best-effort.
func (c *Client) DiscoverZone(ctx context.Context) error {
	reqURL := c.baseURL + "ZoneInformation?user=" + url.QueryEscape(c.cfg.User)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build zone request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("zone discovery: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("zone discovery failed with status %d", resp.StatusCode)
	}

	var zone zoneInformation
	if err := json.NewDecoder(resp.Body).Decode(&zone); err != nil {
		return fmt.Errorf("decode zone response: %w", err)
	}
	if zone.URL == "" {
		return fmt.Errorf("zone discovery returned empty url")
	}
	c.baseURL = zone.URL + "V1.0/"
	log.Debug().Str("zone_url", c.baseURL).Msg("autotask zone resolved")
	return nil
}

// Preflight verifies the API credentials with a cheap metadata read. The REST
// library-style calls below surface auth failures poorly, so the lifecycle
// controller runs this first and downgrades resolution when it fails.
func (c *Client) Preflight(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"Companies/entityInformation", nil)
	if err != nil {
		return fmt.Errorf("build preflight request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("preflight: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("api key unauthorized (401): %s", string(body))
		}
		return fmt.Errorf("preflight failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("ApiIntegrationcode", c.cfg.IntegrationCode)
	req.Header.Set("UserName", c.cfg.User)
	req.Header.Set("Secret", c.cfg.Secret)
}

type queryResponse struct {
	Items json.RawMessage `json:"items"`
}

type createResponse struct {
	ItemID int64 `json:"itemId"`
}

// query POSTs an entity query and decodes the items envelope into out, which
// must be a pointer to a slice.
func (c *Client) query(ctx context.Context, entity string, filter Filter, includeFields []string, out any) error {
	body, err := json.Marshal(queryRequest{Filter: []Filter{filter}, IncludeFields: includeFields})
	if err != nil {
		return fmt.Errorf("marshal %s query: %w", entity, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+entity+"/query", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s query: %w", entity, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s query: %w", entity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s query failed with status %d: %s", entity, resp.StatusCode, string(respBody))
	}

	var envelope queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s query response: %w", entity, err)
	}
	if len(envelope.Items) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Items, out); err != nil {
		return fmt.Errorf("decode %s items: %w", entity, err)
	}
	return nil
}

func (c *Client) QueryCompanies(ctx context.Context, filter Filter) ([]Company, error) {
	var items []Company
	err := c.query(ctx, "Companies", filter, []string{"id", "companyName", "companyNumber", "isActive"}, &items)
	return items, err
}

func (c *Client) QueryCompanyLocations(ctx context.Context, filter Filter) ([]CompanyLocation, error) {
	var items []CompanyLocation
	err := c.query(ctx, "CompanyLocations", filter, []string{"id", "isActive", "isPrimary"}, &items)
	return items, err
}

func (c *Client) QueryContracts(ctx context.Context, filter Filter) ([]Contract, error) {
	var items []Contract
	err := c.query(ctx, "Contracts", filter, []string{"id"}, &items)
	return items, err
}

func (c *Client) QueryConfigurationItems(ctx context.Context, filter Filter) ([]ConfigurationItem, error) {
	var items []ConfigurationItem
	err := c.query(ctx, "ConfigurationItems", filter,
		[]string{"id", "companyID", "isActive", "referenceTitle", "rmmDeviceAuditExternalIPAddress"}, &items)
	return items, err
}

func (c *Client) QueryTickets(ctx context.Context, filter Filter) ([]Ticket, error) {
	var items []Ticket
	err := c.query(ctx, "Tickets", filter, []string{
		"id", "companyID", "companyLocationID", "createDate",
		"status", "ticketNumber", "title", "configurationItemID", "assignedResourceID",
	}, &items)
	return items, err
}

// CreateTicket creates a ticket and returns its id.
func (c *Client) CreateTicket(ctx context.Context, t *NewTicket) (int64, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return 0, fmt.Errorf("marshal ticket: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"Tickets", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build ticket create: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ticket create: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("ticket create failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var created createResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return 0, fmt.Errorf("decode ticket create response: %w", err)
	}
	if created.ItemID == 0 {
		return 0, fmt.Errorf("ticket create returned no ticket id")
	}
	return created.ItemID, nil
}

// UpdateTicketStatus patches a single ticket's status.
func (c *Client) UpdateTicketStatus(ctx context.Context, ticketID int64, status int) error {
	body, err := json.Marshal(map[string]any{"id": ticketID, "Status": status})
	if err != nil {
		return fmt.Errorf("marshal ticket update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"Tickets", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build ticket update: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ticket update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ticket %d update failed with status %d: %s", ticketID, resp.StatusCode, string(respBody))
	}
	return nil
}

// CreateTicketNote attaches a note to an existing ticket.
func (c *Client) CreateTicketNote(ctx context.Context, ticketID int64, note *TicketNote) error {
	body, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal ticket note: %w", err)
	}

	reqURL := c.baseURL + "Tickets/" + strconv.FormatInt(ticketID, 10) + "/Notes"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build ticket note create: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ticket note create: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ticket %d note create failed with status %d: %s", ticketID, resp.StatusCode, string(respBody))
	}
	return nil
}
