// Package notify forwards warranted contact decisions to the external
// customer engagement service. Forwarding is best-effort: callers log
// failures but never let them affect committed pipeline state.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aurafleet/aurafleet/internal/health"
	"github.com/aurafleet/aurafleet/internal/resilience"
)

// DefaultBaseURL is the engagement service base URL used when none is
// configured.
const DefaultBaseURL = "http://localhost:8300"

// ErrForwardRejected is returned when the engagement service refuses
// the forwarded decision.
var ErrForwardRejected = errors.New("engagement service rejected contact decision")

// ClientConfig holds configuration for the engagement client.
type ClientConfig struct {
	// BaseURL is the engagement service base URL (optional).
	BaseURL string

	// APIKey authenticates outbound calls (optional).
	APIKey string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client posts contact decisions to the engagement service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new engagement client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("engagement"))
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// contactPayload is the wire shape of a forwarded decision.
type contactPayload struct {
	VehicleID     string  `json:"vehicle_id"`
	Severity      string  `json:"severity"`
	ShouldContact bool    `json:"should_contact"`
	Reason        string  `json:"reason"`
	Score         float64 `json:"score"`
}

// ForwardDecision sends a warranted contact decision to the engagement
// service. Decisions that do not warrant contact are dropped locally
// without a network call.
func (c *Client) ForwardDecision(ctx context.Context, decision health.Decision) error {
	if !decision.ShouldContact {
		return nil
	}

	payload := contactPayload{
		VehicleID:     decision.VehicleID,
		Severity:      string(decision.Severity),
		ShouldContact: decision.ShouldContact,
		Reason:        decision.Reason,
		Score:         decision.Score,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding contact decision: %w", err)
	}

	url := c.baseURL + "/v1/contact-requests"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrForwardRejected, resp.StatusCode)
	}

	c.logger.Info().
		Str("vehicle_id", decision.VehicleID).
		Str("severity", string(decision.Severity)).
		Str("reason", decision.Reason).
		Msg("contact decision forwarded")

	return nil
}
