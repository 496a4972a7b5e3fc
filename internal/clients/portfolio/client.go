// Package portfolio provides a client for the internal portfolio gateway.
// The gateway translates natural-language questions into read-only SQL and
// returns the result rows; this boundary never carries writes.
package portfolio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bobmcallan/aegis/internal/common"
	"github.com/bobmcallan/aegis/internal/interfaces"
	"github.com/bobmcallan/aegis/internal/models"
)

// DefaultTimeout is generous because the gateway's SQL generation can sit on
// a slow local model.
const DefaultTimeout = 180 * time.Second

// Client implements the PortfolioClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new portfolio gateway client
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type queryRequest struct {
	Question string `json:"question"`
}

type queryResponse struct {
	Status       string           `json:"status"`
	Question     string           `json:"question"`
	GeneratedSQL string           `json:"generated_sql"`
	Data         []map[string]any `json:"data"`
}

// Query answers a natural-language question about portfolio holdings.
func (c *Client) Query(ctx context.Context, question string) (*models.PortfolioAnswer, error) {
	body, err := json.Marshal(queryRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/portfolio_data", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("question", question).Msg("Portfolio gateway request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("portfolio gateway error: %s (status: %d)", string(respBody), resp.StatusCode)
	}

	var result queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &models.PortfolioAnswer{
		Status:         result.Status,
		GeneratedQuery: result.GeneratedSQL,
		Data:           result.Data,
	}, nil
}

// Ensure Client implements PortfolioClient
var _ interfaces.PortfolioClient = (*Client)(nil)
