// Package tavily provides a client for the Tavily search API
package tavily

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

const (
	DefaultBaseURL    = "https://api.tavily.com"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxResults = 5
)

// Client implements the SearchClient interface
type Client struct {
	baseURL    string
	apiKey     string
	maxResults int
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

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

// WithMaxResults sets the per-query result cap
func WithMaxResults(n int) ClientOption {
	return func(c *Client) {
		c.maxResults = n
	}
}

// NewClient creates a new Tavily client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		maxResults: DefaultMaxResults,
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

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type searchResponse struct {
	Results []models.SearchHit `json:"results"`
}

// Research runs one search per query and groups the hits. A failure on one
// query fails the whole call; the caller owns degradation.
func (c *Client) Research(ctx context.Context, queries []string, depth string) ([]models.SearchResult, error) {
	if depth == "" {
		depth = "basic"
	}

	results := make([]models.SearchResult, 0, len(queries))
	for _, query := range queries {
		hits, err := c.search(ctx, query, depth)
		if err != nil {
			return nil, fmt.Errorf("search '%s': %w", query, err)
		}
		results = append(results, models.SearchResult{
			Query:   query,
			Results: hits,
		})
	}

	return results, nil
}

// search performs a single Tavily search call.
func (c *Client) search(ctx context.Context, query, depth string) ([]models.SearchHit, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:      c.apiKey,
		Query:       query,
		SearchDepth: depth,
		MaxResults:  c.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("query", query).Str("depth", depth).Msg("Tavily search request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Tavily API error: %s (status: %d)", string(respBody), resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Results, nil
}

// Ensure Client implements SearchClient
var _ interfaces.SearchClient = (*Client)(nil)
