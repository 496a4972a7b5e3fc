// Package alphavantage provides a client for the Alpha Vantage API
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/aegis/internal/common"
	"github.com/bobmcallan/aegis/internal/interfaces"
	"github.com/bobmcallan/aegis/internal/models"
)

const (
	DefaultBaseURL   = "https://www.alphavantage.co"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second (free tier is far lower; callers throttle further)

	intradayInterval = "5min"
)

// flexFloat handles JSON values that may be either a number or a string.
// Alpha Vantage serializes all OHLCV values as strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the LiveMarketSource interface against Alpha Vantage.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
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

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Function   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Alpha Vantage API error: %s (status: %d, function: %s)", e.Message, e.StatusCode, e.Function)
}

// seriesEnvelope is the raw response shape: a metadata object plus one
// time-series object keyed by the function-specific series name.
type seriesEnvelope struct {
	// Error surfaces. Alpha Vantage reports errors and throttling inside a
	// 200 body rather than via status codes.
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`

	IntradaySeries map[string]envelopeBar `json:"Time Series (5min)"`
	DailySeries    map[string]envelopeBar `json:"Time Series (Daily)"`
}

type envelopeBar struct {
	Open   flexFloat `json:"1. open"`
	High   flexFloat `json:"2. high"`
	Low    flexFloat `json:"3. low"`
	Close  flexFloat `json:"4. close"`
	Volume flexFloat `json:"5. volume"`
}

// get performs a rate-limited GET against the /query endpoint.
func (c *Client) get(ctx context.Context, function string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("function", function)
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("function", function).Msg("Alpha Vantage API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Function:   function,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetIntraday retrieves the compact intraday series (5-minute bars, most
// recent ~100 points).
func (c *Client) GetIntraday(ctx context.Context, symbol string) (*models.RawSeries, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", intradayInterval)
	params.Set("outputsize", "compact")

	var envelope seriesEnvelope
	if err := c.get(ctx, "TIME_SERIES_INTRADAY", params, &envelope); err != nil {
		return nil, err
	}
	if err := envelope.apiFailure("TIME_SERIES_INTRADAY"); err != nil {
		return nil, err
	}

	return buildRawSeries(symbol, intradayInterval, envelope.IntradaySeries), nil
}

// GetDaily retrieves the full daily history.
func (c *Client) GetDaily(ctx context.Context, symbol string) (*models.RawSeries, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("outputsize", "full")

	var envelope seriesEnvelope
	if err := c.get(ctx, "TIME_SERIES_DAILY", params, &envelope); err != nil {
		return nil, err
	}
	if err := envelope.apiFailure("TIME_SERIES_DAILY"); err != nil {
		return nil, err
	}

	return buildRawSeries(symbol, "daily", envelope.DailySeries), nil
}

// apiFailure converts the in-body error surfaces to a typed error.
func (e *seriesEnvelope) apiFailure(function string) error {
	msg := e.ErrorMessage
	if msg == "" {
		msg = e.Note
	}
	if msg == "" {
		msg = e.Information
	}
	if msg == "" {
		return nil
	}
	return &APIError{
		StatusCode: http.StatusOK,
		Message:    msg,
		Function:   function,
	}
}

// buildRawSeries flattens the timestamp-keyed map into bars ordered by the
// raw timestamp string ascending. Lexicographic order matches chronological
// order for both timestamp formats the API emits.
func buildRawSeries(symbol, interval string, series map[string]envelopeBar) *models.RawSeries {
	keys := make([]string, 0, len(series))
	for ts := range series {
		keys = append(keys, ts)
	}
	sort.Strings(keys)

	bars := make([]models.RawBar, 0, len(keys))
	for _, ts := range keys {
		bar := series[ts]
		bars = append(bars, models.RawBar{
			Timestamp: ts,
			Open:      float64(bar.Open),
			High:      float64(bar.High),
			Low:       float64(bar.Low),
			Close:     float64(bar.Close),
			Volume:    int64(bar.Volume),
		})
	}

	return &models.RawSeries{
		Symbol:   symbol,
		Interval: interval,
		Bars:     bars,
	}
}

// Ensure Client implements LiveMarketSource
var _ interfaces.LiveMarketSource = (*Client)(nil)
