// Package interfaces defines service contracts for Aegis
package interfaces

import (
	"context"

	"github.com/bobmcallan/aegis/internal/models"
)

// MarketDataClient provides OHLCV series with automatic degradation: any
// failure of the live source yields a deterministic simulated series instead
// of an error, so Fetch never hard-fails for upstream reasons.
type MarketDataClient interface {
	// Fetch retrieves a time series for one symbol over the requested range.
	Fetch(ctx context.Context, symbol string, timeRange models.TimeRange) (*models.TimeSeries, error)
}

// LiveMarketSource is the raw boundary to the upstream market-data API.
// Implementations surface upstream failures as errors; recovery belongs to
// the MarketDataClient wrapping them.
type LiveMarketSource interface {
	// GetIntraday retrieves the compact intraday series (5-minute bars).
	GetIntraday(ctx context.Context, symbol string) (*models.RawSeries, error)

	// GetDaily retrieves the full daily history.
	GetDaily(ctx context.Context, symbol string) (*models.RawSeries, error)
}

// SearchClient provides web research via the search collaborator.
type SearchClient interface {
	// Research runs the given queries and returns grouped hits.
	Research(ctx context.Context, queries []string, depth string) ([]models.SearchResult, error)
}

// PortfolioClient queries the internal portfolio gateway. The boundary is
// read-only by contract: implementations must never issue a write-shaped
// request.
type PortfolioClient interface {
	// Query answers a natural-language question about portfolio holdings.
	Query(ctx context.Context, question string) (*models.PortfolioAnswer, error)
}

// LLMClient provides access to the language model. Output is unstructured
// text; callers own parsing and its fallbacks.
type LLMClient interface {
	// GenerateContent generates text from a prompt.
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
