// Package marketdata provides the market-data client: a live source wrapped
// with windowing and a deterministic simulated fallback.
package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bobmcallan/aegis/internal/common"
	"github.com/bobmcallan/aegis/internal/interfaces"
	"github.com/bobmcallan/aegis/internal/models"
)

const (
	// liveRetries bounds the retry attempts against the live source before
	// the simulated fallback takes over.
	liveRetries = 2

	// DefaultCallTimeout bounds each live fetch when the caller's context
	// carries no deadline of its own.
	DefaultCallTimeout = 30 * time.Second
)

// Timestamp layouts the live source emits: intraday and daily.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Service implements MarketDataClient. Any failure of the live source —
// network, auth, rate-limit, parse — degrades to the synthesizer; Fetch never
// propagates a hard failure.
type Service struct {
	live        interfaces.LiveMarketSource
	logger      *common.Logger
	callTimeout time.Duration
	now         func() time.Time // injectable clock for testing
}

// NewService creates a new market data service. live may be nil, in which
// case every fetch is served by the synthesizer.
func NewService(live interfaces.LiveMarketSource, logger *common.Logger) *Service {
	return &Service{
		live:        live,
		logger:      logger,
		callTimeout: DefaultCallTimeout,
		now:         time.Now,
	}
}

// Fetch retrieves a time series for one symbol over the requested range,
// trying the live source first and degrading to a deterministic simulated
// series on any error.
func (s *Service) Fetch(ctx context.Context, symbol string, timeRange models.TimeRange) (*models.TimeSeries, error) {
	now := s.now()

	raw, err := s.fetchLive(ctx, symbol, timeRange)
	if err != nil {
		reason := fmt.Sprintf("live fetch failed: %v", err)
		s.logger.Warn().
			Str("symbol", symbol).
			Str("range", string(timeRange)).
			Err(err).
			Msg("Live market data unavailable, using simulated series")
		return Synthesize(symbol, timeRange, now, reason), nil
	}

	series := s.buildSeries(symbol, timeRange, raw, now)
	if series.IsEmpty() {
		reason := "live source returned no data points"
		s.logger.Warn().
			Str("symbol", symbol).
			Str("range", string(timeRange)).
			Msg("Live market data empty, using simulated series")
		return Synthesize(symbol, timeRange, now, reason), nil
	}

	return series, nil
}

// fetchLive calls the live source with a per-call timeout and a bounded
// exponential retry.
func (s *Service) fetchLive(ctx context.Context, symbol string, timeRange models.TimeRange) (*models.RawSeries, error) {
	if s.live == nil {
		return nil, fmt.Errorf("live market source not configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	var raw *models.RawSeries
	operation := func() error {
		var err error
		if timeRange == models.RangeIntraday {
			raw, err = s.live.GetIntraday(callCtx, symbol)
		} else {
			raw, err = s.live.GetDaily(callCtx, symbol)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), liveRetries), callCtx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return raw, nil
}

// buildSeries parses raw bars and, for daily ranges, trims the oversized
// history response down to the requested window. A bar whose timestamp fails
// to parse is retained rather than dropped (fail-open).
func (s *Service) buildSeries(symbol string, timeRange models.TimeRange, raw *models.RawSeries, now time.Time) *models.TimeSeries {
	var cutoff time.Time
	if days := timeRange.Days(); days > 0 {
		cutoff = now.AddDate(0, 0, -days)
	}

	bars := make([]models.Bar, 0, len(raw.Bars))
	for _, rb := range raw.Bars {
		ts, err := parseTimestamp(rb.Timestamp)
		if err == nil && !cutoff.IsZero() && ts.Before(cutoff) {
			continue
		}
		bars = append(bars, models.Bar{
			Timestamp: ts,
			Open:      rb.Open,
			High:      rb.High,
			Low:       rb.Low,
			Close:     rb.Close,
			Volume:    rb.Volume,
		})
	}

	return &models.TimeSeries{
		Symbol:    symbol,
		TimeRange: timeRange,
		Source:    models.SourceLive,
		Bars:      bars,
	}
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", raw)
}

// Ensure Service implements MarketDataClient
var _ interfaces.MarketDataClient = (*Service)(nil)
