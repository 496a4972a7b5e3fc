// Package scan evaluates a watchlist against a directional filter.
package scan

import (
	"context"
	"sort"
	"sync"

	"github.com/bobmcallan/aegis/internal/common"
	"github.com/bobmcallan/aegis/internal/interfaces"
	"github.com/bobmcallan/aegis/internal/models"
)

// defaultWorkers bounds the per-scan fan-out. Symbols are independent; one
// slow or broken symbol never blocks the rest.
const defaultWorkers = 4

// Service implements ScanService
type Service struct {
	market  interfaces.MarketDataClient
	logger  *common.Logger
	workers int
}

// NewService creates a new scan service
func NewService(market interfaces.MarketDataClient, logger *common.Logger) *Service {
	return &Service{
		market:  market,
		logger:  logger,
		workers: defaultWorkers,
	}
}

// Scan fetches each watchlist symbol, computes the window-local percent
// change (last close vs first open of the retrieved series — an
// approximation bounded by the window, not a true daily change), filters by
// intent and sorts descending by change. Symbols with no usable data are
// excluded rather than failing the batch.
func (s *Service) Scan(ctx context.Context, watchlist []string, intent models.ScanIntent, timeRange models.TimeRange) (*models.ScanOutcome, error) {
	if timeRange == "" {
		timeRange = models.RangeIntraday
	}

	outcome := &models.ScanOutcome{
		Intent:  intent,
		Results: []models.ScanResult{},
	}

	if len(watchlist) == 0 {
		outcome.Status = "watchlist is empty or unavailable"
		return outcome, nil
	}

	results := make([]*models.ScanResult, len(watchlist))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)
	for i, symbol := range watchlist {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, symbol string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.scanSymbol(ctx, symbol, timeRange)
		}(i, symbol)
	}
	wg.Wait()

	for _, r := range results {
		if r == nil {
			continue
		}
		switch intent {
		case models.ScanUpward:
			if r.ChangePct > 0 {
				outcome.Results = append(outcome.Results, *r)
			}
		case models.ScanDownward:
			if r.ChangePct < 0 {
				outcome.Results = append(outcome.Results, *r)
			}
		default:
			outcome.Results = append(outcome.Results, *r)
		}
	}

	sort.SliceStable(outcome.Results, func(i, j int) bool {
		return outcome.Results[i].ChangePct > outcome.Results[j].ChangePct
	})

	s.logger.Debug().
		Str("intent", string(intent)).
		Int("watchlist", len(watchlist)).
		Int("matched", len(outcome.Results)).
		Msg("Market scan complete")

	return outcome, nil
}

// scanSymbol fetches one symbol and computes its window change. Returns nil
// when the symbol has no usable data.
func (s *Service) scanSymbol(ctx context.Context, symbol string, timeRange models.TimeRange) *models.ScanResult {
	series, err := s.market.Fetch(ctx, symbol, timeRange)
	if err != nil || series.IsEmpty() {
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Excluding symbol from scan: no data")
		return nil
	}

	firstOpen := series.FirstOpen()
	if firstOpen == 0 {
		s.logger.Warn().Str("symbol", symbol).Msg("Excluding symbol from scan: zero first open")
		return nil
	}

	lastClose := series.LastClose()
	return &models.ScanResult{
		Symbol:    symbol,
		Price:     lastClose,
		ChangePct: (lastClose - firstOpen) / firstOpen * 100,
	}
}

// Ensure Service implements ScanService
var _ interfaces.ScanService = (*Service)(nil)
