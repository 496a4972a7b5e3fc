// Package monitor polls the watchlist on a fixed cadence and raises alerts
// on significant price moves and headlines.
package monitor

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/aegis/internal/common"
	"github.com/bobmcallan/aegis/internal/interfaces"
	"github.com/bobmcallan/aegis/internal/models"
)

const (
	// baselineOffset is the number of 5-minute bars between the latest
	// close and the comparison close, roughly 15 minutes.
	baselineOffset = 3

	// minBars is the minimum series length for a market check.
	minBars = baselineOffset + 1

	DefaultInterval     = 10 * time.Second
	DefaultThresholdPct = 0.5
	DefaultWorkers      = 4
)

// newsKeywords marks a headline as significant when any appears in its
// lowercased title.
var newsKeywords = []string{
	"acquisition", "merger", "earnings", "crash", "surge", "plunge",
	"fda", "lawsuit", "sec", "filing", "8-k", "10-k", "insider",
	"partnership", "deal", "bankruptcy", "recall", "investigation",
	"upgrade", "downgrade", "target", "buyback", "dividend",
}

// Service runs the periodic watchlist monitor.
type Service struct {
	market    interfaces.MarketDataClient
	search    interfaces.SearchClient
	watchlist interfaces.WatchlistStore
	alerts    interfaces.AlertSink
	logger    *common.Logger

	interval     time.Duration
	thresholdPct float64
	workers      int
	now          func() time.Time

	cron *cron.Cron
	mu   sync.Mutex
}

// NewService creates a new monitor service
func NewService(
	market interfaces.MarketDataClient,
	search interfaces.SearchClient,
	watchlist interfaces.WatchlistStore,
	alerts interfaces.AlertSink,
	interval time.Duration,
	thresholdPct float64,
	workers int,
	logger *common.Logger,
) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if thresholdPct <= 0 {
		thresholdPct = DefaultThresholdPct
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Service{
		market:       market,
		search:       search,
		watchlist:    watchlist,
		alerts:       alerts,
		logger:       logger,
		interval:     interval,
		thresholdPct: thresholdPct,
		workers:      workers,
		now:          time.Now,
	}
}

// Start schedules the monitor cycle. A cycle still in flight when the next
// tick arrives causes that tick to be skipped, never queued.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("monitor already started")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := c.AddFunc(spec, func() {
		// Each cycle gets fresh calls with fresh timeouts so a slow
		// collaborator never stalls subsequent cycles.
		cycleCtx, cancel := context.WithTimeout(ctx, s.interval*3)
		defer cancel()
		s.RunCycle(cycleCtx)
	}); err != nil {
		return fmt.Errorf("failed to schedule monitor: %w", err)
	}

	c.Start()
	s.cron = c
	s.logger.Info().
		Dur("interval", s.interval).
		Float64("threshold_pct", s.thresholdPct).
		Msg("Watchlist monitor started")
	return nil
}

// Stop halts the schedule and waits for an in-flight cycle to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
	s.logger.Info().Msg("Watchlist monitor stopped")
}

// RunCycle executes one monitor pass: read the watchlist, fan each symbol
// out to a bounded pool, run market and news checks. A failure on one
// symbol never blocks another.
func (s *Service) RunCycle(ctx context.Context) {
	symbols, err := s.watchlist.GetWatchlist(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load watchlist")
		return
	}
	if len(symbols) == 0 {
		s.logger.Debug().Msg("Watchlist is empty, nothing to monitor")
		return
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)
	for _, symbol := range symbols {
		wg.Add(1)
		sem <- struct{}{}
		go func(symbol string) {
			defer wg.Done()
			defer func() { <-sem }()
			s.checkSymbol(ctx, symbol)
		}(symbol)
	}
	wg.Wait()

	s.logger.Debug().Int("symbols", len(symbols)).Msg("Monitor cycle complete")
}

func (s *Service) checkSymbol(ctx context.Context, symbol string) {
	if err := s.checkMarket(ctx, symbol); err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Market check failed")
	}
	if err := s.checkNews(ctx, symbol); err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("News check failed")
	}
}

// checkMarket compares the latest intraday close against the close three
// bars earlier and raises a MARKET alert when the move exceeds the
// threshold in either direction.
func (s *Service) checkMarket(ctx context.Context, symbol string) error {
	series, err := s.market.Fetch(ctx, symbol, models.RangeIntraday)
	if err != nil {
		return fmt.Errorf("failed to fetch intraday data: %w", err)
	}
	if series.IsEmpty() || len(series.Bars) < minBars {
		return nil
	}

	latest := series.LastClose()
	baseline := series.CloseAt(baselineOffset)
	if baseline == 0 {
		return nil
	}
	changePct := (latest - baseline) / baseline * 100

	if math.Abs(changePct) <= s.thresholdPct {
		return nil
	}

	direction := "UP"
	if changePct < 0 {
		direction = "DOWN"
	}
	last := series.Bars[len(series.Bars)-1]
	alert := models.Alert{
		Timestamp: s.now(),
		Type:      models.AlertMarket,
		Symbol:    symbol,
		Message:   fmt.Sprintf("%s ALERT: %s moved %+.2f%% to $%.2f", direction, symbol, changePct, latest),
		Details: map[string]string{
			"price":     fmt.Sprintf("%.2f", latest),
			"change":    fmt.Sprintf("%+.2f", changePct),
			"timestamp": last.Timestamp.Format(time.RFC3339),
		},
	}

	s.logger.Info().Str("symbol", symbol).Float64("change_pct", changePct).Msg("Market alert raised")
	return s.alerts.Append(ctx, alert)
}

// checkNews fetches the top headline for the symbol and raises a NEWS alert
// when its lowercased title contains a significant keyword.
func (s *Service) checkNews(ctx context.Context, symbol string) error {
	query := fmt.Sprintf("breaking news %s stock today", symbol)
	results, err := s.search.Research(ctx, []string{query}, "basic")
	if err != nil {
		return fmt.Errorf("failed to fetch news: %w", err)
	}

	hit, ok := topHeadline(results)
	if !ok || !significantHeadline(hit.Title) {
		return nil
	}

	alert := models.Alert{
		Timestamp: s.now(),
		Type:      models.AlertNews,
		Symbol:    symbol,
		Message:   fmt.Sprintf("NEWS ALERT: %s - %s", symbol, hit.Title),
		Details: map[string]string{
			"title":   hit.Title,
			"url":     hit.URL,
			"content": common.Truncate(hit.Content, 200),
		},
	}

	s.logger.Info().Str("symbol", symbol).Str("headline", hit.Title).Msg("News alert raised")
	return s.alerts.Append(ctx, alert)
}

func topHeadline(results []models.SearchResult) (models.SearchHit, bool) {
	for _, result := range results {
		if len(result.Results) > 0 {
			return result.Results[0], true
		}
	}
	return models.SearchHit{}, false
}

func significantHeadline(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range newsKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
