// Package pipeline runs the ordered research stage sequence: intent
// extraction, data acquisition, analysis and report synthesis.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/aegis/internal/common"
	"github.com/bobmcallan/aegis/internal/interfaces"
	"github.com/bobmcallan/aegis/internal/models"
)

// RefusalMessage is the exact terminal output when the pipeline cannot
// resolve a symbol or finds no meaningful data to report on.
const RefusalMessage = "I am not sure about this company as I could not find sufficient data."

// Prompt injection budgets, in characters. Externally-sourced blocks are
// truncated to these before entering a report prompt to bound request size.
const (
	webBudget       = 3000
	marketBudget    = 2000
	portfolioBudget = 2000
	scanBudget      = 4000
)

const notAvailable = "Not available."

// Service implements PipelineService
type Service struct {
	intent    interfaces.IntentService
	search    interfaces.SearchClient
	market    interfaces.MarketDataClient
	scan      interfaces.ScanService
	portfolio interfaces.PortfolioClient
	llm       interfaces.LLMClient
	analysis  interfaces.AnalysisService
	watchlist interfaces.WatchlistStore
	reports   interfaces.ReportStore
	logger    *common.Logger
	now       func() time.Time
}

// NewService creates a new pipeline service
func NewService(
	intent interfaces.IntentService,
	search interfaces.SearchClient,
	market interfaces.MarketDataClient,
	scan interfaces.ScanService,
	portfolio interfaces.PortfolioClient,
	llm interfaces.LLMClient,
	analysis interfaces.AnalysisService,
	watchlist interfaces.WatchlistStore,
	reports interfaces.ReportStore,
	logger *common.Logger,
) *Service {
	return &Service{
		intent:    intent,
		search:    search,
		market:    market,
		scan:      scan,
		portfolio: portfolio,
		llm:       llm,
		analysis:  analysis,
		watchlist: watchlist,
		reports:   reports,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes the stage sequence for one task. Stages run strictly in
// order; each branch-eligible stage checks scan mode for itself. Upstream
// failures degrade inside their stage and never abort the run.
func (s *Service) Run(ctx context.Context, task string) (*models.ResearchReport, error) {
	state := &State{Task: task}

	s.extractIntent(ctx, state)
	s.webResearch(ctx, state)
	s.marketData(ctx, state)
	s.portfolioLookup(ctx, state)
	s.transform(state)
	s.analyze(ctx, state)

	report, err := s.synthesizeReport(ctx, state)
	if err != nil {
		return nil, err
	}

	if err := s.reports.SaveReport(ctx, report); err != nil {
		s.logger.Warn().Err(err).Str("report_id", report.ID).Msg("Failed to persist report")
	}

	s.logger.Info().
		Str("report_id", report.ID).
		Str("kind", string(report.Kind)).
		Str("symbol", report.Symbol).
		Msg("Pipeline run complete")

	return report, nil
}

func (s *Service) extractIntent(ctx context.Context, state *State) {
	intent, err := s.intent.Extract(ctx, state.Task)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Intent extraction failed")
		return
	}
	state.Intent = intent
	s.logger.Info().
		Str("symbol", intent.Symbol).
		Str("scan_intent", string(intent.ScanIntent)).
		Str("time_range", string(intent.TimeRange)).
		Msg("Intent extracted")
}

func (s *Service) webResearch(ctx context.Context, state *State) {
	if state.Intent.IsScan() {
		state.WebResearch = skippedNote
		return
	}
	if state.Intent.Symbol == "" {
		state.WebResearch = notAvailable
		return
	}

	results, err := s.search.Research(ctx, []string{state.Task}, "basic")
	if err != nil {
		s.logger.Warn().Err(err).Msg("Web research failed")
		state.WebResearch = notAvailable
		return
	}
	if text := formatSearchResults(results); text != "" {
		state.WebResearch = text
	} else {
		state.WebResearch = notAvailable
	}
}

func (s *Service) marketData(ctx context.Context, state *State) {
	if state.Intent.IsScan() {
		symbols, err := s.watchlist.GetWatchlist(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Watchlist unavailable for scan")
			symbols = nil
		}
		outcome, err := s.scan.Scan(ctx, symbols, state.Intent.ScanIntent, state.Intent.TimeRange)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Scan failed")
			outcome = &models.ScanOutcome{Intent: state.Intent.ScanIntent, Status: "scan could not be executed"}
		}
		state.ScanOutcome = outcome
		return
	}

	if state.Intent.Symbol == "" {
		return
	}

	series, err := s.market.Fetch(ctx, state.Intent.Symbol, state.Intent.TimeRange)
	if err != nil {
		// Fetch degrades internally; an error here is a programming
		// fault, not an upstream one. Still keep the run alive.
		s.logger.Error().Err(err).Str("symbol", state.Intent.Symbol).Msg("Market data fetch failed")
		return
	}
	state.Series = series
}

func (s *Service) portfolioLookup(ctx context.Context, state *State) {
	if state.Intent.IsScan() {
		state.Portfolio = "Market scan initiated. Portfolio context skipped."
		return
	}
	if state.Intent.Symbol == "" {
		state.Portfolio = "Skipped: no symbol provided."
		return
	}

	question := fmt.Sprintf("What is the current exposure to %s?", state.Intent.Symbol)
	answer, err := s.portfolio.Query(ctx, question)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", state.Intent.Symbol).Msg("Portfolio lookup failed")
		state.Portfolio = notAvailable
		return
	}
	state.Portfolio = formatPortfolioAnswer(answer)
}

// transform decides the report input shape once, so synthesis never sniffs
// the market-data result.
func (s *Service) transform(state *State) {
	if state.Intent.IsScan() {
		outcome := models.ScanOutcome{Intent: state.Intent.ScanIntent}
		if state.ScanOutcome != nil {
			outcome = *state.ScanOutcome
		}
		state.Input = models.ReportInput{
			Kind:       models.ReportMarketScan,
			MarketScan: &models.MarketScanInput{Task: state.Task, Outcome: outcome},
		}
		return
	}

	input := &models.SingleSymbolInput{
		Task:        state.Task,
		Symbol:      state.Intent.Symbol,
		WebResearch: common.Truncate(state.WebResearch, webBudget),
		Portfolio:   common.Truncate(state.Portfolio, portfolioBudget),
	}
	if summary := formatSeriesSummary(state.Series); summary != "" {
		input.MarketSummary = common.Truncate(summary, marketBudget)
	}
	if state.Series != nil {
		input.DataSource = state.Series.Source
	}
	state.Input = models.ReportInput{Kind: models.ReportSingleSymbol, SingleSymbol: input}
}

func (s *Service) analyze(ctx context.Context, state *State) {
	if state.Intent.IsScan() {
		state.Analysis = &models.AnalysisResult{}
		return
	}
	if state.Series == nil || state.Series.IsEmpty() {
		state.Analysis = &models.AnalysisResult{}
		return
	}

	result, err := s.analysis.Analyze(ctx, state.Series)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", state.Series.Symbol).Msg("Analysis failed")
		state.Analysis = &models.AnalysisResult{}
		return
	}
	state.Analysis = result
	if state.Input.SingleSymbol != nil {
		state.Input.SingleSymbol.Insights = result.Insights
	}
}

func (s *Service) synthesizeReport(ctx context.Context, state *State) (*models.ResearchReport, error) {
	report := &models.ResearchReport{
		ID:          uuid.NewString(),
		Task:        state.Task,
		Kind:        state.Input.Kind,
		GeneratedAt: s.now(),
	}

	switch state.Input.Kind {
	case models.ReportMarketScan:
		markdown, err := s.scanReport(ctx, state.Input.MarketScan)
		if err != nil {
			return nil, fmt.Errorf("failed to synthesize scan report: %w", err)
		}
		report.Markdown = markdown
	default:
		input := state.Input.SingleSymbol
		if input == nil {
			input = &models.SingleSymbolInput{Task: state.Task}
		}
		report.Symbol = input.Symbol
		report.DataSource = input.DataSource

		if refuse(input) {
			report.Markdown = RefusalMessage
			return report, nil
		}

		markdown, err := s.alphaReport(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to synthesize alpha report: %w", err)
		}
		report.Markdown = markdown
		if state.Analysis != nil {
			report.ChartCount = len(state.Analysis.Charts)
		}
	}

	return report, nil
}

// refuse applies the hard guard in code instead of trusting the model to
// follow the prompt: an unresolved symbol, or web and market data both
// contentless, ends the run with the fixed refusal sentence.
func refuse(input *models.SingleSymbolInput) bool {
	if input.Symbol == "" {
		return true
	}
	webEmpty := input.WebResearch == "" || input.WebResearch == notAvailable
	marketEmpty := input.MarketSummary == ""
	return webEmpty && marketEmpty
}

const scanReportPrompt = `You are a senior financial analyst. The user requested a market scan: %q

Scan Results (from Watchlist):
%s

Generate a "Market Scan Report".
1. Summary: Briefly explain the criteria and the overall market status based on these results.
2. Results Table: Create a markdown table with columns: Symbol | Price | %% Change.
3. Conclusion: Highlight the most significant movers.`

func (s *Service) scanReport(ctx context.Context, input *models.MarketScanInput) (string, error) {
	results := common.Truncate(formatScanResults(&input.Outcome), scanBudget)
	return s.llm.GenerateContent(ctx, fmt.Sprintf(scanReportPrompt, input.Task, results))
}

const alphaReportPrompt = `You are a senior financial analyst writing a comprehensive "Alpha Report".
Your task is to synthesize all available information into a structured report.

Original User Task: %s
Target Symbol: %s
---
Available Information:
- Web Intelligence: %s
- Market Data Summary: %s
- Deep-Dive Data Analysis Insights: %s
- Internal Portfolio Context: %s
---

Generate the "Alpha Report" with the following sections. Ensure the report is concise, cited, and directly addresses the user's task.

1. Summary: A brief overview of the key findings and current situation.
2. Internal Context: Detail the firm's current exposure.
   - IF the firm has shares > 0: Present the data in a markdown table (Symbol | Shares | Average Cost).
   - IF the firm has 0 shares: State clearly in text that there is no exposure. Do NOT create a markdown table if shares are 0.
3. Market Data: Summarize key market data points. ALWAYS present this section as a markdown table (Metric | Value | Implication).
4. Real-Time Intelligence:
   - News: Highlight significant news with sources.
   - Filings: Mention any relevant filings with sources.
5. Sentiment Analysis: Categorize the overall sentiment as "Positive", "Negative", or "Neutral" and provide a brief explanation.
6. Synthesis: Combine all information to provide actionable insights or conclusions.`

func (s *Service) alphaReport(ctx context.Context, input *models.SingleSymbolInput) (string, error) {
	insights := input.Insights
	if insights == "" {
		insights = notAvailable
	}
	prompt := fmt.Sprintf(alphaReportPrompt,
		input.Task,
		input.Symbol,
		orNotAvailable(input.WebResearch),
		orNotAvailable(input.MarketSummary),
		insights,
		orNotAvailable(input.Portfolio),
	)
	return s.llm.GenerateContent(ctx, prompt)
}

func orNotAvailable(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// Ensure Service implements PipelineService
var _ interfaces.PipelineService = (*Service)(nil)
