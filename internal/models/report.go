package models

import "time"

// ReportKind tags the two report shapes the synthesizer can produce.
type ReportKind string

const (
	ReportSingleSymbol ReportKind = "single_symbol"
	ReportMarketScan   ReportKind = "market_scan"
)

// SingleSymbolInput carries everything the alpha-report template needs.
// Text fields are already truncated to their prompt budgets by the pipeline.
type SingleSymbolInput struct {
	Task          string
	Symbol        string
	WebResearch   string
	MarketSummary string
	Insights      string
	Portfolio     string
	DataSource    string // series provenance, "live" or "simulated"
}

// MarketScanInput carries everything the scan-report template needs.
type MarketScanInput struct {
	Task    string
	Outcome ScanOutcome
}

// ReportInput is the tagged variant handed to report synthesis. The kind is
// decided once, upstream, instead of sniffing the shape of the market-data
// result at synthesis time.
type ReportInput struct {
	Kind         ReportKind
	SingleSymbol *SingleSymbolInput
	MarketScan   *MarketScanInput
}

// ResearchReport is the final output of one pipeline run.
type ResearchReport struct {
	ID          string     `json:"id" badgerhold:"key"`
	Task        string     `json:"task"`
	Kind        ReportKind `json:"kind"`
	Symbol      string     `json:"symbol,omitempty"`
	Markdown    string     `json:"markdown"`
	DataSource  string     `json:"data_source,omitempty"` // provenance of the analyzed series
	ChartCount  int        `json:"chart_count"`
	GeneratedAt time.Time  `json:"generated_at"`
}
