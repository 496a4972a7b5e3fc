package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bobmcallan/aegis/internal/models"
)

// State accumulates one research run. Each stage reads what its
// predecessors wrote and fills in its own fields; nothing is mutated after
// a stage completes.
type State struct {
	Task   string
	Intent models.Intent

	WebResearch string
	Series      *models.TimeSeries
	ScanOutcome *models.ScanOutcome
	Portfolio   string

	Analysis *models.AnalysisResult
	Input    models.ReportInput
}

// skippedNote is the placeholder written into a stage's output when scan
// mode bypasses it.
const skippedNote = "Market scan initiated. Skipped for individual stock."

// formatSearchResults renders grouped search hits into the text block fed to
// the report prompt.
func formatSearchResults(results []models.SearchResult) string {
	var b strings.Builder
	for _, result := range results {
		fmt.Fprintf(&b, "Query: %s\n", result.Query)
		for _, hit := range result.Results {
			fmt.Fprintf(&b, "- %s (%s): %s\n", hit.Title, hit.URL, hit.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

// formatSeriesSummary renders the key facts of a fetched series for the
// report prompt. The raw bars stay out of the prompt; the analysis stage
// already consumed them.
func formatSeriesSummary(series *models.TimeSeries) string {
	if series == nil || series.IsEmpty() {
		return ""
	}

	first := series.Bars[0]
	last := series.Bars[len(series.Bars)-1]
	changePct := 0.0
	if open := series.FirstOpen(); open != 0 {
		changePct = (series.LastClose() - open) / open * 100
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Symbol: %s\n", series.Symbol)
	fmt.Fprintf(&b, "Source: %s\n", series.Source)
	if series.Reason != "" {
		fmt.Fprintf(&b, "Source note: %s\n", series.Reason)
	}
	fmt.Fprintf(&b, "Range: %s (%d bars, %s to %s)\n",
		series.TimeRange,
		len(series.Bars),
		first.Timestamp.Format("2006-01-02 15:04"),
		last.Timestamp.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "First open: %.2f  Last close: %.2f  Window change: %+.2f%%\n",
		series.FirstOpen(), series.LastClose(), changePct)
	fmt.Fprintf(&b, "Last bar: open %.2f high %.2f low %.2f close %.2f volume %d",
		last.Open, last.High, last.Low, last.Close, last.Volume)
	return b.String()
}

// formatPortfolioAnswer renders the portfolio gateway's response for the
// report prompt.
func formatPortfolioAnswer(answer *models.PortfolioAnswer) string {
	if answer == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s\n", answer.Status)
	if answer.GeneratedQuery != "" {
		fmt.Fprintf(&b, "Query: %s\n", answer.GeneratedQuery)
	}
	if len(answer.Data) == 0 {
		b.WriteString("Rows: none")
		return b.String()
	}
	rows, err := json.Marshal(answer.Data)
	if err != nil {
		b.WriteString("Rows: unrenderable")
		return b.String()
	}
	fmt.Fprintf(&b, "Rows: %s", rows)
	return b.String()
}

// formatScanResults renders scan results as the JSON block injected into the
// scan-report prompt.
func formatScanResults(outcome *models.ScanOutcome) string {
	if outcome == nil {
		return ""
	}
	if outcome.Status != "" {
		return outcome.Status
	}
	blob, err := json.MarshalIndent(outcome.Results, "", "  ")
	if err != nil {
		return ""
	}
	return string(blob)
}
