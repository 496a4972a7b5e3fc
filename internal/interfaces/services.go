package interfaces

import (
	"context"

	"github.com/bobmcallan/aegis/internal/models"
)

// IntentService turns a free-text task into a structured Intent.
type IntentService interface {
	// Extract interprets the task. The returned Intent may be empty
	// (no symbol, no scan intent) when the input is insufficient.
	Extract(ctx context.Context, task string) (models.Intent, error)
}

// ScanService evaluates a watchlist against a directional filter.
type ScanService interface {
	// Scan fetches each watchlist symbol, computes window-local percent
	// change, filters by intent and sorts descending by change. A symbol
	// with no usable data is excluded, never fatal.
	Scan(ctx context.Context, watchlist []string, intent models.ScanIntent, timeRange models.TimeRange) (*models.ScanOutcome, error)
}

// AnalysisService profiles a series, plans insights and visualizations, and
// renders charts.
type AnalysisService interface {
	// Analyze runs the profile → plan → render sub-pipeline.
	Analyze(ctx context.Context, series *models.TimeSeries) (*models.AnalysisResult, error)
}

// PipelineService runs the full research pipeline for one task.
type PipelineService interface {
	// Run executes the ordered stage sequence and returns the final report.
	Run(ctx context.Context, task string) (*models.ResearchReport, error)
}
