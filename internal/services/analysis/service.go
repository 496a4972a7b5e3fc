// Package analysis profiles a time series, plans insights and
// visualizations via the language model, and renders the planned charts.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bobmcallan/aegis/internal/common"
	"github.com/bobmcallan/aegis/internal/interfaces"
	"github.com/bobmcallan/aegis/internal/models"
)

const plannerPrompt = `You are an expert financial data scientist. Based on the following data profile from a time-series stock dataset, generate key insights and plan effective visualizations.

Data Profile: %s

Instructions:
Your response MUST be ONLY a single valid JSON object. Do not include any other text or markdown.
The JSON object must have two keys: "insights" and "visualizations".
- "insights": a list of 3-5 concise, bullet-point style strings focusing on trends, correlations, and anomalies.
- "visualizations": a list of 3 JSON objects, each planning a chart.
    - Plan a line chart for the 'close' price over time using the 'timestamp' column.
    - Plan a histogram for the 'volume' column.
    - Plan one other relevant chart (e.g. scatter plot, bar chart).

Example response:
{
    "insights": ["The closing price shows an upward trend.", "Volume spiked mid-window.", "Open and close are strongly correlated."],
    "visualizations": [
        {"type": "line", "columns": ["timestamp", "close"], "title": "Closing Price Over Time"},
        {"type": "histogram", "columns": ["volume"], "title": "Trading Volume Distribution"},
        {"type": "scatter", "columns": ["open", "close"], "title": "Opening vs Closing Price"}
    ]
}`

// Service implements AnalysisService
type Service struct {
	llm    interfaces.LLMClient
	logger *common.Logger
}

// NewService creates a new analysis service
func NewService(llm interfaces.LLMClient, logger *common.Logger) *Service {
	return &Service{
		llm:    llm,
		logger: logger,
	}
}

// Analyze runs the profile → plan → render sub-pipeline. Planner failures
// fall back to the fixed default plan; the run never fails because the
// planner misbehaved.
func (s *Service) Analyze(ctx context.Context, series *models.TimeSeries) (*models.AnalysisResult, error) {
	if series.IsEmpty() {
		return &models.AnalysisResult{Insights: "No data available for analysis."}, nil
	}

	profile := Profile(series)

	insights, specs := s.plan(ctx, profile)

	result := &models.AnalysisResult{
		Insights:       insights,
		Visualizations: specs,
	}
	result.Charts, result.Skipped = renderCharts(series, profile, specs, s.logger)

	s.logger.Info().
		Str("symbol", series.Symbol).
		Int("rows", profile.RowCount).
		Int("charts", len(result.Charts)).
		Int("skipped", len(result.Skipped)).
		Msg("Analysis complete")

	return result, nil
}

// plannerPayload is the wire shape of the planner's structured answer.
type plannerPayload struct {
	Insights       []string           `json:"insights"`
	Visualizations []models.ChartSpec `json:"visualizations"`
}

// plan runs the single planner call and decodes it, substituting the fixed
// default plan on any call or parse failure.
func (s *Service) plan(ctx context.Context, profile *models.DatasetProfile) (string, []models.ChartSpec) {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return defaultInsights, DefaultPlan()
	}

	raw, err := s.llm.GenerateContent(ctx, fmt.Sprintf(plannerPrompt, string(profileJSON)))
	if err != nil {
		s.logger.Warn().Err(err).Msg("Planner call failed, using default visualization plan")
		return defaultInsights, DefaultPlan()
	}

	insights, specs, ok := DecodePlanJSON(raw)
	if !ok {
		s.logger.Warn().Str("raw", common.Truncate(raw, 200)).Msg("Planner output unparsable, using default visualization plan")
		return defaultInsights, DefaultPlan()
	}
	return insights, specs
}

const defaultInsights = "* Analysis generated, but detailed insights could not be parsed."

// DefaultPlan is the fixed fallback visualization plan used whenever the
// planner's output cannot be decoded.
func DefaultPlan() []models.ChartSpec {
	return []models.ChartSpec{
		{Type: models.ChartLine, Columns: []string{"timestamp", "close"}, Title: "Closing Price Over Time (Default)"},
		{Type: models.ChartHistogram, Columns: []string{"volume"}, Title: "Trading Volume (Default)"},
	}
}

// DecodePlanJSON attempts the strict parse of a planner response: outermost
// {...} extraction plus unmarshal. Insights are joined into a bulleted
// block. Returns ok=false when no usable JSON object is present.
func DecodePlanJSON(raw string) (string, []models.ChartSpec, bool) {
	blob := common.ExtractJSONObject(raw)
	if blob == "" {
		return "", nil, false
	}

	var payload plannerPayload
	if err := json.Unmarshal([]byte(blob), &payload); err != nil {
		return "", nil, false
	}

	bullets := make([]string, 0, len(payload.Insights))
	for _, insight := range payload.Insights {
		if insight = strings.TrimSpace(insight); insight != "" {
			bullets = append(bullets, "* "+insight)
		}
	}

	return strings.Join(bullets, "\n"), payload.Visualizations, true
}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
