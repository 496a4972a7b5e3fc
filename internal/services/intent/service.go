// Package intent extracts a structured research intent from free text.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/bobmcallan/aegis/internal/common"
	"github.com/bobmcallan/aegis/internal/interfaces"
	"github.com/bobmcallan/aegis/internal/models"
)

// extractionPrompt asks the model for a strict JSON object. The model
// routinely ignores the format, so decoding always runs through
// DecodeIntentJSON and then HeuristicIntent.
const extractionPrompt = `Analyze the user's request: %q

1. If the user wants to analyze a specific stock, identify the ticker symbol (e.g. AAPL).
2. If the user wants to SCAN the market for companies matching a criteria (e.g. "top gainers", "companies trending downward", "market scan"), identify the scan intent: UPWARD, DOWNWARD or ALL.
3. Identify the requested time range: INTRADAY, 1D, 3D, 1W, 1M, 3M or 1Y. Default to INTRADAY.

Respond with ONLY a single JSON object, no other text:
{"symbol": "<ticker or empty>", "scan_intent": "<UPWARD|DOWNWARD|ALL or empty>", "time_range": "<range>"}`

// bareSymbolPattern matches a short all-letter token, optionally prefixed
// with $, anywhere in the response.
var bareSymbolPattern = regexp.MustCompile(`\$?[A-Z]{1,5}\b`)

// scanKeywords trigger the scan heuristic when no JSON is present.
var scanKeywords = []string{"SCAN", "GAINERS", "LOSERS"}

// Service implements IntentService
type Service struct {
	llm    interfaces.LLMClient
	logger *common.Logger
}

// NewService creates a new intent service
func NewService(llm interfaces.LLMClient, logger *common.Logger) *Service {
	return &Service{
		llm:    llm,
		logger: logger,
	}
}

// Extract interprets the task via the LLM. The raw response goes through a
// strict JSON decode first and a keyword heuristic second; only a failed LLM
// call itself is an error.
func (s *Service) Extract(ctx context.Context, task string) (models.Intent, error) {
	raw, err := s.llm.GenerateContent(ctx, fmt.Sprintf(extractionPrompt, task))
	if err != nil {
		return models.Intent{}, fmt.Errorf("intent extraction call: %w", err)
	}

	if intent, ok := DecodeIntentJSON(raw); ok {
		s.logger.Debug().
			Str("symbol", intent.Symbol).
			Str("scan_intent", string(intent.ScanIntent)).
			Str("time_range", string(intent.TimeRange)).
			Msg("Intent parsed from JSON")
		return intent, nil
	}

	intent := HeuristicIntent(raw)
	s.logger.Debug().
		Str("raw", common.Truncate(raw, 120)).
		Str("symbol", intent.Symbol).
		Str("scan_intent", string(intent.ScanIntent)).
		Msg("Intent recovered heuristically")
	return intent, nil
}

// intentPayload is the wire shape of the model's structured answer.
type intentPayload struct {
	Symbol     string `json:"symbol"`
	ScanIntent string `json:"scan_intent"`
	TimeRange  string `json:"time_range"`
}

// DecodeIntentJSON attempts the strict parse: locate the outermost {...}
// substring in the response (surrounding prose is accepted) and unmarshal it.
// Returns ok=false when no parseable JSON object is present.
func DecodeIntentJSON(raw string) (models.Intent, bool) {
	blob := common.ExtractJSONObject(raw)
	if blob == "" {
		return models.Intent{}, false
	}

	var payload intentPayload
	if err := json.Unmarshal([]byte(blob), &payload); err != nil {
		return models.Intent{}, false
	}

	intent := models.Intent{
		Symbol:    strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(payload.Symbol), "$")),
		TimeRange: models.ParseTimeRange(payload.TimeRange),
	}
	if payload.ScanIntent != "" {
		intent.ScanIntent = models.ParseScanIntent(payload.ScanIntent)
		intent.Symbol = "" // at most one of symbol/scan intent is set
	}
	return intent, true
}

// HeuristicIntent is the fallback constructor for a response with no usable
// JSON: scan-like keywords mean a full scan, and a bare short alphabetic
// token is taken as the symbol. Anything else yields an empty intent,
// meaning insufficient input.
func HeuristicIntent(raw string) models.Intent {
	upper := strings.ToUpper(strings.TrimSpace(raw))

	for _, kw := range scanKeywords {
		if strings.Contains(upper, kw) {
			return models.Intent{ScanIntent: models.ScanAll, TimeRange: models.RangeIntraday}
		}
	}

	if token := strings.TrimPrefix(upper, "$"); len(token) <= 5 && token != "" && isAlpha(token) && token != "NONE" {
		return models.Intent{Symbol: token, TimeRange: models.RangeIntraday}
	}

	// Last resort: a short symbol-looking token embedded in prose.
	if match := bareSymbolPattern.FindString(upper); match != "" && !strings.Contains(upper, "NONE") {
		return models.Intent{Symbol: strings.TrimPrefix(match, "$"), TimeRange: models.RangeIntraday}
	}

	return models.Intent{TimeRange: models.RangeIntraday}
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Ensure Service implements IntentService
var _ interfaces.IntentService = (*Service)(nil)
