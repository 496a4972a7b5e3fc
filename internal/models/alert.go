package models

import "time"

// AlertType distinguishes price-move alerts from headline alerts.
type AlertType string

const (
	AlertMarket AlertType = "MARKET"
	AlertNews   AlertType = "NEWS"
)

// Alert is one monitor finding. Details holds type-specific context: price
// and change for MARKET, headline title/url/snippet for NEWS.
type Alert struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      AlertType         `json:"type"`
	Symbol    string            `json:"symbol"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
}

// SearchHit is one result row from the search collaborator.
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchResult groups the hits returned for a single query.
type SearchResult struct {
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
}

// PortfolioAnswer is the portfolio gateway's response to a natural-language
// question: the SQL it generated plus the result rows.
type PortfolioAnswer struct {
	Status         string           `json:"status"`
	GeneratedQuery string           `json:"generated_query"`
	Data           []map[string]any `json:"data"`
}
