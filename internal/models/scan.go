package models

// ScanResult is one watchlist entry that passed the directional filter.
// ChangePct is window-local: last close versus first open of the retrieved
// series, a rough approximation bounded by the window size rather than a true
// calendar-day change.
type ScanResult struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
}

// ScanOutcome is the result of scanning a watchlist: matching entries sorted
// by ChangePct descending, or a Status note when no scan could run (missing
// or empty watchlist).
type ScanOutcome struct {
	Intent  ScanIntent   `json:"intent"`
	Results []ScanResult `json:"results"`
	Status  string       `json:"status,omitempty"`
}
