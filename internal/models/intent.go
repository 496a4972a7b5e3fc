package models

import "strings"

// ScanIntent is the directional filter of a watchlist scan request.
type ScanIntent string

const (
	ScanUpward   ScanIntent = "UPWARD"
	ScanDownward ScanIntent = "DOWNWARD"
	ScanAll      ScanIntent = "ALL"
)

// ParseScanIntent normalizes a raw scan intent. Unknown values map to ALL so
// that a recognized-but-misspelled criteria still scans rather than failing.
func ParseScanIntent(s string) ScanIntent {
	switch ScanIntent(strings.ToUpper(strings.TrimSpace(s))) {
	case ScanUpward:
		return ScanUpward
	case ScanDownward:
		return ScanDownward
	default:
		return ScanAll
	}
}

// Intent is the structured interpretation of a free-text research task.
// At most one of Symbol/ScanIntent is set; both empty means the extractor
// could not resolve the request (a designed terminal state downstream).
type Intent struct {
	Symbol     string     `json:"symbol,omitempty"`
	ScanIntent ScanIntent `json:"scan_intent,omitempty"`
	TimeRange  TimeRange  `json:"time_range"`
}

// IsScan reports whether the request is a watchlist scan.
func (i Intent) IsScan() bool {
	return i.ScanIntent != ""
}

// IsEmpty reports whether neither a symbol nor a scan intent was resolved.
func (i Intent) IsEmpty() bool {
	return i.Symbol == "" && i.ScanIntent == ""
}
