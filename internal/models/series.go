// Package models defines data structures for Aegis
package models

import (
	"time"
)

// TimeRange identifies the requested data window for a market-data fetch.
type TimeRange string

const (
	RangeIntraday TimeRange = "INTRADAY"
	Range1D       TimeRange = "1D"
	Range3D       TimeRange = "3D"
	Range1W       TimeRange = "1W"
	Range1M       TimeRange = "1M"
	Range3M       TimeRange = "3M"
	Range1Y       TimeRange = "1Y"
)

// ParseTimeRange normalizes a raw range string, defaulting to INTRADAY.
func ParseTimeRange(s string) TimeRange {
	switch TimeRange(s) {
	case Range1D, Range3D, Range1W, Range1M, Range3M, Range1Y:
		return TimeRange(s)
	default:
		return RangeIntraday
	}
}

// Days returns the calendar span of a daily range. INTRADAY has no daily
// span and returns 0.
func (r TimeRange) Days() int {
	switch r {
	case Range1D:
		return 1
	case Range3D:
		return 3
	case Range1W:
		return 7
	case Range1M:
		return 30
	case Range3M:
		return 90
	case Range1Y:
		return 365
	default:
		return 0
	}
}

// Points returns the number of bars a synthetic series of this range carries.
func (r TimeRange) Points() int {
	if r == RangeIntraday {
		return 100
	}
	return r.Days()
}

// Spacing returns the timestamp spacing between consecutive bars.
func (r TimeRange) Spacing() time.Duration {
	if r == RangeIntraday {
		return 5 * time.Minute
	}
	return 24 * time.Hour
}

// Series provenance values.
const (
	SourceLive      = "live"
	SourceSimulated = "simulated"
)

// RawBar is a wire-shaped OHLCV point from the live collaborator. The
// timestamp is kept unparsed so downstream windowing can fail open on
// unparsable values instead of dropping them at decode time.
type RawBar struct {
	Timestamp string  `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
}

// RawSeries is the live collaborator's response before windowing and
// provenance tagging.
type RawSeries struct {
	Symbol   string   `json:"symbol"`
	Interval string   `json:"interval"` // "5min" for intraday, "daily" otherwise
	Bars     []RawBar `json:"bars"`
}

// Bar is a single OHLCV data point.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// TimeSeries is an ordered OHLCV series for one symbol. Bars are sorted by
// strictly increasing timestamp with no duplicates. Source records whether the
// data came from the live collaborator or the deterministic synthesizer; the
// provenance travels with the series all the way into the final report.
type TimeSeries struct {
	Symbol    string    `json:"symbol"`
	TimeRange TimeRange `json:"time_range"`
	Source    string    `json:"source"`           // "live" or "simulated"
	Reason    string    `json:"reason,omitempty"` // human-readable note when simulated
	Bars      []Bar     `json:"bars"`
}

// IsEmpty reports whether the series carries no data points.
func (s *TimeSeries) IsEmpty() bool {
	return s == nil || len(s.Bars) == 0
}

// FirstOpen returns the open of the earliest bar.
func (s *TimeSeries) FirstOpen() float64 {
	if s.IsEmpty() {
		return 0
	}
	return s.Bars[0].Open
}

// LastClose returns the close of the most recent bar.
func (s *TimeSeries) LastClose() float64 {
	if s.IsEmpty() {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}

// CloseAt returns the close offset positions back from the most recent bar,
// clamped to the earliest bar.
func (s *TimeSeries) CloseAt(offset int) float64 {
	if s.IsEmpty() {
		return 0
	}
	idx := len(s.Bars) - 1 - offset
	if idx < 0 {
		idx = 0
	}
	return s.Bars[idx].Close
}
