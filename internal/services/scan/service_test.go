package scan

import (
	"context"
	"testing"
	"time"

	"github.com/bobmcallan/aegis/internal/common"
	"github.com/bobmcallan/aegis/internal/models"
)

// mockMarketClient serves canned series keyed by symbol.
type mockMarketClient struct {
	series map[string]*models.TimeSeries
}

func (m *mockMarketClient) Fetch(_ context.Context, symbol string, _ models.TimeRange) (*models.TimeSeries, error) {
	if s, ok := m.series[symbol]; ok {
		return s, nil
	}
	return &models.TimeSeries{Symbol: symbol}, nil
}

// seriesWithChange builds a two-bar series whose window-local change is
// exactly changePct.
func seriesWithChange(symbol string, changePct float64) *models.TimeSeries {
	open := 100.0
	close := open * (1 + changePct/100)
	now := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	return &models.TimeSeries{
		Symbol:    symbol,
		TimeRange: models.RangeIntraday,
		Source:    models.SourceSimulated,
		Bars: []models.Bar{
			{Timestamp: now.Add(-5 * time.Minute), Open: open, Close: open},
			{Timestamp: now, Open: close, Close: close},
		},
	}
}

func newTestClient() *mockMarketClient {
	return &mockMarketClient{series: map[string]*models.TimeSeries{
		"A": seriesWithChange("A", 5),
		"B": seriesWithChange("B", -3),
		"C": seriesWithChange("C", 0),
	}}
}

func symbolsOf(results []models.ScanResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Symbol
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestScanDirectionalFilters(t *testing.T) {
	svc := NewService(newTestClient(), common.NewSilentLogger())
	watchlist := []string{"A", "B", "C"}

	tests := []struct {
		intent models.ScanIntent
		want   []string
	}{
		{models.ScanUpward, []string{"A"}},
		{models.ScanDownward, []string{"B"}},
		{models.ScanAll, []string{"A", "C", "B"}},
	}

	for _, tc := range tests {
		outcome, err := svc.Scan(context.Background(), watchlist, tc.intent, models.RangeIntraday)
		if err != nil {
			t.Fatalf("%s: Scan returned error: %v", tc.intent, err)
		}
		if got := symbolsOf(outcome.Results); !equalStrings(got, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.intent, got, tc.want)
		}
	}
}

func TestScanChangeValues(t *testing.T) {
	svc := NewService(newTestClient(), common.NewSilentLogger())

	outcome, err := svc.Scan(context.Background(), []string{"A"}, models.ScanAll, models.RangeIntraday)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(outcome.Results) != 1 {
		t.Fatalf("%d results, want 1", len(outcome.Results))
	}
	r := outcome.Results[0]
	if r.ChangePct < 4.99 || r.ChangePct > 5.01 {
		t.Errorf("change = %v, want ~5", r.ChangePct)
	}
	if r.Price != 105 {
		t.Errorf("price = %v, want 105", r.Price)
	}
}

func TestScanEmptyWatchlist(t *testing.T) {
	svc := NewService(newTestClient(), common.NewSilentLogger())

	outcome, err := svc.Scan(context.Background(), nil, models.ScanAll, models.RangeIntraday)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if outcome.Status == "" {
		t.Error("expected an explanatory status for an empty watchlist")
	}
	if len(outcome.Results) != 0 {
		t.Errorf("%d results, want 0", len(outcome.Results))
	}
}

func TestScanExcludesSymbolsWithoutData(t *testing.T) {
	svc := NewService(newTestClient(), common.NewSilentLogger())

	// D has no series; it must be excluded without failing the batch.
	outcome, err := svc.Scan(context.Background(), []string{"A", "D", "B"}, models.ScanAll, models.RangeIntraday)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if got := symbolsOf(outcome.Results); !equalStrings(got, []string{"A", "B"}) {
		t.Errorf("got %v, want [A B]", got)
	}
}
