package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bobmcallan/aegis/internal/common"
	"github.com/bobmcallan/aegis/internal/models"
)

// --- Mocks ---

type mockLiveSource struct {
	intraday *models.RawSeries
	daily    *models.RawSeries
	err      error
	calls    int
}

func (m *mockLiveSource) GetIntraday(_ context.Context, _ string) (*models.RawSeries, error) {
	m.calls++
	return m.intraday, m.err
}

func (m *mockLiveSource) GetDaily(_ context.Context, _ string) (*models.RawSeries, error) {
	m.calls++
	return m.daily, m.err
}

func newTestService(live *mockLiveSource, now time.Time) *Service {
	var svc *Service
	if live == nil {
		svc = NewService(nil, common.NewSilentLogger())
	} else {
		svc = NewService(live, common.NewSilentLogger())
	}
	svc.now = func() time.Time { return now }
	return svc
}

func TestFetchLiveFailureFallsBack(t *testing.T) {
	now := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	live := &mockLiveSource{err: errors.New("rate limited")}
	svc := newTestService(live, now)

	series, err := svc.Fetch(context.Background(), "AAPL", models.RangeIntraday)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if series.Source != models.SourceSimulated {
		t.Errorf("source = %q, want simulated", series.Source)
	}
	if series.Reason == "" {
		t.Error("expected a fallback reason")
	}
	if len(series.Bars) != 100 {
		t.Errorf("%d bars, want 100", len(series.Bars))
	}
	// Initial attempt plus bounded retries.
	if live.calls != 3 {
		t.Errorf("live called %d times, want 3", live.calls)
	}
}

func TestFetchNoLiveSource(t *testing.T) {
	now := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	svc := newTestService(nil, now)

	series, err := svc.Fetch(context.Background(), "TSLA", models.Range1W)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if series.Source != models.SourceSimulated {
		t.Errorf("source = %q, want simulated", series.Source)
	}
}

func TestFetchEmptyLiveFallsBack(t *testing.T) {
	now := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	live := &mockLiveSource{intraday: &models.RawSeries{Symbol: "AAPL", Interval: "5min"}}
	svc := newTestService(live, now)

	series, err := svc.Fetch(context.Background(), "AAPL", models.RangeIntraday)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if series.Source != models.SourceSimulated {
		t.Errorf("source = %q, want simulated", series.Source)
	}
}

func TestFetchDailyCutoff(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	live := &mockLiveSource{daily: &models.RawSeries{
		Symbol:   "AAPL",
		Interval: "daily",
		Bars: []models.RawBar{
			{Timestamp: "2026-08-01", Close: 100}, // older than 1W window
			{Timestamp: "2026-08-25", Close: 101},
			{Timestamp: "2026-08-27", Close: 102},
		},
	}}
	svc := newTestService(live, now)

	series, err := svc.Fetch(context.Background(), "AAPL", models.Range1W)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if series.Source != models.SourceLive {
		t.Fatalf("source = %q, want live", series.Source)
	}
	if len(series.Bars) != 2 {
		t.Fatalf("%d bars after cutoff, want 2", len(series.Bars))
	}
	if series.Bars[0].Close != 101 {
		t.Errorf("first retained close = %v, want 101", series.Bars[0].Close)
	}
}

func TestFetchRetainsUnparsableTimestamps(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	live := &mockLiveSource{daily: &models.RawSeries{
		Symbol:   "AAPL",
		Interval: "daily",
		Bars: []models.RawBar{
			{Timestamp: "not-a-date", Close: 99}, // fail-open: kept
			{Timestamp: "2026-08-27", Close: 102},
		},
	}}
	svc := newTestService(live, now)

	series, err := svc.Fetch(context.Background(), "AAPL", models.Range1W)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(series.Bars) != 2 {
		t.Fatalf("%d bars, want 2 (unparsable timestamp must be retained)", len(series.Bars))
	}
}

func TestFetchIntradayNoCutoff(t *testing.T) {
	now := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	live := &mockLiveSource{intraday: &models.RawSeries{
		Symbol:   "AAPL",
		Interval: "5min",
		Bars: []models.RawBar{
			{Timestamp: "2026-08-27 09:30:00", Close: 100},
			{Timestamp: "2026-08-28 14:25:00", Close: 101},
		},
	}}
	svc := newTestService(live, now)

	series, err := svc.Fetch(context.Background(), "AAPL", models.RangeIntraday)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(series.Bars) != 2 {
		t.Errorf("%d bars, want 2 (intraday applies no cutoff)", len(series.Bars))
	}
}
