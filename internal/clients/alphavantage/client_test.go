package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetIntraday_ParsesAndSorts(t *testing.T) {
	// Alpha Vantage returns string-encoded numbers and an unordered map.
	body := `{
		"Meta Data": {"2. Symbol": "AAPL"},
		"Time Series (5min)": {
			"2026-08-28 14:30:00": {"1. open": "101.0", "2. high": "102.0", "3. low": "100.5", "4. close": "101.5", "5. volume": "120000"},
			"2026-08-28 14:25:00": {"1. open": "100.0", "2. high": "101.0", "3. low": "99.5", "4. close": "100.5", "5. volume": "110000"}
		}
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "TIME_SERIES_INTRADAY" {
			t.Errorf("function = %q", got)
		}
		if got := r.URL.Query().Get("interval"); got != "5min" {
			t.Errorf("interval = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	raw, err := client.GetIntraday(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetIntraday returned error: %v", err)
	}

	if len(raw.Bars) != 2 {
		t.Fatalf("%d bars, want 2", len(raw.Bars))
	}
	// Sorted ascending by timestamp.
	if raw.Bars[0].Timestamp != "2026-08-28 14:25:00" {
		t.Errorf("first bar timestamp = %q", raw.Bars[0].Timestamp)
	}
	if raw.Bars[0].Open != 100.0 || raw.Bars[1].Close != 101.5 {
		t.Errorf("numeric parse wrong: %+v", raw.Bars)
	}
	if raw.Bars[1].Volume != 120000 {
		t.Errorf("volume = %d", raw.Bars[1].Volume)
	}
}

func TestGetDaily_InBodyThrottleNote(t *testing.T) {
	body := `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.GetDaily(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected an error for an in-body throttle note")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
}

func TestGetIntraday_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.GetIntraday(context.Background(), "AAPL")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`"123.45"`, 123.45},
		{`123.45`, 123.45},
		{`"N/A"`, 0},
		{`""`, 0},
		{`"garbage"`, 0},
	}
	for _, tc := range tests {
		var f flexFloat
		if err := f.UnmarshalJSON([]byte(tc.raw)); err != nil {
			t.Errorf("%s: unexpected error %v", tc.raw, err)
			continue
		}
		if float64(f) != tc.want {
			t.Errorf("%s: got %v, want %v", tc.raw, float64(f), tc.want)
		}
	}
}
