package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResearch(t *testing.T) {
	var gotBody searchRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithMaxResults(3))
	results, err := client.Research(context.Background(), []string{"breaking news AAPL"}, "advanced")
	if err != nil {
		t.Fatalf("Research returned error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("%d grouped results, want 1", len(results))
	}
	if results[0].Query != "breaking news AAPL" {
		t.Errorf("query = %q", results[0].Query)
	}
	if gotBody.APIKey != "test-key" {
		t.Errorf("api_key = %q", gotBody.APIKey)
	}
	if gotBody.SearchDepth != "advanced" {
		t.Errorf("search_depth = %q", gotBody.SearchDepth)
	}
	if gotBody.MaxResults != 3 {
		t.Errorf("max_results = %d", gotBody.MaxResults)
	}
}

func TestResearchDefaultDepth(t *testing.T) {
	var gotBody searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"results": [{"title": "t", "url": "u", "content": "c"}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	results, err := client.Research(context.Background(), []string{"q"}, "")
	if err != nil {
		t.Fatalf("Research returned error: %v", err)
	}
	if gotBody.SearchDepth != "basic" {
		t.Errorf("search_depth = %q, want basic by default", gotBody.SearchDepth)
	}
	if len(results[0].Results) != 1 || results[0].Results[0].Title != "t" {
		t.Errorf("hits = %+v", results[0].Results)
	}
}

func TestResearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	if _, err := client.Research(context.Background(), []string{"q"}, "basic"); err == nil {
		t.Error("expected an error for an upstream failure")
	}
}
