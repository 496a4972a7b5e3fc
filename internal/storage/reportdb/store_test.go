package reportdb

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/aegis/internal/common"
	"github.com/bobmcallan/aegis/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), filepath.Join(t.TempDir(), "reports"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndGetReport(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	report := &models.ResearchReport{
		ID:          "r-1",
		Task:        "research AAPL",
		Kind:        models.ReportSingleSymbol,
		Symbol:      "AAPL",
		Markdown:    "# AAPL Alpha Report",
		ChartCount:  3,
		GeneratedAt: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
	}
	if err := store.SaveReport(ctx, report); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	got, err := store.GetReport(ctx, "r-1")
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got.Symbol != "AAPL" || got.ChartCount != 3 {
		t.Errorf("got %+v", got)
	}
	if !got.GeneratedAt.Equal(report.GeneratedAt) {
		t.Errorf("GeneratedAt = %v, want %v", got.GeneratedAt, report.GeneratedAt)
	}
}

func TestSaveReportRequiresID(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveReport(context.Background(), &models.ResearchReport{Task: "no id"})
	if err == nil {
		t.Fatal("expected an error for a report without an ID")
	}
}

func TestSaveReportUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	report := &models.ResearchReport{ID: "r-1", Markdown: "v1", GeneratedAt: time.Now()}
	if err := store.SaveReport(ctx, report); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}
	report.Markdown = "v2"
	if err := store.SaveReport(ctx, report); err != nil {
		t.Fatalf("SaveReport (second) failed: %v", err)
	}

	got, err := store.GetReport(ctx, "r-1")
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got.Markdown != "v2" {
		t.Errorf("Markdown = %q, want v2", got.Markdown)
	}

	reports, err := store.ListReports(ctx, 0)
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(reports) != 1 {
		t.Errorf("%d reports, want 1 after upsert", len(reports))
	}
}

func TestGetReportNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetReport(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected an error for an unknown report")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v", err)
	}
}

func TestListReportsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		report := &models.ResearchReport{
			ID:          fmt.Sprintf("r-%d", i),
			Kind:        models.ReportSingleSymbol,
			GeneratedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := store.SaveReport(ctx, report); err != nil {
			t.Fatalf("SaveReport failed: %v", err)
		}
	}

	reports, err := store.ListReports(ctx, 3)
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("%d reports, want 3", len(reports))
	}
	if reports[0].ID != "r-4" || reports[2].ID != "r-2" {
		t.Errorf("order = %s, %s, %s", reports[0].ID, reports[1].ID, reports[2].ID)
	}
}

func TestCloseNilDB(t *testing.T) {
	store := &Store{}
	if err := store.Close(); err != nil {
		t.Fatalf("Close on nil DB should not error: %v", err)
	}
}
