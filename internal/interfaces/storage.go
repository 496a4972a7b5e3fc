package interfaces

import (
	"context"

	"github.com/bobmcallan/aegis/internal/models"
)

// WatchlistStore reads the externally-managed watchlist. The list is read
// before every scan and monitor cycle; writes come from an external
// management surface.
type WatchlistStore interface {
	// GetWatchlist returns the ordered symbol list. A missing list is not
	// an error: it returns an empty slice.
	GetWatchlist(ctx context.Context) ([]string, error)

	// SaveWatchlist replaces the symbol list.
	SaveWatchlist(ctx context.Context, symbols []string) error
}

// AlertSink receives monitor alerts. Append is newest-first and the backing
// log is bounded; implementations drop the oldest entries past the cap.
type AlertSink interface {
	// Append prepends an alert to the log.
	Append(ctx context.Context, alert models.Alert) error

	// Recent returns up to limit alerts, newest first.
	Recent(ctx context.Context, limit int) ([]models.Alert, error)
}

// ReportStore persists generated research reports.
type ReportStore interface {
	SaveReport(ctx context.Context, report *models.ResearchReport) error
	GetReport(ctx context.Context, id string) (*models.ResearchReport, error)
	ListReports(ctx context.Context, limit int) ([]*models.ResearchReport, error)
	Close() error
}
