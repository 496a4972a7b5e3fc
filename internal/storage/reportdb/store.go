// Package reportdb provides BadgerHold-based persistence for generated
// research reports.
package reportdb

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/aegis/internal/common"
	"github.com/bobmcallan/aegis/internal/interfaces"
	"github.com/bobmcallan/aegis/internal/models"
)

// Store wraps a BadgerHold database holding report history.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore opens a BadgerHold store at the given directory path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report store directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open report database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("Report store opened")
	return &Store{db: db, logger: logger}, nil
}

// SaveReport upserts a report keyed by its ID.
func (s *Store) SaveReport(_ context.Context, report *models.ResearchReport) error {
	if report.ID == "" {
		return fmt.Errorf("report ID is required")
	}
	if err := s.db.Upsert(report.ID, report); err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.ID, err)
	}
	s.logger.Debug().Str("report_id", report.ID).Str("kind", string(report.Kind)).Msg("Report saved")
	return nil
}

// GetReport fetches one report by ID.
func (s *Store) GetReport(_ context.Context, id string) (*models.ResearchReport, error) {
	var report models.ResearchReport
	if err := s.db.Get(id, &report); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("report '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get report '%s': %w", id, err)
	}
	return &report, nil
}

// ListReports returns up to limit reports, newest first.
func (s *Store) ListReports(_ context.Context, limit int) ([]*models.ResearchReport, error) {
	var reports []*models.ResearchReport
	if err := s.db.Find(&reports, nil); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].GeneratedAt.After(reports[j].GeneratedAt)
	})
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ interfaces.ReportStore = (*Store)(nil)
