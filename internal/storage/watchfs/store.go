// Package watchfs implements file-based JSON storage for the watchlist and
// the alert log. Both are plain files an operator can inspect and edit: the
// watchlist is a bare array of symbols, the alert log a newest-first array
// capped at a fixed size.
package watchfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bobmcallan/aegis/internal/common"
	"github.com/bobmcallan/aegis/internal/interfaces"
	"github.com/bobmcallan/aegis/internal/models"
)

const (
	watchlistFile = "watchlist.json"
	alertsFile    = "alerts.json"

	// AlertCap bounds the alert log; appends past it drop the oldest.
	AlertCap = 100
)

// Store provides file-based JSON storage for the watchlist and alerts.
// The mutex serializes read-modify-write cycles within this process only;
// concurrent writers in other processes need their own discipline.
type Store struct {
	basePath string
	logger   *common.Logger
	mu       sync.Mutex
}

// NewStore creates a new watchlist/alert file store.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create watch store path %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("Watch store opened")
	return &Store{basePath: path, logger: logger}, nil
}

// GetWatchlist returns the ordered symbol list. A missing or unreadable
// file yields an empty list, not an error.
func (s *Store) GetWatchlist(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.watchlistPath())
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		s.logger.Warn().Err(err).Msg("Failed to read watchlist file")
		return []string{}, nil
	}

	var symbols []string
	if err := json.Unmarshal(data, &symbols); err != nil {
		s.logger.Warn().Err(err).Msg("Watchlist file is malformed")
		return []string{}, nil
	}
	return symbols, nil
}

// SaveWatchlist replaces the symbol list.
func (s *Store) SaveWatchlist(ctx context.Context, symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if symbols == nil {
		symbols = []string{}
	}
	data, err := json.MarshalIndent(symbols, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal watchlist: %w", err)
	}
	return writeAtomic(s.watchlistPath(), data)
}

// Append prepends an alert, keeping the newest AlertCap entries.
func (s *Store) Append(ctx context.Context, alert models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts := s.readAlerts()
	alerts = append([]models.Alert{alert}, alerts...)
	if len(alerts) > AlertCap {
		alerts = alerts[:AlertCap]
	}

	data, err := json.MarshalIndent(alerts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}
	return writeAtomic(s.alertsPath(), data)
}

// Recent returns up to limit alerts, newest first. limit <= 0 means all.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts := s.readAlerts()
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}

// readAlerts loads the current log, treating a missing or corrupt file as
// empty so a bad write never wedges alerting.
func (s *Store) readAlerts() []models.Alert {
	data, err := os.ReadFile(s.alertsPath())
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Msg("Failed to read alerts file")
		}
		return nil
	}
	var alerts []models.Alert
	if err := json.Unmarshal(data, &alerts); err != nil {
		s.logger.Warn().Err(err).Msg("Alerts file is malformed, starting fresh")
		return nil
	}
	return alerts
}

func (s *Store) watchlistPath() string {
	return filepath.Join(s.basePath, watchlistFile)
}

func (s *Store) alertsPath() string {
	return filepath.Join(s.basePath, alertsFile)
}

// writeAtomic writes via a temp file and rename so readers never observe a
// half-written document.
func writeAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", target, err)
	}
	return nil
}

var (
	_ interfaces.WatchlistStore = (*Store)(nil)
	_ interfaces.AlertSink      = (*Store)(nil)
)
