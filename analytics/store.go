package analytics

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrMissingProfileID is returned when a beacon arrives without a profile id.
// No side effect occurs.
var ErrMissingProfileID = errors.New("profileId is required")

// Result is the outcome of one recordView call.
type Result struct {
	Recorded bool   `json:"recorded"`
	Reason   string `json:"reason,omitempty"`
}

// Store provides database operations for view events.
type Store struct {
	db *sql.DB

	// now is the clock used for timestamps and the dedup window.
	// Overridable in tests.
	now func() time.Time
}

// NewStore opens (or creates) the analytics SQLite database at path.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create analytics dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS view_events (
			id TEXT PRIMARY KEY,
			profile_id TEXT NOT NULL,
			viewed_at DATETIME NOT NULL,
			ip_address TEXT NOT NULL,
			user_agent TEXT NOT NULL DEFAULT '',
			referer TEXT NOT NULL DEFAULT '',
			country TEXT,
			city TEXT,
			device TEXT NOT NULL DEFAULT '',
			browser TEXT NOT NULL DEFAULT '',
			os TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_view_events_dedup ON view_events(profile_id, ip_address, viewed_at);
		CREATE INDEX IF NOT EXISTS idx_view_events_viewed_at ON view_events(viewed_at);
	`)
	return err
}

// RecordView persists one page-view beacon unless an event with the same
// (profile, IP) pair exists inside the dedup window. The read-for-dedup and
// the conditional insert run in a single immediate transaction, so two
// concurrent beacons for the same pair cannot both pass the not-found check.
// An intentional under-count: reloads, bot re-fetches, and distinct visitors
// behind one NAT collapse into a single recorded view per window.
func (s *Store) RecordView(profileID string, meta RequestMeta) (Result, error) {
	if strings.TrimSpace(profileID) == "" {
		return Result{}, ErrMissingProfileID
	}
	now := s.now().UTC()
	windowStart := now.Add(-DedupWindow)

	tx, err := s.db.Begin()
	if err != nil {
		return Result{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRow(`SELECT id FROM view_events WHERE profile_id = ? AND ip_address = ? AND viewed_at >= ? LIMIT 1`,
		profileID, meta.IPAddress, windowStart).Scan(&existing)
	switch {
	case err == nil:
		return Result{Recorded: false, Reason: "duplicate"}, nil
	case err != sql.ErrNoRows:
		return Result{}, fmt.Errorf("dedup check: %w", err)
	}

	_, err = tx.Exec(`INSERT INTO view_events (id, profile_id, viewed_at, ip_address, user_agent, referer, country, city, device, browser, os)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), profileID, now, meta.IPAddress, meta.UserAgent, meta.Referer,
		meta.Country, meta.City, meta.Device, meta.Browser, meta.OS)
	if err != nil {
		return Result{}, fmt.Errorf("insert view: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("commit: %w", err)
	}
	return Result{Recorded: true}, nil
}

// ListEvents returns every view event for the given profiles, newest first.
// The aggregator runs over this full result set.
func (s *Store) ListEvents(profileIDs []string) ([]ViewEvent, error) {
	if len(profileIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(profileIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(profileIDs))
	for i, id := range profileIDs {
		args[i] = id
	}
	rows, err := s.db.Query(`SELECT id, profile_id, viewed_at, ip_address, user_agent, referer, country, city, device, browser, os
		FROM view_events WHERE profile_id IN (`+placeholders+`) ORDER BY viewed_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ViewEvent
	for rows.Next() {
		var v ViewEvent
		if err := rows.Scan(&v.ID, &v.ProfileID, &v.ViewedAt, &v.IPAddress, &v.UserAgent, &v.Referer,
			&v.Country, &v.City, &v.Device, &v.Browser, &v.OS); err != nil {
			return nil, err
		}
		events = append(events, v)
	}
	return events, rows.Err()
}

// CountEvents returns the total stored event count for one profile.
func (s *Store) CountEvents(profileID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM view_events WHERE profile_id = ?`, profileID).Scan(&n)
	return n, err
}
