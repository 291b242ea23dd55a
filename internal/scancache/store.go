// Package scancache persists the result of the last header scan per
// engine install so a restarted server can answer member completions
// before its own scan finishes.
//
// It uses SQLite through the pure-Go modernc.org/sqlite driver. A snapshot
// is always written and read as a whole; there is no per-file tracking.
package scancache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// DBFile is the database file name inside Config.DataDir.
const DBFile = "scan.db"

// Config holds scan cache configuration.
type Config struct {
	DataDir string
	// Keep is how many snapshots to retain per install and version key.
	Keep int
}

// DefaultConfig returns the default configuration rooted at dataDir.
func DefaultConfig(dataDir string) Config {
	return Config{DataDir: dataDir, Keep: 2}
}

// Snapshot is one complete scan result.
type Snapshot struct {
	ID          string              `json:"id"`
	InstallPath string              `json:"install_path"`
	VersionKey  string              `json:"version_key"`
	StartedAt   time.Time           `json:"started_at"`
	FinishedAt  time.Time           `json:"finished_at"`
	Files       int                 `json:"files"`
	Classes     map[string][]string `json:"classes"`
}

// Store is the SQLite-backed snapshot store.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New opens (or creates) the cache database and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("scancache: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(cfg.DataDir, DBFile))
	if err != nil {
		return nil, fmt.Errorf("scancache: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("scancache: pragma %q: %w", p, err)
		}
	}

	if cfg.Keep <= 0 {
		cfg.Keep = 1
	}
	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("scancache: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scans (
			id           TEXT PRIMARY KEY,
			install_path TEXT    NOT NULL,
			version_key  TEXT    NOT NULL,
			started_at   TEXT    NOT NULL,
			finished_at  TEXT    NOT NULL,
			files        INTEGER NOT NULL DEFAULT 0,
			classes      INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_scans_lookup
			ON scans(install_path, version_key, finished_at);

		CREATE TABLE IF NOT EXISTS scan_classes (
			scan_id TEXT NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
			class   TEXT NOT NULL,
			methods TEXT NOT NULL,
			PRIMARY KEY (scan_id, class)
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSnapshot writes snap in one transaction and prunes older snapshots
// for the same install and key. An empty ID is filled with a new UUID.
// The stored ID is returned.
func (s *Store) SaveSnapshot(snap Snapshot) (string, error) {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("scancache: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO scans (id, install_path, version_key, started_at, finished_at, files, classes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.InstallPath, snap.VersionKey,
		formatTime(snap.StartedAt), formatTime(snap.FinishedAt),
		snap.Files, len(snap.Classes),
	)
	if err != nil {
		return "", fmt.Errorf("scancache: insert scan: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO scan_classes (scan_id, class, methods) VALUES (?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("scancache: prepare: %w", err)
	}
	defer stmt.Close()

	for class, methods := range snap.Classes {
		data, err := json.Marshal(methods)
		if err != nil {
			return "", fmt.Errorf("scancache: encode %s: %w", class, err)
		}
		if _, err := stmt.Exec(snap.ID, class, string(data)); err != nil {
			return "", fmt.Errorf("scancache: insert class %s: %w", class, err)
		}
	}

	if err := s.pruneTx(tx, snap.InstallPath, snap.VersionKey); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("scancache: commit: %w", err)
	}
	return snap.ID, nil
}

func (s *Store) pruneTx(tx *sql.Tx, installPath, key string) error {
	_, err := tx.Exec(
		`DELETE FROM scans
		 WHERE install_path = ? AND version_key = ?
		   AND id NOT IN (
			SELECT id FROM scans
			WHERE install_path = ? AND version_key = ?
			ORDER BY finished_at DESC, rowid DESC
			LIMIT ?
		   )`,
		installPath, key, installPath, key, s.cfg.Keep,
	)
	if err != nil {
		return fmt.Errorf("scancache: prune: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot for an install and key,
// or (nil, nil) when there is none.
func (s *Store) LatestSnapshot(installPath, key string) (*Snapshot, error) {
	snap := &Snapshot{InstallPath: installPath, VersionKey: key, Classes: map[string][]string{}}
	var started, finished string
	err := s.db.QueryRow(
		`SELECT id, started_at, finished_at, files FROM scans
		 WHERE install_path = ? AND version_key = ?
		 ORDER BY finished_at DESC, rowid DESC LIMIT 1`,
		installPath, key,
	).Scan(&snap.ID, &started, &finished, &snap.Files)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scancache: query scan: %w", err)
	}
	snap.StartedAt = parseTime(started)
	snap.FinishedAt = parseTime(finished)

	rows, err := s.db.Query(`SELECT class, methods FROM scan_classes WHERE scan_id = ?`, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("scancache: query classes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var class, raw string
		if err := rows.Scan(&class, &raw); err != nil {
			return nil, fmt.Errorf("scancache: scan row: %w", err)
		}
		var methods []string
		if err := json.Unmarshal([]byte(raw), &methods); err != nil {
			continue
		}
		snap.Classes[class] = methods
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scancache: iterate classes: %w", err)
	}
	return snap, nil
}

// Prune keeps only the newest keep snapshots for every install and key
// pair and returns how many were removed.
func (s *Store) Prune(keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	res, err := s.db.Exec(
		`DELETE FROM scans WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY install_path, version_key
					ORDER BY finished_at DESC, rowid DESC
				) AS rn FROM scans
			) WHERE rn > ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("scancache: prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("scancache: prune: %w", err)
	}
	return int(n), nil
}

// Count returns the number of stored snapshots.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM scans`).Scan(&n); err != nil {
		return 0, fmt.Errorf("scancache: count: %w", err)
	}
	return n, nil
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
