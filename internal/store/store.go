// Package store keeps modulajar's local state in SQLite: the LLM event log,
// generation history, the working draft and app settings.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// pragmas are set on every pooled connection through the DSN.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(ON)",
	"synchronous(NORMAL)",
}

// Store owns the database handle and hands out repositories over it.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and brings its schema up to
// date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", withPragmas(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func withPragmas(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

func (s *Store) DB() *sql.DB  { return s.db }
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) EventRepo() EventRepo       { return &eventRepo{db: s.db} }
func (s *Store) HistoryRepo() HistoryRepo   { return &historyRepo{db: s.db} }
func (s *Store) DraftRepo() DraftRepo       { return &draftRepo{db: s.db} }
func (s *Store) SettingsRepo() SettingsRepo { return &settingsRepo{db: s.db} }

// DefaultDBPath is $MODULAJAR_DB if set, else modulajar.db under
// $XDG_DATA_HOME/modulajar (~/.local/share by default). The parent
// directory is created.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("MODULAJAR_DB"); p != "" {
		return p, EnsureDir(p)
	}
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locate data dir: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	p := filepath.Join(base, "modulajar", "modulajar.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the directory that will hold path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
