// Package store provides the SQLite storage layer for factdice.
//
// A single database file holds:
// - user preferences (the widget theme)
// - the roll history, including which facts were shown
// - schema metadata
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.factdice/factdice.db"

// DefaultHistoryLimit caps ListRolls when no limit is given.
const DefaultHistoryLimit = 20

// Roll is one persisted roll.
type Roll struct {
	ID        int64     `json:"id"`
	DiceValue int       `json:"dice_value"`
	Topic     string    `json:"topic"`
	Facts     []string  `json:"facts"`
	Source    string    `json:"source"`
	Reason    string    `json:"reason,omitempty"`
	RolledAt  time.Time `json:"rolled_at"`
}

// ListOpts controls pagination and filtering for ListRolls.
type ListOpts struct {
	Limit  int
	Offset int
	Topic  string // empty = all topics
}

// StoreStats holds summary statistics about the store.
type StoreStats struct {
	RollCount     int64            `json:"roll_count"`
	FactsShown    int64            `json:"facts_shown"`
	RollsByTopic  map[string]int64 `json:"rolls_by_topic"`
	RollsBySource map[string]int64 `json:"rolls_by_source"`
	DBSizeBytes   int64            `json:"db_size_bytes"`
}

// StoreConfig holds configuration for NewStore.
type StoreConfig struct {
	DBPath string
}

// Store defines the storage interface.
type Store interface {
	// Preferences
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error

	// Rolls
	AddRoll(ctx context.Context, r *Roll) (int64, error)
	ListRolls(ctx context.Context, opts ListOpts) ([]*Roll, error)
	LastRoll(ctx context.Context) (*Roll, error)
	ClearRolls(ctx context.Context) (int64, error)

	// Observability
	Stats(ctx context.Context) (*StoreStats, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new SQLite-backed Store.
// Pass ":memory:" for in-memory databases (testing).
func NewStore(cfg StoreConfig) (Store, error) {
	return Open(cfg)
}

// Open is NewStore returning the concrete type.
func Open(cfg StoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = expandPath(DefaultDBPath)
	}

	// Create parent directory for non-memory databases
	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if cfg.DBPath == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, dbPath: cfg.DBPath}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Stats returns roll counts and the on-disk size.
func (s *SQLiteStore) Stats(ctx context.Context) (*StoreStats, error) {
	stats := &StoreStats{
		RollsByTopic:  map[string]int64{},
		RollsBySource: map[string]int64{},
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(json_array_length(facts)), 0) FROM rolls",
	).Scan(&stats.RollCount, &stats.FactsShown); err != nil {
		return nil, fmt.Errorf("counting rolls: %w", err)
	}

	groups := []struct {
		column string
		dest   map[string]int64
	}{
		{"topic", stats.RollsByTopic},
		{"source", stats.RollsBySource},
	}
	for _, g := range groups {
		rows, err := s.db.QueryContext(ctx, "SELECT "+g.column+", COUNT(*) FROM rolls GROUP BY "+g.column)
		if err != nil {
			return nil, fmt.Errorf("grouping rolls by %s: %w", g.column, err)
		}
		for rows.Next() {
			var key string
			var n int64
			if err := rows.Scan(&key, &n); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning %s group: %w", g.column, err)
			}
			g.dest[key] = n
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	// DB size only makes sense for file-based databases
	if s.dbPath != ":memory:" {
		var pageCount, pageSize int64
		s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
		s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		stats.DBSizeBytes = pageCount * pageSize
	}

	return stats, nil
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
