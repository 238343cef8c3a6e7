package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// migration is one forward step of the schema. Versions start at 1 and are
// applied in order, each inside its own transaction.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "preferences and roll history",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS preferences (
				key        TEXT PRIMARY KEY,
				value      TEXT NOT NULL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			// facts is a JSON array of the strings shown for the roll
			`CREATE TABLE IF NOT EXISTS rolls (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				dice_value INTEGER NOT NULL CHECK(dice_value BETWEEN 1 AND 6),
				topic      TEXT NOT NULL,
				facts      TEXT NOT NULL,
				source     TEXT NOT NULL CHECK(source IN ('remote','fallback','local')),
				reason     TEXT,
				rolled_at  DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_rolls_topic ON rolls(topic)`,
			`CREATE INDEX IF NOT EXISTS idx_rolls_rolled_at ON rolls(rolled_at)`,
		},
	},
}

// migrate brings the database up to the newest entry in migrations. Already
// applied steps are skipped, so reopening a database is a no-op.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT
	)`); err != nil {
		return fmt.Errorf("creating meta table: %w", err)
	}

	current, err := s.currentVersion()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.apply(m); err != nil {
			return err
		}
	}

	if _, err := s.db.Exec(
		"INSERT OR IGNORE INTO meta (key, value) VALUES ('created_at', ?)",
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("recording creation time: %w", err)
	}
	return nil
}

func (s *SQLiteStore) currentVersion() (int, error) {
	v, err := s.getMetaValue("schema_version")
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("corrupt schema version %q", v)
	}
	return n, nil
}

func (s *SQLiteStore) apply(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", m.version, err)
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)",
		strconv.Itoa(m.version),
	); err != nil {
		return fmt.Errorf("migration %d: recording version: %w", m.version, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) getMetaValue(key string) (string, error) {
	var value sql.NullString
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value.String, err
}
