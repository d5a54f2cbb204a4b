package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

const alertedTable = "alerted_jobs"

// SQLiteLedger records which identity keys have been alerted so a posting
// is announced at most once across runs.
type SQLiteLedger struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteLedger opens (or creates) a SQLite database at dbPath and ensures
// the alerted_jobs table exists.
func NewSQLiteLedger(dbPath string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS alerted_jobs (
		identity_key TEXT PRIMARY KEY,
		alerted_at   INTEGER NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating alerted_jobs table: %w", err)
	}

	return &SQLiteLedger{db: db, now: time.Now}, nil
}

// HasAlerted returns true if the identity key has already been alerted.
func (s *SQLiteLedger) HasAlerted(identityKey string) (bool, error) {
	var exists int
	err := sq.Select("1").
		From(alertedTable).
		Where(sq.Eq{"identity_key": identityKey}).
		Limit(1).
		RunWith(s.db).
		QueryRow().
		Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking alert status for %s: %w", identityKey, err)
	}
	return true, nil
}

// MarkAlerted records the identity key. If it already exists the call is a
// no-op and the original timestamp is kept.
func (s *SQLiteLedger) MarkAlerted(identityKey string) error {
	_, err := sq.Insert(alertedTable).
		Options("OR IGNORE").
		Columns("identity_key", "alerted_at").
		Values(identityKey, s.now().Unix()).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("marking %s as alerted: %w", identityKey, err)
	}
	return nil
}

// Cleanup deletes entries older than the given duration.
func (s *SQLiteLedger) Cleanup(olderThan time.Duration) error {
	cutoff := s.now().Add(-olderThan).Unix()
	_, err := sq.Delete(alertedTable).
		Where(sq.Lt{"alerted_at": cutoff}).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("cleaning up alerts older than %v: %w", olderThan, err)
	}
	return nil
}

// Count returns the number of recorded alerts.
func (s *SQLiteLedger) Count() (int, error) {
	var count int
	err := sq.Select("COUNT(*)").
		From(alertedTable).
		RunWith(s.db).
		QueryRow().
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting alerts: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *SQLiteLedger) Close() error {
	return s.db.Close()
}
