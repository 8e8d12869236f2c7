package store

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"okinoko_grants/sdk"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	k BLOB PRIMARY KEY,
	v BLOB NOT NULL
)`

// SQLite persists state in a single kv table.
type SQLite struct {
	sqlDB *sql.DB
}

// OpenSQLite opens the database file at path and creates the table.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQLite{sqlDB: sqlDB}, nil
}

func (s *SQLite) Get(key string) (*string, error) {
	var val []byte
	err := s.sqlDB.QueryRow(`SELECT v FROM kv WHERE k = ?`, []byte(key)).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get: %w", err)
	}
	out := string(val)
	return &out, nil
}

func (s *SQLite) Commit(changes []sdk.Change) error {
	if len(changes) == 0 {
		return nil
	}
	tx, err := s.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	for _, ch := range changes {
		if ch.Value == nil {
			_, err = tx.Exec(`DELETE FROM kv WHERE k = ?`, []byte(ch.Key))
		} else {
			_, err = tx.Exec(
				`INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
				[]byte(ch.Key),
				[]byte(*ch.Value),
			)
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite write: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	return nil
}

// Close closes the SQLite handle.
func (s *SQLite) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
