package favorites

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS favorites (
	address    TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
)`

// SQLiteStore persists the favorite set in a single-table SQLite database.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		schema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.db, nil
}

func (s *SQLiteStore) IsFavorited(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(1) FROM favorites WHERE address = ?", normalize(id)).Scan(&n); err != nil {
		return false, fmt.Errorf("query favorite: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Toggle(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	key := normalize(id)

	tx, err := db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin toggle: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec("DELETE FROM favorites WHERE address = ?", key)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	if removed == 0 {
		if _, err := tx.Exec("INSERT INTO favorites (address) VALUES (?)", key); err != nil {
			return false, fmt.Errorf("insert favorite: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit toggle: %w", err)
	}
	return removed == 0, nil
}

func (s *SQLiteStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query("SELECT address FROM favorites ORDER BY address")
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
