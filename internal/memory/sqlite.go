package memory

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite stores one row per exchange; seq preserves arrival order.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS memories (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			user TEXT NOT NULL,
			message TEXT NOT NULL,
			response TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init %s: %w", path, err)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Load() ([]Entry, error) {
	rows, err := s.db.Query(`SELECT user, message, response FROM memories ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.User, &e.Message, &e.Response); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLite) Save(_ []Entry, added Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO memories (user, message, response, created_at) VALUES (?, ?, ?, ?)`,
		added.User, added.Message, added.Response, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLite) Clear() error {
	_, err := s.db.Exec(`DELETE FROM memories`)
	return err
}

func (s *SQLite) Close() error { return s.db.Close() }
