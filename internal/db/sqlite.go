package db

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS drafts (
    id TEXT PRIMARY KEY,
    content_id TEXT,
    title TEXT,
    content BLOB,
    content_hash TEXT,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

type SQLite struct {
	path string
	conn *sql.DB
}

// NewSQLite returns an unopened database at path. ":memory:" is accepted.
func NewSQLite(path string) *SQLite {
	return &SQLite{
		path: path,
		conn: nil,
	}
}

func (s *SQLite) InitDb() error {
	conn, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return errors.Wrapf(err, "open %s", s.path)
	}

	// One writer; an in-memory database is also private to its connection.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		err = errors.Wrap(err, "create schema")
		dbLogger.Error().Stack().Err(err).Str("path", s.path).Msg("Database initialization failed")
		return err
	}

	s.conn = conn
	dbLogger.Debug().Str("path", s.path).Msg("Database initialized")
	return nil
}

func (s *SQLite) Get() *sql.DB {
	return s.conn
}

func (s *SQLite) Close() error {
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

func (s *SQLite) Query(query string, args ...interface{}) (*sql.Rows, error) {
	if s.conn == nil {
		return nil, ErrNotInitialized
	}
	dbLogger.Trace().Str("query", query).Msg("Query")
	return s.conn.Query(query, args...)
}

func (s *SQLite) QueryRow(query string, args ...interface{}) *sql.Row {
	dbLogger.Trace().Str("query", query).Msg("QueryRow")
	return s.conn.QueryRow(query, args...)
}

func (s *SQLite) Exec(query string, args ...interface{}) (sql.Result, error) {
	if s.conn == nil {
		return nil, ErrNotInitialized
	}
	dbLogger.Trace().Str("query", query).Msg("Exec")
	return s.conn.Exec(query, args...)
}
