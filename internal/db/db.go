// Package db holds the local state database: the stored credential and the draft journal.
package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog"
)

var ErrNotInitialized = errors.New("database not initialized")

type Db interface {
	InitDb() error

	Get() *sql.DB
	Close() error

	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

var dbLogger zerolog.Logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	dbLogger = l
}
