package credential

import (
	"database/sql"
	"errors"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/db"
)

// DBStore keeps the token in the credentials table of the local state database.
type DBStore struct {
	db  db.Db
	key string
}

func NewDBStore(database db.Db, key string) *DBStore {
	if key == "" {
		key = DefaultKey
	}
	return &DBStore{db: database, key: key}
}

func (s *DBStore) Get() (string, error) {
	rows, err := s.db.Query(`SELECT value FROM credentials WHERE key = ?`, s.key)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	if !rows.Next() {
		return "", rows.Err()
	}

	var token sql.NullString
	if err := rows.Scan(&token); err != nil {
		return "", err
	}
	return token.String, nil
}

func (s *DBStore) Set(token string) error {
	if token == "" {
		return s.Clear()
	}

	_, err := s.db.Exec(`
INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, s.key, token)
	return err
}

func (s *DBStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM credentials WHERE key = ?`, s.key)
	if errors.Is(err, db.ErrNotInitialized) {
		return ErrClosed
	}
	return err
}
