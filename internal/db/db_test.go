package db

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

const failedToInitDB = "Failed to initialize database: %v"

const select1 = `SELECT 1`

func newTestDB(t *testing.T) *SQLite {
	t.Helper()

	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	db := NewSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err := db.InitDb(); err != nil {
		t.Fatalf(failedToInitDB, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewSQLite(t *testing.T) {
	db := NewSQLite(":memory:")

	if db == nil {
		t.Fatal("Expected non-nil SQLite instance")
	}

	if db.conn != nil {
		t.Error("Expected connection to be nil initially")
	}
}

func TestSQLiteSchema(t *testing.T) {
	db := newTestDB(t)

	t.Run("Tables are created", func(t *testing.T) {
		for _, table := range []string{"credentials", "drafts"} {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
			if err != nil {
				t.Errorf("Expected table %s to exist: %v", table, err)
			}
		}
	})

	t.Run("Drafts columns", func(t *testing.T) {
		rows, err := db.Query("PRAGMA table_info(drafts)")
		if err != nil {
			t.Fatalf("Failed to get drafts table info: %v", err)
		}
		defer rows.Close()

		columns := make(map[string]bool)
		for rows.Next() {
			var cid int
			var name, dataType string
			var notNull, pk int
			var defaultValue sql.NullString

			if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
				t.Errorf("Failed to scan column info: %v", err)
				continue
			}
			columns[name] = true
		}

		for _, col := range []string{"id", "content_id", "title", "content", "content_hash", "updated_at"} {
			if !columns[col] {
				t.Errorf("Expected drafts table to have column %s", col)
			}
		}
	})

	t.Run("InitDb is repeatable", func(t *testing.T) {
		again := NewSQLite(db.path)
		if err := again.InitDb(); err != nil {
			t.Fatalf(failedToInitDB, err)
		}
		again.Close()
	})
}

func TestSQLiteQueryAndExec(t *testing.T) {
	db := newTestDB(t)

	result, err := db.Exec("INSERT INTO credentials (key, value) VALUES (?, ?)", "auth_token", "abc")
	if err != nil {
		t.Fatalf("Failed to insert credential: %v", err)
	}
	if n, _ := result.RowsAffected(); n != 1 {
		t.Errorf("Expected 1 row affected, got %d", n)
	}

	rows, err := db.Query("SELECT value FROM credentials WHERE key = ?", "auth_token")
	if err != nil {
		t.Fatalf("Failed to query credential: %v", err)
	}
	defer rows.Close()

	if !rows.Next() {
		t.Fatal("Expected to find inserted credential")
	}
	var value string
	if err := rows.Scan(&value); err != nil {
		t.Fatalf("Failed to scan credential: %v", err)
	}
	if value != "abc" {
		t.Errorf("Expected value 'abc', got %q", value)
	}
}

func TestSQLiteErrorHandling(t *testing.T) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	t.Run("Query on uninitialized database", func(t *testing.T) {
		db := NewSQLite(":memory:")
		if _, err := db.Query(select1); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("Expected ErrNotInitialized, got %v", err)
		}
	})

	t.Run("Exec on uninitialized database", func(t *testing.T) {
		db := NewSQLite(":memory:")
		if _, err := db.Exec(select1); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("Expected ErrNotInitialized, got %v", err)
		}
	})

	t.Run("Invalid SQL", func(t *testing.T) {
		db := newTestDB(t)
		if _, err := db.Exec("INVALID SQL SYNTAX"); err == nil {
			t.Error("Expected error for invalid SQL")
		}
	})

	t.Run("Unwritable path", func(t *testing.T) {
		db := NewSQLite(filepath.Join(t.TempDir(), "missing", "dir", "state.db"))
		if err := db.InitDb(); err == nil {
			db.Close()
			t.Error("Expected error for a path in a missing directory")
		}
	})

	t.Run("Close twice", func(t *testing.T) {
		db := newTestDB(t)
		if err := db.Close(); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Errorf("Expected second close to be a no-op, got %v", err)
		}
	})
}
