package editor

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/db"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/util"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/util/compression"
)

// DBJournal stores entries in the drafts table as zstd-compressed JSON.
type DBJournal struct {
	db         db.Db
	compressor compression.Compressor
	now        func() time.Time
}

func NewDBJournal(database db.Db) *DBJournal {
	return &DBJournal{
		db:         database,
		compressor: compression.NewZstdCompressor(),
		now:        time.Now,
	}
}

func (j *DBJournal) Save(key string, c model.Content) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("error encoding draft: %w", err)
	}
	hash := util.ContentHash(raw)

	var existing sql.NullString
	err = j.db.QueryRow(`SELECT content_hash FROM drafts WHERE id = ?`, key).Scan(&existing)
	if err == nil && existing.String == hash {
		editorLogger.Trace().Str("key", key).Msg("Journal entry unchanged")
		return nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("error reading journal entry: %w", err)
	}

	compressed, err := j.compressor.Compress(raw)
	if err != nil {
		return fmt.Errorf("error compressing draft: %w", err)
	}

	_, err = j.db.Exec(`
INSERT INTO drafts (id, content_id, title, content, content_hash, updated_at) VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    content_id = excluded.content_id,
    title = excluded.title,
    content = excluded.content,
    content_hash = excluded.content_hash,
    updated_at = excluded.updated_at`,
		key, c.ID.String(), c.Title, compressed, hash, j.now().UTC())
	if err != nil {
		return fmt.Errorf("error saving journal entry: %w", err)
	}
	return nil
}

func (j *DBJournal) Load(key string) (*JournalEntry, error) {
	rows, err := j.db.Query(`SELECT id, content_id, content, updated_at FROM drafts WHERE id = ?`, key)
	if err != nil {
		return nil, fmt.Errorf("error querying journal: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return j.scan(rows)
}

func (j *DBJournal) Delete(key string) error {
	_, err := j.db.Exec(`DELETE FROM drafts WHERE id = ?`, key)
	return err
}

func (j *DBJournal) List() ([]JournalEntry, error) {
	rows, err := j.db.Query(`SELECT id, content_id, content, updated_at FROM drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying journal: %w", err)
	}
	defer rows.Close()

	entries := make([]JournalEntry, 0)
	for rows.Next() {
		entry, err := j.scan(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func (j *DBJournal) scan(rows *sql.Rows) (*JournalEntry, error) {
	var entry JournalEntry
	var contentID sql.NullString
	var compressed []byte

	if err := rows.Scan(&entry.Key, &contentID, &compressed, &entry.UpdatedAt); err != nil {
		return nil, fmt.Errorf("error scanning journal entry: %w", err)
	}
	entry.ContentID = model.ContentID(contentID.String)

	raw, err := j.compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing draft: %w", err)
	}
	if err := json.Unmarshal(raw, &entry.Content); err != nil {
		return nil, fmt.Errorf("error decoding draft: %w", err)
	}
	return &entry, nil
}
