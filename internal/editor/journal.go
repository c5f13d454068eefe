package editor

import (
	"slices"
	"sync"
	"time"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
)

// JournalEntry is a local snapshot of a draft that has not reached the server.
type JournalEntry struct {
	Key       string
	ContentID model.ContentID
	Content   model.Content
	UpdatedAt time.Time
}

// Journal keeps the last unsaved state of each draft on this machine.
type Journal interface {
	Save(key string, c model.Content) error
	// Load returns nil when key has no entry.
	Load(key string) (*JournalEntry, error)
	Delete(key string) error
	List() ([]JournalEntry, error)
}

// JournalKey names the entry of a saved post by its id, and of a new draft by
// the editor's local key.
func JournalKey(id model.ContentID, localKey string) string {
	if id != "" {
		return "content/" + id.String()
	}
	return "local/" + localKey
}

type NopJournal struct{}

func (NopJournal) Save(string, model.Content) error   { return nil }
func (NopJournal) Load(string) (*JournalEntry, error) { return nil, nil }
func (NopJournal) Delete(string) error                { return nil }
func (NopJournal) List() ([]JournalEntry, error)      { return nil, nil }

type MemoryJournal struct {
	entries sync.Map
	now     func() time.Time
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{now: time.Now}
}

func (m *MemoryJournal) Save(key string, c model.Content) error {
	m.entries.Store(key, &JournalEntry{
		Key:       key,
		ContentID: c.ID,
		Content:   c.Clone(),
		UpdatedAt: m.now(),
	})
	return nil
}

func (m *MemoryJournal) Load(key string) (*JournalEntry, error) {
	if v, ok := m.entries.Load(key); ok {
		entry := *v.(*JournalEntry)
		entry.Content = entry.Content.Clone()
		return &entry, nil
	}
	return nil, nil
}

func (m *MemoryJournal) Delete(key string) error {
	m.entries.Delete(key)
	return nil
}

func (m *MemoryJournal) List() ([]JournalEntry, error) {
	var out []JournalEntry
	m.entries.Range(func(_, v any) bool {
		out = append(out, *v.(*JournalEntry))
		return true
	})
	sortEntries(out)
	return out, nil
}

// sortEntries orders newest first.
func sortEntries(entries []JournalEntry) {
	slices.SortStableFunc(entries, func(a, b JournalEntry) int {
		return -a.UpdatedAt.Compare(b.UpdatedAt)
	})
}
