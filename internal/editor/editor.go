// Package editor holds the draft being edited, saves it in the background while
// the user types, and moves it through its publishing lifecycle.
package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/config"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/notify"
)

var editorLogger zerolog.Logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	editorLogger = l
}

var ErrClosed = errors.New("editor closed")

// ContentStore is the server side of content persistence.
type ContentStore interface {
	GetContent(ctx context.Context, id model.ContentID) (*model.Content, error)
	Create(ctx context.Context, content model.Content, idempotencyKey string) (*model.Content, error)
	Update(ctx context.Context, id model.ContentID, content model.Content, idempotencyKey string) (*model.Content, error)
	Delete(ctx context.Context, id model.ContentID) error
}

type Options struct {
	Autosave bool
	Debounce time.Duration
	// CreateNew lets autosave create a never-saved draft with its first POST.
	CreateNew      bool
	PersistTimeout time.Duration

	Clock   Clock
	Journal Journal
	Events  *notify.Hub[Event]
}

func DefaultOptions() Options {
	return Options{
		Autosave:       true,
		Debounce:       2 * time.Second,
		CreateNew:      true,
		PersistTimeout: 15 * time.Second,
	}
}

func OptionsFromConfig(cfg config.EditorConfig) Options {
	return Options{
		Autosave:       cfg.Autosave.Enabled,
		Debounce:       cfg.Autosave.Debounce,
		CreateNew:      cfg.Autosave.CreateNew,
		PersistTimeout: cfg.PersistTimeout,
	}
}

// Draft is a point-in-time view of an editor.
type Draft struct {
	Key         string
	ID          model.ContentID
	Fields      model.Content
	Persisted   model.LifecycleState
	Dirty       bool
	LastSavedAt time.Time
	State       AutosaveState
	Autosave    bool
	Abandoned   bool
	Deleted     bool
}

type retryKey struct {
	hash string
	key  string
}

// Editor owns one draft. All methods are safe for concurrent use; network
// calls run without holding the lock, so edits keep flowing during a save.
type Editor struct {
	store   ContentStore
	clock   Clock
	journal Journal
	events  *notify.Hub[Event]

	debounce       time.Duration
	persistTimeout time.Duration
	createNew      bool

	ctx    context.Context
	cancel context.CancelFunc

	// slot admits one persist at a time, autosave or manual.
	slot chan struct{}

	mu          sync.Mutex
	key         string
	fields      model.Content
	persisted   model.Content
	lastSavedAt time.Time
	rev         uint64
	manualRead  bool

	autosave      bool
	state         AutosaveState
	timer         Timer
	gen           uint64
	epoch         uint64
	manualPending int
	inFlight      bool
	abandoned     bool
	deleted       bool
	closed        bool

	retries map[string]retryKey
}

func newEditor(store ContentStore, c model.Content, opts Options) *Editor {
	if opts.Clock == nil {
		opts.Clock = RealClock
	}
	if opts.Journal == nil {
		opts.Journal = NopJournal{}
	}
	if opts.Events == nil {
		opts.Events = notify.NewHub[Event]()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultOptions().Debounce
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = DefaultOptions().PersistTimeout
	}

	if c.State == "" {
		c.State = model.StateDraft
	}
	c.Tags = model.NormalizeTags(c.Tags)

	ctx, cancel := context.WithCancel(context.Background())
	return &Editor{
		store:          store,
		clock:          opts.Clock,
		journal:        opts.Journal,
		events:         opts.Events,
		debounce:       opts.Debounce,
		persistTimeout: opts.PersistTimeout,
		createNew:      opts.CreateNew,
		ctx:            ctx,
		cancel:         cancel,
		slot:           make(chan struct{}, 1),
		key:            uuid.NewString(),
		fields:         c.Clone(),
		persisted:      c.Clone(),
		autosave:       opts.Autosave,
		state:          Idle,
		retries:        make(map[string]retryKey),
	}
}

// New starts a never-saved draft.
func New(store ContentStore, opts Options) *Editor {
	return newEditor(store, model.Content{State: model.StateDraft}, opts)
}

// Load edits c, which is taken to be the current server copy.
func Load(store ContentStore, c model.Content, opts Options) *Editor {
	return newEditor(store, c, opts)
}

// Open fetches id and edits it.
func Open(ctx context.Context, store ContentStore, id model.ContentID, opts Options) (*Editor, error) {
	c, err := store.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.ID == "" {
		c.ID = id
	}
	return Load(store, *c, opts), nil
}

// Key identifies this editor in events. It is stable for the editor's lifetime.
func (e *Editor) Key() string {
	return e.key
}

func (e *Editor) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Draft{
		Key:         e.key,
		ID:          e.fields.ID,
		Fields:      e.fields.Clone(),
		Persisted:   e.persisted.State,
		Dirty:       e.dirtyLocked(),
		LastSavedAt: e.lastSavedAt,
		State:       e.state,
		Autosave:    e.autosave,
		Abandoned:   e.abandoned,
		Deleted:     e.deleted,
	}
}

func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirtyLocked()
}

func (e *Editor) dirtyLocked() bool {
	return !e.fields.SameFields(e.persisted)
}

// Close stops autosave. A dirty draft is written to the journal and reported.
func (e *Editor) Close() (dirty bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return e.dirtyLocked()
	}
	e.closed = true
	e.stopTimerLocked()
	if e.state == PendingDebounce {
		e.setStateLocked(Idle)
	}
	dirty = e.dirtyLocked() && !e.deleted
	if dirty {
		e.journalLocked()
	}
	e.cancel()
	return dirty
}

// mutate applies fn to the editable fields. Identity, lifecycle and server
// timestamps are restored afterwards; only the publish operations change them.
func (e *Editor) mutate(fn func(c *model.Content)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.deleted {
		return
	}

	id, state := e.fields.ID, e.fields.State
	publishAt, publishedAt, updatedAt := e.fields.PublishAt, e.fields.PublishedAt, e.fields.UpdatedAt

	fn(&e.fields)

	e.fields.ID, e.fields.State = id, state
	e.fields.PublishAt, e.fields.PublishedAt, e.fields.UpdatedAt = publishAt, publishedAt, updatedAt
	e.fields.Tags = model.NormalizeTags(e.fields.Tags)
	if !e.manualRead {
		e.fields.ReadTime = readTimeFor(e.fields.Body)
	}

	e.rev++
	e.scheduleLocked()
}

// journalLocked snapshots the current fields under the draft's journal key.
func (e *Editor) journalLocked() {
	if err := e.journal.Save(e.journalKeyLocked(), e.fields); err != nil {
		editorLogger.Error().Err(err).Str("key", e.journalKeyLocked()).Msg("Failed to write draft journal")
	}
}

func (e *Editor) journalKeyLocked() string {
	return JournalKey(e.fields.ID, e.key)
}

func (e *Editor) dropJournalLocked(key string) {
	if err := e.journal.Delete(key); err != nil {
		editorLogger.Warn().Err(err).Str("key", key).Msg("Failed to drop draft journal entry")
	}
}
