package editor

import (
	"time"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/notify"
)

type EventKind int

const (
	EventStateChanged EventKind = iota
	EventSaved
	EventFailed
	EventDeleted
)

func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state"
	case EventSaved:
		return "saved"
	case EventFailed:
		return "failed"
	case EventDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event reports autosave transitions and the outcome of every persist.
type Event struct {
	Key   string
	Kind  EventKind
	Op    string
	State AutosaveState
	Dirty bool
	Err   error
	At    time.Time
}

// Subscribe returns a channel of this editor's events. Slow readers miss events.
func (e *Editor) Subscribe(buffer int) *notify.Client[Event] {
	return e.events.Subscribe(e.key, buffer)
}

func (e *Editor) Unsubscribe(c *notify.Client[Event]) {
	e.events.Delete(c)
}

func (e *Editor) emitLocked(ev Event) {
	ev.Key = e.key
	ev.State = e.state
	ev.Dirty = e.dirtyLocked()
	ev.At = e.clock.Now()
	e.events.Broadcast(e.key, ev)
}
