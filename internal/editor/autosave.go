package editor

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/errs"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/util"
)

type AutosaveState int

const (
	Idle AutosaveState = iota
	PendingDebounce
	Saving
	SaveFailed
)

func (s AutosaveState) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingDebounce:
		return "pending"
	case Saving:
		return "saving"
	case SaveFailed:
		return "save failed"
	default:
		return "unknown"
	}
}

const opAutosave = "autosave"

// SetAutosave toggles background saving. Turning it off cancels a pending
// timer at once; a save already in flight completes.
func (e *Editor) SetAutosave(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autosave = enabled
	if !enabled {
		e.stopTimerLocked()
		if e.state == PendingDebounce {
			e.setStateLocked(Idle)
		}
		return
	}
	e.scheduleLocked()
}

func (e *Editor) State() AutosaveState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Editor) setStateLocked(s AutosaveState) {
	if e.state == s {
		return
	}
	e.state = s
	e.emitLocked(Event{Kind: EventStateChanged})
}

func (e *Editor) eligibleLocked() bool {
	if !e.autosave || e.abandoned || e.deleted || e.closed {
		return false
	}
	if e.persisted.State == model.StateArchived {
		return false
	}
	if e.fields.ID == "" && !e.createNew {
		return false
	}
	return e.dirtyLocked()
}

// stopTimerLocked cancels the debounce timer. Bumping gen makes a callback
// that already fired a no-op.
func (e *Editor) stopTimerLocked() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// scheduleLocked (re)arms the debounce timer after an edit.
func (e *Editor) scheduleLocked() {
	if e.manualPending > 0 || e.state == Saving {
		return
	}
	if !e.eligibleLocked() {
		if e.state == PendingDebounce {
			e.stopTimerLocked()
			e.setStateLocked(Idle)
		}
		return
	}

	e.stopTimerLocked()
	gen := e.gen
	e.timer = e.clock.AfterFunc(e.debounce, func() { e.fire(gen) })
	e.setStateLocked(PendingDebounce)
}

// fire runs when the debounce window closes.
func (e *Editor) fire(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.state != PendingDebounce || e.manualPending > 0 {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	if !e.eligibleLocked() {
		e.setStateLocked(Idle)
		e.mu.Unlock()
		return
	}
	e.setStateLocked(Saving)
	epoch := e.epoch
	e.mu.Unlock()

	e.slot <- struct{}{}
	defer func() { <-e.slot }()

	e.mu.Lock()
	if e.epoch != epoch || e.manualPending > 0 || !e.eligibleLocked() {
		// A manual operation got in first and owns the state now.
		if e.epoch == epoch && e.manualPending == 0 {
			e.setStateLocked(Idle)
		}
		e.mu.Unlock()
		return
	}
	rev := e.rev
	due := e.scheduleDueLocked()
	id := e.fields.ID
	e.inFlight = true
	ctx, cancel := context.WithTimeout(e.ctx, e.persistTimeout)
	e.mu.Unlock()
	defer cancel()

	var current *model.Content
	if due {
		// The server may have published the post since it was loaded.
		var err error
		if current, err = e.store.GetContent(ctx, id); err != nil {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.inFlight = false
			editorLogger.Debug().Err(err).Str("id", id.String()).Msg("Refreshing scheduled post failed")
			e.failedLocked(opAutosave, err)
			if e.manualPending == 0 {
				e.setStateLocked(SaveFailed)
			}
			return
		}
	}

	e.mu.Lock()
	if current != nil {
		e.adoptLifecycleLocked(*current)
	}
	if e.persisted.State == model.StateArchived {
		e.inFlight = false
		if e.manualPending == 0 {
			e.setStateLocked(Idle)
		}
		e.mu.Unlock()
		return
	}
	payload := e.autosavePayloadLocked()
	key := e.idempotencyKeyLocked(opAutosave, payload)
	e.mu.Unlock()

	resp, err := e.persist(ctx, payload, key)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight = false

	if err != nil {
		editorLogger.Debug().Err(err).Str("id", payload.ID.String()).Msg("Autosave failed")
		e.failedLocked(opAutosave, err)
		if e.manualPending == 0 {
			e.setStateLocked(SaveFailed)
		}
		return
	}

	e.reconcileLocked(payload, resp)
	delete(e.retries, opAutosave)
	e.emitLocked(Event{Kind: EventSaved, Op: opAutosave})
	editorLogger.Debug().Str("id", e.fields.ID.String()).Msg("Autosaved")

	if e.manualPending > 0 {
		return
	}
	e.setStateLocked(Idle)
	if e.rev != rev {
		e.scheduleLocked()
	}
}

// autosavePayloadLocked never changes the lifecycle: drafts and new posts go
// out as draft, a live or scheduled post keeps its server state so only its
// content is updated.
func (e *Editor) autosavePayloadLocked() model.Content {
	p := e.fields.Clone()
	switch e.persisted.State {
	case model.StatePublished, model.StateScheduled:
		p.State = e.persisted.State
	default:
		p.State = model.StateDraft
	}
	p.PublishAt = cloneTime(e.persisted.PublishAt)
	p.PublishedAt = cloneTime(e.persisted.PublishedAt)
	return p
}

// scheduleDueLocked reports a scheduled post whose publish time has passed;
// its lifecycle on the server is no longer known.
func (e *Editor) scheduleDueLocked() bool {
	if e.persisted.State != model.StateScheduled || e.fields.ID == "" {
		return false
	}
	return e.persisted.PublishAt == nil || !e.persisted.PublishAt.After(e.clock.Now())
}

// adoptLifecycleLocked takes the server's lifecycle and timestamps, leaving
// the edits alone.
func (e *Editor) adoptLifecycleLocked(c model.Content) {
	if c.State == "" {
		c.State = model.StateDraft
	}
	for _, p := range []*model.Content{&e.persisted, &e.fields} {
		p.State = c.State
		p.PublishAt = cloneTime(c.PublishAt)
		p.PublishedAt = cloneTime(c.PublishedAt)
	}
}

func (e *Editor) persist(ctx context.Context, payload model.Content, key string) (*model.Content, error) {
	if payload.ID == "" {
		return e.store.Create(ctx, payload, key)
	}
	return e.store.Update(ctx, payload.ID, payload, key)
}

// reconcileLocked records sent as the persisted snapshot, merged with what the
// server assigned. Edits made while the request was out stay dirty.
func (e *Editor) reconcileLocked(sent model.Content, resp *model.Content) {
	p := sent.Clone()
	if resp != nil {
		if resp.ID != "" {
			p.ID = resp.ID
		}
		if resp.PublishedAt != nil && p.State == model.StatePublished {
			p.PublishedAt = cloneTime(resp.PublishedAt)
		}
		p.UpdatedAt = cloneTime(resp.UpdatedAt)
	}

	localKey := e.journalKeyLocked()

	e.persisted = p
	e.fields.ID = p.ID
	e.fields.State = p.State
	e.fields.PublishAt = cloneTime(p.PublishAt)
	e.fields.PublishedAt = cloneTime(p.PublishedAt)
	e.fields.UpdatedAt = cloneTime(p.UpdatedAt)
	e.lastSavedAt = e.clock.Now()

	if newKey := e.journalKeyLocked(); newKey != localKey {
		e.dropJournalLocked(localKey)
	}
	if !e.dirtyLocked() {
		e.dropJournalLocked(e.journalKeyLocked())
	}
}

// failedLocked keeps the edits: the draft stays dirty and is journaled.
// A vanished post stops autosave for good.
func (e *Editor) failedLocked(op string, err error) {
	e.journalLocked()
	if errs.KindOf(err) == errs.KindNotFound {
		e.abandoned = true
		e.stopTimerLocked()
		editorLogger.Warn().Str("id", e.fields.ID.String()).Msg("Post no longer exists; autosave stopped")
	}
	e.emitLocked(Event{Kind: EventFailed, Op: op, Err: err})
}

// idempotencyKeyLocked reuses the key of a failed attempt at the same operation
// with the same payload, so a retry cannot apply twice.
func (e *Editor) idempotencyKeyLocked(op string, payload model.Content) string {
	body, _ := json.Marshal(payload)
	hash := util.FieldsHash(op, payload.ID.String(), string(body))
	if r, ok := e.retries[op]; ok && r.hash == hash {
		return r.key
	}
	key := uuid.NewString()
	e.retries[op] = retryKey{hash: hash, key: key}
	return key
}
