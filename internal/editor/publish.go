package editor

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/errs"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
)

// Limits enforced by the content API.
const (
	MaxTitleLen    = 500
	MaxExcerptLen  = 1000
	MaxCategoryLen = 100
)

const (
	opSaveDraft = "save draft"
	opPublish   = "publish"
	opSchedule  = "schedule"
	opUnpublish = "unpublish"
	opArchive   = "archive"
	opDelete    = "delete"
)

// prepareFunc turns a copy of the current fields into the payload of an
// operation, or rejects it. It runs under e.mu.
type prepareFunc func(p *model.Content, now time.Time) error

// SaveDraft persists the fields as a draft. Timestamps are sent as they are.
func (e *Editor) SaveDraft(ctx context.Context) error {
	return e.commit(ctx, opSaveDraft, func(p *model.Content, now time.Time) error {
		if err := e.transitionLocked(model.StateDraft); err != nil {
			return err
		}
		if err := checkLimits(p); err != nil {
			return err
		}
		p.State = model.StateDraft
		return nil
	})
}

// PublishNow makes the post live. Entering published stamps publishedAt;
// a post that is already live keeps its stamp.
func (e *Editor) PublishNow(ctx context.Context) error {
	return e.commit(ctx, opPublish, func(p *model.Content, now time.Time) error {
		if err := e.transitionLocked(model.StatePublished); err != nil {
			return err
		}
		if err := checkRequired(p); err != nil {
			return err
		}
		if err := checkLimits(p); err != nil {
			return err
		}
		if e.persisted.State != model.StatePublished || p.PublishedAt == nil {
			stamp := now
			p.PublishedAt = &stamp
		}
		p.State = model.StatePublished
		p.PublishAt = nil
		return nil
	})
}

// Schedule hands the post to the server's scheduler for publishAt, which must
// be strictly in the future.
func (e *Editor) Schedule(ctx context.Context, publishAt time.Time) error {
	return e.commit(ctx, opSchedule, func(p *model.Content, now time.Time) error {
		if !publishAt.After(now) {
			return errs.Validation("publishAt", "must be in the future")
		}
		if err := e.transitionLocked(model.StateScheduled); err != nil {
			return err
		}
		if err := checkRequired(p); err != nil {
			return err
		}
		if err := checkLimits(p); err != nil {
			return err
		}
		at := publishAt
		p.State = model.StateScheduled
		p.PublishAt = &at
		p.PublishedAt = nil
		return nil
	})
}

// Unpublish takes a live post back to draft and forgets its publish stamp.
func (e *Editor) Unpublish(ctx context.Context) error {
	return e.commit(ctx, opUnpublish, func(p *model.Content, now time.Time) error {
		if e.persisted.State != model.StatePublished {
			return errs.Validation("lifecycleState", "only published posts can be unpublished")
		}
		if err := checkLimits(p); err != nil {
			return err
		}
		p.State = model.StateDraft
		p.PublishedAt = nil
		return nil
	})
}

// Archive retires the post. Archived posts cannot be edited further.
func (e *Editor) Archive(ctx context.Context) error {
	return e.commit(ctx, opArchive, func(p *model.Content, now time.Time) error {
		if p.ID == "" {
			return errs.Validation("id", "a post must be saved before it can be archived")
		}
		if err := e.transitionLocked(model.StateArchived); err != nil {
			return err
		}
		p.State = model.StateArchived
		return nil
	})
}

func (e *Editor) transitionLocked(to model.LifecycleState) error {
	from := e.persisted.State
	if from.Terminal() {
		return errs.Validation("lifecycleState", "archived posts cannot be changed")
	}
	if !from.CanTransition(to) {
		return errs.Validation("lifecycleState", "cannot go from %s to %s", from, to)
	}
	return nil
}

func checkRequired(p *model.Content) error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return errs.Validation("title", "is required")
	case strings.TrimSpace(p.Excerpt) == "":
		return errs.Validation("excerpt", "is required")
	case strings.TrimSpace(p.Body) == "":
		return errs.Validation("content", "is required")
	}
	return nil
}

func checkLimits(p *model.Content) error {
	switch {
	case utf8.RuneCountInString(p.Title) > MaxTitleLen:
		return errs.Validation("title", "must be at most %d characters", MaxTitleLen)
	case utf8.RuneCountInString(p.Excerpt) > MaxExcerptLen:
		return errs.Validation("excerpt", "must be at most %d characters", MaxExcerptLen)
	case utf8.RuneCountInString(p.Category) > MaxCategoryLen:
		return errs.Validation("category", "must be at most %d characters", MaxCategoryLen)
	}
	return nil
}

// commit runs one authoritative persist: it validates, cancels the debounce
// timer, waits for an autosave in flight, then saves. Validation failures make
// no call and change nothing.
func (e *Editor) commit(ctx context.Context, op string, prepare prepareFunc) error {
	e.mu.Lock()
	if err := e.usableLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	dry := e.fields.Clone()
	if err := prepare(&dry, e.clock.Now()); err != nil {
		e.mu.Unlock()
		return err
	}
	e.beginManualLocked()
	e.mu.Unlock()

	if err := e.acquire(ctx); err != nil {
		e.mu.Lock()
		e.endManualLocked(false)
		e.mu.Unlock()
		return errs.Persist(op, err)
	}
	defer e.release()

	e.mu.Lock()
	payload := e.fields.Clone()
	if err := prepare(&payload, e.clock.Now()); err != nil {
		e.endManualLocked(false)
		e.mu.Unlock()
		return err
	}
	key := e.idempotencyKeyLocked(op, payload)
	rev := e.rev
	e.mu.Unlock()

	pctx, cancel := context.WithTimeout(ctx, e.persistTimeout)
	resp, err := e.persist(pctx, payload, key)
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		editorLogger.Info().Err(err).Str("op", op).Str("id", payload.ID.String()).Msg("Save failed")
		e.failedLocked(op, err)
		// Edits typed while the request was out are new and still autosave.
		e.endManualLocked(e.rev == rev)
		return err
	}

	e.reconcileLocked(payload, resp)
	delete(e.retries, op)
	editorLogger.Info().Str("op", op).Str("id", e.fields.ID.String()).Str("state", string(e.fields.State)).Msg("Saved")
	e.emitLocked(Event{Kind: EventSaved, Op: op})
	e.endManualLocked(false)
	return nil
}

// Delete removes the post from the server. A never-saved draft is just discarded.
func (e *Editor) Delete(ctx context.Context) error {
	e.mu.Lock()
	if err := e.usableLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	id := e.fields.ID
	if id == "" {
		e.deletedLocked()
		e.mu.Unlock()
		return nil
	}
	e.beginManualLocked()
	e.mu.Unlock()

	if err := e.acquire(ctx); err != nil {
		e.mu.Lock()
		e.endManualLocked(false)
		e.mu.Unlock()
		return errs.Persist(opDelete, err)
	}
	defer e.release()

	pctx, cancel := context.WithTimeout(ctx, e.persistTimeout)
	err := e.store.Delete(pctx, id)
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil && errs.KindOf(err) != errs.KindNotFound {
		e.emitLocked(Event{Kind: EventFailed, Op: opDelete, Err: err})
		e.endManualLocked(false)
		return err
	}

	e.deletedLocked()
	e.endManualLocked(false)
	editorLogger.Info().Str("id", id.String()).Msg("Deleted")
	return nil
}

func (e *Editor) deletedLocked() {
	e.deleted = true
	e.stopTimerLocked()
	e.dropJournalLocked(e.journalKeyLocked())
	e.emitLocked(Event{Kind: EventDeleted, Op: opDelete})
}

func (e *Editor) usableLocked() error {
	switch {
	case e.closed:
		return ErrClosed
	case e.deleted:
		return errs.E(errs.KindNotFound, "edit", nil)
	}
	return nil
}

// beginManualLocked stops the debounce timer and marks a manual operation as
// waiting, which keeps autosave from starting.
func (e *Editor) beginManualLocked() {
	e.manualPending++
	e.epoch++
	e.stopTimerLocked()
	if e.state == PendingDebounce {
		e.setStateLocked(Idle)
	}
}

// endManualLocked hands the state machine back to autosave. After a failed
// persist nothing is rescheduled: the next edit or manual save retries.
func (e *Editor) endManualLocked(failed bool) {
	e.manualPending--
	if e.manualPending > 0 {
		return
	}
	if e.inFlight {
		e.setStateLocked(Saving)
		return
	}
	if failed {
		e.stopTimerLocked()
		e.setStateLocked(SaveFailed)
		return
	}
	e.setStateLocked(Idle)
	e.scheduleLocked()
}

func (e *Editor) acquire(ctx context.Context) error {
	select {
	case e.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Editor) release() {
	<-e.slot
}
