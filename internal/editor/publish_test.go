package editor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/errs"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
)

func TestPublishNowCancelsPendingAutosave(t *testing.T) {
	clock := newFakeClock()
	store := newFakeStore(post42())
	e := Load(store, post42(), testOptions(clock))

	e.SetBody("edited just before publishing")
	require.Equal(t, PendingDebounce, e.State())

	require.NoError(t, e.PublishNow(context.Background()))

	calls := store.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "PUT", calls[0].Method)
	assert.Equal(t, model.ContentID("42"), calls[0].ID)
	assert.Equal(t, model.StatePublished, calls[0].Content.State)
	assert.Equal(t, "edited just before publishing", calls[0].Content.Body)
	require.NotNil(t, calls[0].Content.PublishedAt)
	assert.Equal(t, clock.Now(), *calls[0].Content.PublishedAt)

	clock.Advance(5 * debounce)
	assert.Len(t, store.Calls(), 1)

	d := e.Draft()
	assert.Equal(t, Idle, d.State)
	assert.False(t, d.Dirty)
	assert.Equal(t, model.StatePublished, d.Persisted)
	assert.Equal(t, model.StatePublished, d.Fields.State)
}

func TestPublishDuringAutosaveInFlight(t *testing.T) {
	clock := newFakeClock()
	store := newFakeStore(post42())
	store.block = make(chan struct{})
	e := Load(store, post42(), testOptions(clock))

	e.SetBody("autosaved body")
	fired := make(chan struct{})
	go func() {
		clock.Advance(debounce)
		close(fired)
	}()
	<-store.started

	published := make(chan error, 1)
	go func() {
		published <- e.PublishNow(context.Background())
	}()

	// Publishing waits for the save in flight.
	assert.Never(t, func() bool { return len(store.Calls()) > 1 }, 50*time.Millisecond, 5*time.Millisecond)

	close(store.block)
	require.NoError(t, <-published)
	<-fired

	calls := store.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, model.StateDraft, calls[0].Content.State)
	assert.Equal(t, model.StatePublished, calls[1].Content.State)
	assert.Equal(t, model.ContentID("42"), calls[1].ID)

	assert.Equal(t, model.StatePublished, store.Item("42").State)
	d := e.Draft()
	assert.Equal(t, model.StatePublished, d.Persisted)
	assert.Equal(t, Idle, d.State)
	assert.False(t, d.Dirty)
}

func TestNewDraftPublishCreates(t *testing.T) {
	clock := newFakeClock()
	store := newFakeStore()
	opts := testOptions(clock)
	opts.Autosave = false
	e := New(store, opts)

	e.SetTitle("Hello")
	e.SetExcerpt("A first post")
	e.SetBody("Body text")
	require.NoError(t, e.PublishNow(context.Background()))

	calls := store.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "POST", calls[0].Method)
	assert.Equal(t, model.StatePublished, calls[0].Content.State)
	assert.Equal(t, model.ContentID("101"), e.Draft().ID)
}

func TestPublishRequiresFields(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(e *Editor)
		field string
	}{
		{name: "title", edit: func(e *Editor) { e.SetTitle("  ") }, field: "title"},
		{name: "excerpt", edit: func(e *Editor) { e.SetExcerpt("") }, field: "excerpt"},
		{name: "body", edit: func(e *Editor) { e.SetBody("") }, field: "content"},
		{name: "title too long", edit: func(e *Editor) { e.SetTitle(strings.Repeat("é", MaxTitleLen+1)) }, field: "title"},
		{name: "excerpt too long", edit: func(e *Editor) { e.SetExcerpt(strings.Repeat("x", MaxExcerptLen+1)) }, field: "excerpt"},
		{name: "category too long", edit: func(e *Editor) { e.SetCategory(strings.Repeat("x", MaxCategoryLen+1)) }, field: "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			store := newFakeStore(post42())
			e := Load(store, post42(), testOptions(clock))
			tt.edit(e)

			err := e.PublishNow(context.Background())
			require.True(t, errs.IsValidation(err))
			var ve *errs.Error
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)

			assert.Empty(t, store.Calls())
			assert.Equal(t, model.StateDraft, e.Draft().Persisted)
			assert.Equal(t, PendingDebounce, e.State())
		})
	}
}

func TestLongTitleAtLimitIsAccepted(t *testing.T) {
	store := newFakeStore(post42())
	e := Load(store, post42(), testOptions(newFakeClock()))

	e.SetTitle(strings.Repeat("é", MaxTitleLen))
	require.NoError(t, e.SaveDraft(context.Background()))
	assert.Len(t, store.Calls(), 1)
}

func TestScheduleInPastIsRejected(t *testing.T) {
	clock := newFakeClock()
	store := newFakeStore(post42())
	e := Load(store, post42(), testOptions(clock))
	e.SetBody("pending edit")

	for _, at := range []time.Time{clock.Now(), clock.Now().Add(-time.Hour)} {
		err := e.Schedule(context.Background(), at)
		require.True(t, errs.IsValidation(err), "publishAt %s", at)
	}

	assert.Empty(t, store.Calls())
	d := e.Draft()
	assert.Equal(t, model.StateDraft, d.Persisted)
	assert.True(t, d.Dirty)
	assert.Equal(t, PendingDebounce, d.State)
}

func TestScheduleThenPublish(t *testing.T) {
	clock := newFakeClock()
	store := newFakeStore(post42())
	e := Load(store, post42(), testOptions(clock))
	at := clock.Now().Add(24 * time.Hour)

	require.NoError(t, e.Schedule(context.Background(), at))

	calls := store.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, model.StateScheduled, calls[0].Content.State)
	require.NotNil(t, calls[0].Content.PublishAt)
	assert.Equal(t, at, *calls[0].Content.PublishAt)
	assert.Nil(t, calls[0].Content.PublishedAt)

	clock.Advance(time.Hour)
	require.NoError(t, e.PublishNow(context.Background()))

	calls = store.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, model.StatePublished, calls[1].Content.State)
	assert.Nil(t, calls[1].Content.PublishAt)
	require.NotNil(t, calls[1].Content.PublishedAt)
	assert.Equal(t, clock.Now(), *calls[1].Content.PublishedAt)
}

func TestRepublishKeepsStamp(t *testing.T) {
	stamp := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	c := post42()
	c.State = model.StatePublished
	c.PublishedAt = &stamp

	clock := newFakeClock()
	store := newFakeStore(c)
	e := Load(store, c, testOptions(clock))

	e.SetTitle("Retitled")
	require.NoError(t, e.PublishNow(context.Background()))

	calls := store.Calls()
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].Content.PublishedAt)
	assert.Equal(t, stamp, *calls[0].Content.PublishedAt)
}

func TestUnpublish(t *testing.T) {
	stamp := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	c := post42()
	c.State = model.StatePublished
	c.PublishedAt = &stamp

	clock := newFakeClock()
	store := newFakeStore(c)
	e := Load(store, c, testOptions(clock))

	require.NoError(t, e.Unpublish(context.Background()))
	calls := store.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, model.StateDraft, calls[0].Content.State)
	assert.Nil(t, calls[0].Content.PublishedAt)

	err := e.Unpublish(context.Background())
	assert.True(t, errs.IsValidation(err))
	assert.Len(t, store.Calls(), 1)

	clock.Advance(time.Hour)
	require.NoError(t, e.PublishNow(context.Background()))
	d := e.Draft()
	require.NotNil(t, d.Fields.PublishedAt)
	assert.Equal(t, clock.Now(), *d.Fields.PublishedAt)
}

func TestSaveDraftLeavesTimestamps(t *testing.T) {
	at := time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC)
	c := post42()
	c.State = model.StateScheduled
	c.PublishAt = &at

	store := newFakeStore(c)
	e := Load(store, c, testOptions(newFakeClock()))

	require.NoError(t, e.SaveDraft(context.Background()))

	calls := store.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, model.StateDraft, calls[0].Content.State)
	require.NotNil(t, calls[0].Content.PublishAt)
	assert.Equal(t, at, *calls[0].Content.PublishAt)
}

func TestArchiveIsTerminal(t *testing.T) {
	clock := newFakeClock()
	store := newFakeStore(post42())
	e := Load(store, post42(), testOptions(clock))

	require.NoError(t, e.Archive(context.Background()))
	calls := store.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, model.StateArchived, calls[0].Content.State)

	e.SetBody("edits after archiving")
	assert.Equal(t, Idle, e.State())
	clock.Advance(5 * debounce)
	assert.Len(t, store.Calls(), 1)

	assert.True(t, errs.IsValidation(e.PublishNow(context.Background())))
	assert.True(t, errs.IsValidation(e.SaveDraft(context.Background())))
	assert.True(t, errs.IsValidation(e.Schedule(context.Background(), clock.Now().Add(time.Hour))))
	assert.Len(t, store.Calls(), 1)
}

func TestArchiveNeedsSavedPost(t *testing.T) {
	store := newFakeStore()
	e := New(store, testOptions(newFakeClock()))

	assert.True(t, errs.IsValidation(e.Archive(context.Background())))
	assert.Empty(t, store.Calls())
}

func TestManualSaveFailure(t *testing.T) {
	clock := newFakeClock()
	store := newFakeStore(post42())
	store.errFn = func(storeCall) error { return errs.Persist("update content", errors.New("connection reset")) }
	opts := testOptions(clock)
	journal := opts.Journal.(*MemoryJournal)
	e := Load(store, post42(), opts)

	e.SetBody("will not make it")
	err := e.PublishNow(context.Background())
	assert.Equal(t, errs.KindPersistFailure, errs.KindOf(err))

	d := e.Draft()
	assert.True(t, d.Dirty)
	assert.Equal(t, model.StateDraft, d.Persisted)
	assert.Nil(t, d.Fields.PublishedAt)

	entry, err := journal.Load("content/42")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "will not make it", entry.Content.Body)

	// No retry until the next edit.
	assert.Equal(t, SaveFailed, d.State)
	store.errFn = nil
	clock.Advance(5 * debounce)
	assert.Len(t, store.Calls(), 1)
	assert.Zero(t, clock.Active())

	e.SetTitle("Edited again")
	assert.Equal(t, PendingDebounce, e.State())
	clock.Advance(debounce)
	calls := store.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "will not make it", calls[1].Content.Body)
	assert.Equal(t, model.StateDraft, calls[1].Content.State)
	assert.Equal(t, Idle, e.State())
}

func TestFailedPublishOfNewDraftIsNotAutosaved(t *testing.T) {
	clock := newFakeClock()
	store := newFakeStore()
	store.errFn = func(storeCall) error { return errs.Persist("create content", errors.New("connection refused")) }
	e := New(store, testOptions(clock))

	e.SetTitle("Title")
	e.SetExcerpt("Excerpt")
	e.SetBody("Body")
	require.Error(t, e.PublishNow(context.Background()))
	store.errFn = nil

	clock.Advance(5 * debounce)
	calls := store.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, model.StatePublished, calls[0].Content.State)
	assert.Equal(t, SaveFailed, e.State())
	assert.Equal(t, model.ContentID(""), e.Draft().ID)
}

func TestRetryReusesIdempotencyKey(t *testing.T) {
	clock := newFakeClock()
	store := newFakeStore(post42())
	store.errFn = func(storeCall) error { return errs.Persist("update content", errors.New("timeout")) }
	opts := testOptions(clock)
	opts.Autosave = false
	e := Load(store, post42(), opts)

	require.Error(t, e.PublishNow(context.Background()))
	store.errFn = nil
	require.NoError(t, e.PublishNow(context.Background()))

	e.SetTitle("A later change")
	require.NoError(t, e.SaveDraft(context.Background()))

	calls := store.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, calls[0].Key, calls[1].Key)
	assert.NotEqual(t, calls[1].Key, calls[2].Key)
}

func TestDelete(t *testing.T) {
	clock := newFakeClock()
	store := newFakeStore(post42())
	opts := testOptions(clock)
	journal := opts.Journal.(*MemoryJournal)
	e := Load(store, post42(), opts)
	sub := e.Subscribe(16)

	e.SetBody("about to go")
	require.NoError(t, journal.Save("content/42", e.Draft().Fields))
	require.NoError(t, e.Delete(context.Background()))

	calls := store.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "DELETE", calls[0].Method)
	assert.True(t, e.Draft().Deleted)

	entry, err := journal.Load("content/42")
	require.NoError(t, err)
	assert.Nil(t, entry)

	var deleted bool
	for len(sub.Msg) > 0 {
		if ev := <-sub.Msg; ev.Kind == EventDeleted {
			deleted = true
		}
	}
	assert.True(t, deleted)

	e.SetBody("ignored")
	clock.Advance(5 * debounce)
	assert.Len(t, store.Calls(), 1)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(e.SaveDraft(context.Background())))
}

func TestDeleteMissingPostSucceeds(t *testing.T) {
	store := newFakeStore()
	e := Load(store, post42(), testOptions(newFakeClock()))

	require.NoError(t, e.Delete(context.Background()))
	assert.True(t, e.Draft().Deleted)
}

func TestDeleteUnsavedDraft(t *testing.T) {
	store := newFakeStore()
	e := New(store, testOptions(newFakeClock()))
	e.SetTitle("never saved")

	require.NoError(t, e.Delete(context.Background()))
	assert.Empty(t, store.Calls())
	assert.True(t, e.Draft().Deleted)
}

func TestManualOpRespectsContext(t *testing.T) {
	clock := newFakeClock()
	store := newFakeStore(post42())
	store.block = make(chan struct{})
	defer close(store.block)
	e := Load(store, post42(), testOptions(clock))

	e.SetBody("autosave holds the slot")
	go clock.Advance(debounce)
	<-store.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := e.SaveDraft(ctx)
	assert.Equal(t, errs.KindPersistFailure, errs.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Saving, e.State())
}
