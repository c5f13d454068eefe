package editor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/errs"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward and runs the callbacks that came due, on the
// calling goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// Active counts timers that have neither fired nor been stopped.
func (c *fakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type storeCall struct {
	Method  string
	ID      model.ContentID
	Content model.Content
	Key     string
}

type fakeStore struct {
	mu     sync.Mutex
	calls  []storeCall
	items  map[model.ContentID]model.Content
	nextID int

	// block, when set, holds every write until it is closed.
	block   chan struct{}
	started chan struct{}
	errFn   func(c storeCall) error
}

func newFakeStore(items ...model.Content) *fakeStore {
	s := &fakeStore{items: make(map[model.ContentID]model.Content), nextID: 101, started: make(chan struct{}, 16)}
	for _, c := range items {
		s.items[c.ID] = c.Clone()
	}
	return s
}

func (s *fakeStore) record(c storeCall) error {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	block := s.block
	errFn := s.errFn
	s.mu.Unlock()

	select {
	case s.started <- struct{}{}:
	default:
	}
	if block != nil {
		<-block
	}
	if errFn != nil {
		return errFn(c)
	}
	return nil
}

func (s *fakeStore) Calls() []storeCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storeCall(nil), s.calls...)
}

func (s *fakeStore) Item(id model.ContentID) model.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id].Clone()
}

func (s *fakeStore) GetContent(ctx context.Context, id model.ContentID) (*model.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return nil, errs.E(errs.KindNotFound, "get content", nil)
	}
	c = c.Clone()
	return &c, nil
}

func (s *fakeStore) Create(ctx context.Context, c model.Content, key string) (*model.Content, error) {
	if err := s.record(storeCall{Method: "POST", Content: c.Clone(), Key: key}); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = model.ContentID(fmt.Sprint(s.nextID))
	s.nextID++
	s.items[c.ID] = c.Clone()
	return &c, nil
}

func (s *fakeStore) Update(ctx context.Context, id model.ContentID, c model.Content, key string) (*model.Content, error) {
	if err := s.record(storeCall{Method: "PUT", ID: id, Content: c.Clone(), Key: key}); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return nil, errs.E(errs.KindNotFound, "update content", nil)
	}
	c.ID = id
	s.items[id] = c.Clone()
	return &c, nil
}

func (s *fakeStore) Delete(ctx context.Context, id model.ContentID) error {
	if err := s.record(storeCall{Method: "DELETE", ID: id}); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return errs.E(errs.KindNotFound, "delete content", nil)
	}
	delete(s.items, id)
	return nil
}
