// Package session owns the signed-in identity of the process and the bearer token behind it.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/api"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/config"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/credential"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/errs"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/identity"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
)

var sessionLogger zerolog.Logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	sessionLogger = l
}

type Status int

const (
	// StatusUnknown means a stored token exists but has not been verified yet.
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Session is replaced wholesale, never modified.
type Session struct {
	User  model.User
	Token string
}

// State is what subscribers observe.
type State struct {
	Status  Status
	Session *Session
}

// Identity is the server side of sign-in.
type Identity interface {
	Exchange(ctx context.Context, provider, credential string) (*api.AuthResult, error)
	Me(ctx context.Context, token string) (*model.User, error)
}

// Action is a deferred user operation.
type Action func(ctx context.Context) error

type pendingAction struct {
	ctx    context.Context
	action Action
	done   chan error
}

type Manager struct {
	store    credential.Store
	identity Identity
	source   identity.Source

	verifyTimeout time.Duration
	httpTimeout   time.Duration
	base          http.RoundTripper
	now           func() time.Time

	mu      sync.Mutex
	session *Session
	status  Status
	gen     uint64

	logins       singleflight.Group
	loginRunning bool
	pending      []pendingAction

	subs   map[int]func(State)
	nextID int

	ready     chan struct{}
	readyOnce sync.Once
}

type Option func(*Manager)

func WithVerifyTimeout(d time.Duration) Option {
	return func(m *Manager) { m.verifyTimeout = d }
}

// WithHTTPTimeout bounds every request made through Client().
func WithHTTPTimeout(d time.Duration) Option {
	return func(m *Manager) { m.httpTimeout = d }
}

func WithTransport(rt http.RoundTripper) Option {
	return func(m *Manager) { m.base = rt }
}

func WithNow(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store credential.Store, id Identity, src identity.Source, opts ...Option) *Manager {
	m := &Manager{
		store:         store,
		identity:      id,
		source:        src,
		verifyTimeout: 10 * time.Second,
		httpTimeout:   30 * time.Second,
		base:          http.DefaultTransport,
		now:           time.Now,
		status:        StatusUnknown,
		subs:          make(map[int]func(State)),
		ready:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the live session, nil when signed out or not yet verified.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{Status: m.status, Session: m.session}
}

// Ready is closed once the first verification has resolved either way.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Subscribe registers fn for every state change and returns a func that removes it.
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// replace swaps the session under m.mu and returns the subscribers to notify.
func (m *Manager) replace(s *Session, status Status) []func(State) {
	changed := m.session != s || m.status != status
	m.session = s
	m.status = status
	m.gen++
	if !changed {
		return nil
	}
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(State), st State) {
	for _, fn := range fns {
		fn(st)
	}
}

func (m *Manager) markReady() {
	m.readyOnce.Do(func() { close(m.ready) })
}

// Start verifies the stored token in the background.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		if err := m.Verify(ctx); err != nil {
			sessionLogger.Info().Err(err).Msg("Stored session not restored")
		}
	}()
}

// Verify checks the stored token against the server. Anything short of a
// confirmed user leaves the manager unauthenticated with the store cleared.
func (m *Manager) Verify(ctx context.Context) error {
	defer m.markReady()

	token, err := m.store.Get()
	if err != nil {
		m.failClosed("")
		return fmt.Errorf(config.ErrVerifySessionFmt, err)
	}
	if token == "" {
		m.failClosed("")
		return nil
	}

	if credential.Expired(token, m.now()) {
		sessionLogger.Debug().Msg("Stored token expired locally")
		m.failClosed(token)
		return errs.E(errs.KindAuthExpired, "verify", errors.New("token expired"))
	}

	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	vctx, cancel := context.WithTimeout(ctx, m.verifyTimeout)
	defer cancel()

	user, err := m.identity.Me(vctx, token)
	if err != nil {
		m.mu.Lock()
		stale := m.gen != gen
		m.mu.Unlock()
		if stale {
			return nil
		}

		m.failClosed(token)
		if api.StatusCode(err) == http.StatusUnauthorized {
			return errs.E(errs.KindAuthExpired, "verify", err)
		}
		return fmt.Errorf(config.ErrVerifySessionFmt, err)
	}

	m.mu.Lock()
	if m.gen != gen {
		// A login or logout happened meanwhile; its outcome wins.
		m.mu.Unlock()
		return nil
	}
	s := &Session{User: *user, Token: token}
	fns := m.replace(s, StatusAuthenticated)
	m.mu.Unlock()

	sessionLogger.Info().Str("user", user.Label()).Msg("Session verified")
	notify(fns, State{Status: StatusAuthenticated, Session: s})
	return nil
}

// failClosed drops the session; a non-empty token is also removed from the store
// unless the store meanwhile holds a different one.
func (m *Manager) failClosed(token string) {
	m.mu.Lock()
	if token != "" {
		if stored, err := m.store.Get(); err == nil && stored == token {
			if err := m.store.Clear(); err != nil {
				sessionLogger.Error().Err(err).Msg("Failed to clear credential store")
			}
		}
	}
	fns := m.replace(nil, StatusUnauthenticated)
	m.mu.Unlock()

	notify(fns, State{Status: StatusUnauthenticated})
}

// Login runs the interactive handshake. Concurrent calls share one handshake.
func (m *Manager) Login(ctx context.Context) (*Session, error) {
	v, err, shared := m.logins.Do("login", func() (interface{}, error) {
		s, err := m.login(ctx)
		if err != nil {
			m.dropPending(err)
		}
		return s, err
	})
	if shared {
		sessionLogger.Debug().Msg("Joined in-flight login")
	}
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (m *Manager) login(ctx context.Context) (*Session, error) {
	if m.source == nil {
		return nil, fmt.Errorf(config.ErrLoginFmt, errors.New("no identity source configured"))
	}

	cred, err := m.source.Credential(ctx)
	if err != nil {
		if errs.KindOf(err) == errs.KindAuthDeclined {
			sessionLogger.Info().Str("provider", m.source.Name()).Msg("Sign-in cancelled")
			return nil, err
		}
		return nil, fmt.Errorf(config.ErrLoginFmt, err)
	}

	res, err := m.identity.Exchange(ctx, cred.Provider, cred.Value)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errs.E(errs.KindAuthDeclined, "login", ctx.Err())
		}
		return nil, fmt.Errorf(config.ErrLoginFmt, err)
	}

	if err := m.store.Set(res.Token); err != nil {
		return nil, fmt.Errorf(config.ErrLoginFmt, err)
	}

	s := &Session{User: res.User, Token: res.Token}

	m.mu.Lock()
	fns := m.replace(s, StatusAuthenticated)
	m.mu.Unlock()

	m.markReady()
	sessionLogger.Info().Str("user", s.User.Label()).Str("provider", cred.Provider).Msg("Signed in")
	notify(fns, State{Status: StatusAuthenticated, Session: s})
	return s, nil
}

// Logout clears the session and the store. Safe to call when signed out.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	err := m.store.Clear()
	fns := m.replace(nil, StatusUnauthenticated)
	m.mu.Unlock()

	if len(fns) > 0 {
		zerolog.Ctx(ctx).Info().Msg("Signed out")
	}
	notify(fns, State{Status: StatusUnauthenticated})
	return err
}

// expire ends the session if token is still the live one.
func (m *Manager) expire(token string) {
	m.mu.Lock()
	if m.session == nil || m.session.Token != token {
		m.mu.Unlock()
		return
	}
	if err := m.store.Clear(); err != nil {
		sessionLogger.Error().Err(err).Msg("Failed to clear credential store")
	}
	fns := m.replace(nil, StatusUnauthenticated)
	m.mu.Unlock()

	sessionLogger.Warn().Msg("Server rejected the session token; signed out")
	notify(fns, State{Status: StatusUnauthenticated})
}

// RequireAuth runs action now when signed in. Otherwise it queues action and
// starts a login unless one is already pending; queued actions run once each,
// in order, after that login succeeds, and are dropped if it fails. An action
// queued after a login has failed waits for a new one. The channel yields the
// action's result, or the login error, exactly once.
func (m *Manager) RequireAuth(ctx context.Context, action Action) <-chan error {
	done := make(chan error, 1)

	m.mu.Lock()
	if s := m.session; s != nil {
		m.mu.Unlock()
		done <- action(ContextWithSession(ctx, s))
		return done
	}

	m.pending = append(m.pending, pendingAction{ctx: ctx, action: action, done: done})
	start := !m.loginRunning
	m.loginRunning = true
	m.mu.Unlock()

	if start {
		go m.loginAndFlush(ctx)
	}
	return done
}

// dropPending fails the actions queued so far. It takes the queue under the
// lock RequireAuth appends under, so later actions stay queued.
func (m *Manager) dropPending(err error) {
	m.mu.Lock()
	queue := m.pending
	m.pending = nil
	m.mu.Unlock()

	if len(queue) > 0 {
		sessionLogger.Debug().Err(err).Int("dropped", len(queue)).Msg("Discarding deferred actions")
	}
	for _, p := range queue {
		p.done <- err
	}
}

func (m *Manager) loginAndFlush(ctx context.Context) {
	for {
		s, err := m.Login(ctx)

		m.mu.Lock()
		queue := m.pending
		m.pending = nil
		if err != nil && len(queue) > 0 {
			// Queued after the failure: sign in again for them.
			m.pending = queue
			ctx = queue[0].ctx
			m.mu.Unlock()
			continue
		}
		m.loginRunning = false
		m.mu.Unlock()

		for _, p := range queue {
			if p.ctx.Err() != nil {
				p.done <- errs.E(errs.KindAuthDeclined, "deferred action", p.ctx.Err())
				continue
			}
			p.done <- p.action(ContextWithSession(p.ctx, s))
		}
		return
	}
}

// Client returns an HTTP client that authenticates as the current session.
func (m *Manager) Client() *http.Client {
	return &http.Client{
		Transport: &bearerTransport{m: m, base: m.base},
		Timeout:   m.httpTimeout,
	}
}
