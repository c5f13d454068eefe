// Package gate runs user operations that may need a signed-in session first.
package gate

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/errs"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/session"
)

var gateLogger zerolog.Logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	gateLogger = l
}

// Sessions is the part of the session manager the gate needs.
type Sessions interface {
	Current() *session.Session
	RequireAuth(ctx context.Context, action session.Action) <-chan error
}

// Prompter asks whether to sign in so that the named action can go ahead.
type Prompter interface {
	ConfirmSignIn(ctx context.Context, action string) (bool, error)
}

type Gate struct {
	sessions Sessions
	prompter Prompter
}

func New(sessions Sessions, prompter Prompter) *Gate {
	return &Gate{sessions: sessions, prompter: prompter}
}

type runOptions struct {
	name        string
	requireAuth bool
	prompt      bool
}

type Option func(*runOptions)

// RequireAuth(false) runs the action as is, session or not.
func RequireAuth(required bool) Option {
	return func(o *runOptions) { o.requireAuth = required }
}

// Prompt(false) goes straight to sign-in without asking first.
func Prompt(enabled bool) Option {
	return func(o *runOptions) { o.prompt = enabled }
}

// Named labels the action in the sign-in prompt.
func Named(name string) Option {
	return func(o *runOptions) { o.name = name }
}

// Run invokes action at most once. Without a session it asks to sign in; a
// declined prompt returns errs.ErrAuthDeclined having done nothing, an
// accepted one runs action after the login completes.
func (g *Gate) Run(ctx context.Context, action session.Action, opts ...Option) error {
	o := runOptions{name: "continue", requireAuth: true, prompt: true}
	for _, opt := range opts {
		opt(&o)
	}

	if !o.requireAuth {
		return action(ctx)
	}

	if s := g.sessions.Current(); s != nil {
		return action(session.ContextWithSession(ctx, s))
	}

	if o.prompt && g.prompter != nil {
		ok, err := g.prompter.ConfirmSignIn(ctx, o.name)
		if err != nil {
			return errs.E(errs.KindAuthDeclined, o.name, err)
		}
		if !ok {
			gateLogger.Debug().Str("action", o.name).Msg("Sign-in declined at prompt")
			return errs.ErrAuthDeclined
		}
	}

	select {
	case err := <-g.sessions.RequireAuth(ctx, action):
		return err
	case <-ctx.Done():
		return errs.E(errs.KindAuthDeclined, o.name, ctx.Err())
	}
}
