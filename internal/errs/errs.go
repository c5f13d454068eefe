// Package errs defines the failure categories shared by the session and editor layers.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindAuthExpired
	KindAuthDeclined
	KindValidation
	KindPersistFailure
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindAuthExpired:
		return "auth expired"
	case KindAuthDeclined:
		return "sign-in cancelled"
	case KindValidation:
		return "validation"
	case KindPersistFailure:
		return "save failed"
	case KindNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

var (
	ErrAuthExpired  = &Error{Kind: KindAuthExpired}
	ErrAuthDeclined = &Error{Kind: KindAuthDeclined}
	ErrNotFound     = &Error{Kind: KindNotFound}
)

// Error carries a Kind plus the operation and field it concerns.
type Error struct {
	Kind  Kind
	Op    string
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotFound) works on wrapped values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Field == "" && t.Msg == "" && t.Err == nil
}

func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: fmt.Sprintf(format, args...)}
}

func Persist(op string, err error) *Error {
	return &Error{Kind: KindPersistFailure, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// Notice is the one-line message shown to a user after a failed manual action.
func Notice(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if !errors.As(err, &e) {
		return "Something went wrong: " + err.Error()
	}

	switch e.Kind {
	case KindAuthExpired:
		return "Your session has expired. Sign in again and retry."
	case KindAuthDeclined:
		return "Sign-in was cancelled. Nothing was changed."
	case KindValidation:
		if e.Field != "" {
			return fmt.Sprintf("Cannot save: %s %s.", e.Field, e.Msg)
		}
		return fmt.Sprintf("Cannot save: %s.", e.Msg)
	case KindPersistFailure:
		return "Save failed; your edits are kept locally. Retry when the connection is back. (" + rootCause(e).Error() + ")"
	case KindNotFound:
		return "This post no longer exists on the server. Autosave has been stopped."
	default:
		return err.Error()
	}
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
