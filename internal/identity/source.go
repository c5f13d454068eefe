// Package identity obtains the external credential that login exchanges for a session token.
package identity

import (
	"context"
	"errors"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/errs"
)

// Credential is an external identity assertion for POST /auth/{Provider}.
type Credential struct {
	Provider string
	Value    string
}

// Source runs the interactive part of a login. Cancellation by the user is
// reported as errs.ErrAuthDeclined.
type Source interface {
	Name() string
	Credential(ctx context.Context) (Credential, error)
}

// declined turns context cancellation into a declined login.
func declined(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
		return errs.E(errs.KindAuthDeclined, op, err)
	}
	return err
}
