// Package credential persists the single bearer token that represents a signed-in session.
package credential

import (
	"errors"

	"github.com/rs/zerolog"
)

// DefaultKey is the fixed storage key for the token.
const DefaultKey = "auth_token"

var ErrClosed = errors.New("credential store closed")

// Store holds at most one opaque token. Get returns "" when nothing is stored.
type Store interface {
	Get() (string, error)
	Set(token string) error
	Clear() error
}

var storeLogger zerolog.Logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	storeLogger = l
}
