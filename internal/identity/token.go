package identity

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/config"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/errs"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/lines"
)

// SecretReader asks for a value without echoing it where possible.
type SecretReader func(ctx context.Context, prompt string) (string, error)

// TokenSource asks the user to paste a credential issued elsewhere (for example
// an ID token copied from the web sign-in). An empty answer cancels.
type TokenSource struct {
	read SecretReader
}

func NewTokenSource(read SecretReader) *TokenSource {
	return &TokenSource{read: read}
}

func (s *TokenSource) Name() string { return config.ProviderToken }

func (s *TokenSource) Credential(ctx context.Context) (Credential, error) {
	type result struct {
		value string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := s.read(ctx, "Paste credential (empty to cancel): ")
		done <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		return Credential{}, errs.E(errs.KindAuthDeclined, "token prompt", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return Credential{}, fmt.Errorf("failed to read credential: %w", r.err)
		}
		v := strings.TrimSpace(r.value)
		if v == "" {
			return Credential{}, errs.ErrAuthDeclined
		}
		return Credential{Provider: s.Name(), Value: v}, nil
	}
}

// TerminalSecretReader reads without echo when tty is a terminal, and a line
// from in otherwise.
func TerminalSecretReader(tty *os.File, in *lines.Reader, out io.Writer) SecretReader {
	return func(ctx context.Context, prompt string) (string, error) {
		fmt.Fprint(out, prompt)

		if tty != nil && term.IsTerminal(int(tty.Fd())) {
			b, err := term.ReadPassword(int(tty.Fd()))
			fmt.Fprintln(out)
			return string(b), err
		}

		line, err := in.ReadLine(ctx)
		if err == io.EOF && line != "" {
			err = nil
		}
		return line, err
	}
}
