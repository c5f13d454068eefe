package gate

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/api"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/credential"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/errs"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/identity"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/lines"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/session"
)

type stubPrompter struct {
	answer bool
	asked  []string
}

func (p *stubPrompter) ConfirmSignIn(ctx context.Context, action string) (bool, error) {
	p.asked = append(p.asked, action)
	return p.answer, nil
}

type stubSource struct{ calls atomic.Int32 }

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Credential(ctx context.Context) (identity.Credential, error) {
	s.calls.Add(1)
	return identity.Credential{Provider: "stub", Value: "v"}, nil
}

type stubIdentity struct{}

func (stubIdentity) Exchange(ctx context.Context, provider, cred string) (*api.AuthResult, error) {
	return &api.AuthResult{User: model.User{ID: "1", DisplayName: "Reader"}, Token: "reader-token"}, nil
}

func (stubIdentity) Me(ctx context.Context, token string) (*model.User, error) {
	return &model.User{ID: "1"}, nil
}

func newManager(src identity.Source) *session.Manager {
	return session.NewManager(credential.NewMemoryStore(), stubIdentity{}, src)
}

func TestRunWithoutAuthRequirement(t *testing.T) {
	src := &stubSource{}
	prompter := &stubPrompter{}
	g := New(newManager(src), prompter)

	calls := 0
	err := g.Run(context.Background(), func(context.Context) error {
		calls++
		return nil
	}, RequireAuth(false))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, prompter.asked)
	assert.Zero(t, src.calls.Load())
}

func TestRunWithSession(t *testing.T) {
	src := &stubSource{}
	m := newManager(src)
	_, err := m.Login(context.Background())
	require.NoError(t, err)

	prompter := &stubPrompter{}
	g := New(m, prompter)

	calls := 0
	err = g.Run(context.Background(), func(ctx context.Context) error {
		calls++
		s, ok := session.SessionFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, "reader-token", s.Token)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, prompter.asked)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestRunDeclinedPromptDoesNothing(t *testing.T) {
	src := &stubSource{}
	m := newManager(src)
	prompter := &stubPrompter{answer: false}
	g := New(m, prompter)

	err := g.Run(context.Background(), func(context.Context) error {
		t.Error("action must not run")
		return nil
	}, Named("like this post"))

	assert.True(t, errors.Is(err, errs.ErrAuthDeclined))
	assert.Equal(t, []string{"like this post"}, prompter.asked)
	assert.Zero(t, src.calls.Load())
	assert.Nil(t, m.Current())
	assert.Equal(t, session.StatusUnknown, m.Status())
}

func TestRunSkipsPromptWhenDisabled(t *testing.T) {
	src := &stubSource{}
	prompter := &stubPrompter{answer: false}
	g := New(newManager(src), prompter)

	calls := 0
	err := g.Run(context.Background(), func(context.Context) error {
		calls++
		return nil
	}, Prompt(false))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, prompter.asked)
}

// A signed-out reader likes a post: the prompt is shown, sign-in completes,
// and the like is sent exactly once with the new token.
func TestLikeReplaysOnceAfterSignIn(t *testing.T) {
	var likes atomic.Int32
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/blogs/5/like" {
			likes.Add(1)
			auth.Store(r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"liked": true}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src := &stubSource{}
	m := newManager(src)
	client := api.NewClient(srv.URL+"/api", m.Client())
	prompter := &stubPrompter{answer: true}
	g := New(m, prompter)

	var liked bool
	err := g.Run(context.Background(), func(ctx context.Context) error {
		var err error
		liked, err = client.ToggleLike(ctx, "5")
		return err
	}, Named("like this post"))

	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int32(1), likes.Load())
	assert.Equal(t, "Bearer reader-token", auth.Load())
	assert.Equal(t, []string{"like this post"}, prompter.asked)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestTerminalPrompter(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "default yes", input: "\n", want: true},
		{name: "explicit yes", input: "YES\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "eof", input: "", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out strings.Builder
			p := NewTerminalPrompter(lines.NewReader(strings.NewReader(tc.input)), &out)

			got, err := p.ConfirmSignIn(context.Background(), "comment")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Contains(t, out.String(), "Sign in to comment?")
		})
	}
}

func TestTerminalPrompterCancelledLeavesInput(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	in := lines.NewReader(pr)
	var out strings.Builder
	p := NewTerminalPrompter(in, &out)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ok, err := p.ConfirmSignIn(ctx, "publish")
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	go func() { _, _ = io.WriteString(pw, ":title next\n") }()

	line, err := in.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ":title next\n", line)
}
