package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindUnknown},
		{name: "plain error", err: errors.New("boom"), want: KindUnknown},
		{name: "sentinel", err: ErrAuthExpired, want: KindAuthExpired},
		{name: "wrapped sentinel", err: fmt.Errorf("verify: %w", ErrAuthDeclined), want: KindAuthDeclined},
		{name: "validation", err: Validation("title", "is required"), want: KindValidation},
		{name: "persist", err: Persist("update", errors.New("timeout")), want: KindPersistFailure},
		{name: "typed not found", err: E(KindNotFound, "update", nil), want: KindNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("load draft: %w", E(KindNotFound, "get", errors.New("404")))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrAuthExpired)
	assert.False(t, errors.Is(ErrNotFound, E(KindNotFound, "get", nil)))
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Persist("create", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "create: save failed: connection refused", err.Error())
}

func TestNotice(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		contains string
	}{
		{name: "nil", err: nil, contains: ""},
		{name: "expired", err: ErrAuthExpired, contains: "session has expired"},
		{name: "declined", err: ErrAuthDeclined, contains: "cancelled"},
		{name: "validation", err: Validation("publishAt", "must be in the future"), contains: "publishAt must be in the future"},
		{name: "persist", err: Persist("update", errors.New("503 Service Unavailable")), contains: "503 Service Unavailable"},
		{name: "not found", err: ErrNotFound, contains: "no longer exists"},
		{name: "foreign", err: errors.New("disk full"), contains: "disk full"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, Notice(tc.err), tc.contains)
		})
	}
}
