package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/errs"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api", srv.Client())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestExchange(t *testing.T) {
	testCases := []struct {
		name     string
		response string
		status   int
		token    string
		wantErr  bool
	}{
		{name: "token field", status: 200, response: `{"user":{"id":1,"email":"a@b.c"},"token":"t1"}`, token: "t1"},
		{name: "access_token alias", status: 200, response: `{"user":{"id":1},"access_token":"t2"}`, token: "t2"},
		{name: "missing token", status: 200, response: `{"user":{"id":1}}`, wantErr: true},
		{name: "rejected", status: 401, response: `{"detail":"Invalid Google token"}`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/auth/google", r.URL.Path)

				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "id-token", body["credential"])

				w.WriteHeader(tc.status)
				io.WriteString(w, tc.response)
			})

			res, err := client.Exchange(context.Background(), "google", "id-token")
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.token, res.Token)
			assert.Equal(t, model.UserID("1"), res.User.ID)
		})
	}
}

func TestMe(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/me", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"user": map[string]interface{}{"id": "u1", "name": "Julian", "is_admin": true},
		})
	})

	user, err := client.Me(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "Julian", user.DisplayName)
	assert.True(t, user.IsAdmin)

	_, err = client.Me(context.Background(), "bad")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Contains(t, err.Error(), "Invalid token")
}

func TestContentPersistence(t *testing.T) {
	var calls atomic.Int32
	publishedAt := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/content":
			var in map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.NotContains(t, in, "id")
			assert.Equal(t, "draft", in["lifecycleState"])
			assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))
			in["id"] = 42
			writeJSON(w, http.StatusCreated, in)
		case r.Method == http.MethodPut && r.URL.Path == "/api/content/42":
			var in model.Content
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, model.ContentID("42"), in.ID)
			assert.Equal(t, model.StatePublished, in.State)
			require.NotNil(t, in.PublishedAt)
			writeJSON(w, http.StatusOK, in)
		case r.Method == http.MethodPut && r.URL.Path == "/api/content/404":
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Blog not found"})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/content/42":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/api/content/42":
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 42, "title": "Hello", "lifecycleState": "published"})
		default:
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "maintenance"})
		}
	})
	ctx := context.Background()

	created, err := client.Create(ctx, model.Content{ID: "ignored", Title: "A", State: model.StateDraft}, "key-1")
	require.NoError(t, err)
	assert.Equal(t, model.ContentID("42"), created.ID)

	updated, err := client.Update(ctx, "42", model.Content{Title: "A", State: model.StatePublished, PublishedAt: &publishedAt}, "key-2")
	require.NoError(t, err)
	assert.True(t, updated.PublishedAt.Equal(publishedAt))

	_, err = client.Update(ctx, "404", model.Content{}, "")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	got, err := client.GetContent(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)

	require.NoError(t, client.Delete(ctx, "42"))

	err = client.Delete(ctx, "7")
	assert.Equal(t, errs.KindPersistFailure, errs.KindOf(err))
	assert.Equal(t, int32(6), calls.Load())
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		status int
		want   errs.Kind
	}{
		{http.StatusUnauthorized, errs.KindAuthExpired},
		{http.StatusNotFound, errs.KindNotFound},
		{http.StatusGone, errs.KindNotFound},
		{http.StatusBadRequest, errs.KindValidation},
		{http.StatusUnprocessableEntity, errs.KindValidation},
		{http.StatusInternalServerError, errs.KindPersistFailure},
		{http.StatusForbidden, errs.KindPersistFailure},
	}

	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			err := classify("op", &APIError{StatusCode: tc.status, Message: "x"})
			assert.Equal(t, tc.want, errs.KindOf(err))
		})
	}

	assert.Nil(t, classify("op", nil))
}

func TestTransportFailureIsPersistFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := NewClient(srv.URL, srv.Client())
	srv.Close()

	_, err := client.Create(context.Background(), model.Content{}, "")
	assert.Equal(t, errs.KindPersistFailure, errs.KindOf(err))
}

func TestTimeoutIsPersistFailure(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Update(ctx, "1", model.Content{}, "")
	assert.Equal(t, errs.KindPersistFailure, errs.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
