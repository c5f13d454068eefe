package session

import (
	"net/http"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/config"
)

// bearerTransport attaches the session token and reports 401s back to the manager.
// Requests that already carry an Authorization header are passed through untouched.
type bearerTransport struct {
	m    *Manager
	base http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s := t.m.Current()
	if s == nil || req.Header.Get(config.HAuthorization) != "" {
		return t.base.RoundTrip(req)
	}

	r := req.Clone(req.Context())
	r.Header.Set(config.HAuthorization, config.BearerPrefix+s.Token)

	resp, err := t.base.RoundTrip(r)
	if err == nil && resp.StatusCode == http.StatusUnauthorized {
		t.m.expire(s.Token)
	}
	return resp, err
}
