package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/routes"
)

// AuthResult is what a successful identity exchange returns.
type AuthResult struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

func (r *AuthResult) UnmarshalJSON(data []byte) error {
	var aux struct {
		User        model.User `json:"user"`
		Token       string     `json:"token"`
		AccessToken string     `json:"access_token"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.User = aux.User
	r.Token = aux.Token
	if r.Token == "" {
		r.Token = aux.AccessToken
	}
	return nil
}

var ErrNoToken = errors.New("identity exchange returned no token")

// Exchange trades an external identity credential for a session token.
func (c *Client) Exchange(ctx context.Context, provider, credential string) (*AuthResult, error) {
	body := map[string]string{"credential": credential}

	var result AuthResult
	if err := c.do(ctx, http.MethodPost, routes.Expand(routes.AuthExchange, "provider", provider), body, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, ErrNoToken
	}
	return &result, nil
}

// Me verifies token and returns its user. A 401 surfaces as an *APIError.
func (c *Client) Me(ctx context.Context, token string) (*model.User, error) {
	var result struct {
		User *model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, routes.AuthMe, nil, &result, WithBearer(token)); err != nil {
		return nil, err
	}
	if result.User == nil {
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: "no user in response"}
	}
	return result.User, nil
}

// Challenge fetches the nonce to be signed by key-based identities.
func (c *Client) Challenge(ctx context.Context) (string, error) {
	var result struct {
		Challenge string `json:"challenge"`
	}
	if err := c.do(ctx, http.MethodGet, routes.AuthChallenge, nil, &result); err != nil {
		return "", err
	}
	if result.Challenge == "" {
		return "", errors.New("empty challenge")
	}
	return result.Challenge, nil
}
