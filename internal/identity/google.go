package identity

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/config"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/errs"
)

// DeviceCodeNotifier shows the user where to approve the sign-in.
type DeviceCodeNotifier func(verificationURL, userCode string)

// GoogleSource signs in with the OAuth 2.0 device authorization grant and
// yields the Google ID token for the server to verify.
type GoogleSource struct {
	oauth  *oauth2.Config
	notify DeviceCodeNotifier
}

func NewGoogleSource(cfg config.GoogleConfig, notify DeviceCodeNotifier) *GoogleSource {
	return &GoogleSource{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				DeviceAuthURL: cfg.DeviceAuthURL,
				TokenURL:      cfg.TokenURL,
				AuthStyle:     oauth2.AuthStyleInParams,
			},
		},
		notify: notify,
	}
}

func (s *GoogleSource) Name() string { return config.ProviderGoogle }

func (s *GoogleSource) Credential(ctx context.Context) (Credential, error) {
	if s.oauth.ClientID == "" {
		return Credential{}, errors.New("google sign-in needs auth.google.client_id")
	}

	da, err := s.oauth.DeviceAuth(ctx)
	if err != nil {
		return Credential{}, declined(ctx, "google device auth", fmt.Errorf("failed to start device sign-in: %w", err))
	}

	if s.notify != nil {
		uri := da.VerificationURIComplete
		if uri == "" {
			uri = da.VerificationURI
		}
		s.notify(uri, da.UserCode)
	}

	tok, err := s.oauth.DeviceAccessToken(ctx, da)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && (rerr.ErrorCode == "access_denied" || rerr.ErrorCode == "expired_token") {
			return Credential{}, errs.E(errs.KindAuthDeclined, "google sign-in", err)
		}
		return Credential{}, declined(ctx, "google sign-in", err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return Credential{}, errors.New("google did not return an id_token; is the openid scope configured?")
	}

	return Credential{Provider: s.Name(), Value: idToken}, nil
}
