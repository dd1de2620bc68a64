package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"
	"golang.org/x/oauth2"

	"github.com/naveenspark/eversense/pkg/domain"
)

const (
	// DefaultTokenTTL applies when the token response has no expires_in.
	DefaultTokenTTL = 43200 * time.Second
	// ExpiryMargin is subtracted from the token lifetime so a token is
	// refreshed before the server rejects it.
	ExpiryMargin = 60 * time.Second
)

// Session owns the access token and its expiry. Token and expiry are only
// ever replaced together by a successful Authenticate.
type Session struct {
	creds      domain.Credentials
	oauth      *oauth2.Config
	httpClient *http.Client
	clock      quartz.Clock
	logger     slog.Logger
	metrics    *Metrics

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewSession creates an empty session for creds.
func NewSession(creds domain.Credentials, opts ...Option) *Session {
	o := buildOptions(opts)
	return newSession(creds, o)
}

func newSession(creds domain.Credentials, o options) *Session {
	return &Session{
		creds: creds,
		oauth: &oauth2.Config{
			ClientID:     o.clientID,
			ClientSecret: o.clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  o.tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: o.httpClient,
		clock:      o.clock,
		logger:     o.logger.Named("session"),
		metrics:    o.metrics,
	}
}

// Valid reports whether the session holds a token that has not reached its
// refresh time.
func (s *Session) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validLocked()
}

func (s *Session) validLocked() bool {
	return s.token != "" && s.clock.Now().Before(s.expiry)
}

// Expiry returns the time the current token must be refreshed by.
func (s *Session) Expiry() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiry
}

// Authenticate exchanges the stored credentials for a new access token using
// the password grant. On failure the previous token is kept.
func (s *Session) Authenticate(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	tok, err := s.oauth.PasswordCredentialsToken(ctx, s.creds.Username, s.creds.Password)
	s.metrics.login(err)
	if err != nil {
		err = retrieveError(err)
		s.logger.Error(ctx, "login failed",
			slog.F("username", s.creds.Username),
			slog.Error(err),
		)
		return fmt.Errorf("client.Authenticate: %w", err)
	}

	ttl := tokenTTL(tok)
	expiry := s.clock.Now().Add(ttl - ExpiryMargin)

	s.mu.Lock()
	s.token = tok.AccessToken
	s.expiry = expiry
	s.mu.Unlock()

	s.logger.Debug(ctx, "login succeeded",
		slog.F("expires_in", ttl),
		slog.F("refresh_at", expiry),
	)
	return nil
}

// EnsureValid returns a usable access token, logging in again when the
// current one is missing or due for refresh. The returned error wraps
// ErrNoSession when no token could be obtained.
func (s *Session) EnsureValid(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.validLocked() {
		tok := s.token
		s.mu.Unlock()
		return tok, nil
	}
	s.mu.Unlock()

	s.logger.Debug(ctx, "token expired or missing, logging in")
	if err := s.Authenticate(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoSession, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// Invalidate drops the current token so the next EnsureValid logs in again.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiry = time.Time{}
}

// tokenTTL reads expires_in from the token response. DefaultTokenTTL
// applies only when the field is absent; a present zero or negative value
// yields a token that is already due for refresh.
func tokenTTL(tok *oauth2.Token) time.Duration {
	raw := tok.Extra("expires_in")
	if raw == nil {
		if tok.ExpiresIn != 0 {
			return time.Duration(tok.ExpiresIn) * time.Second
		}
		return DefaultTokenTTL
	}
	var secs float64
	switch v := raw.(type) {
	case float64:
		secs = v
	case json.Number:
		secs, _ = v.Float64() //nolint:errcheck // unparsable counts as zero
	case string:
		secs, _ = strconv.ParseFloat(v, 64) //nolint:errcheck // unparsable counts as zero
	}
	return time.Duration(secs * float64(time.Second))
}

// retrieveError converts a token endpoint rejection into an HTTPError.
func retrieveError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		msg := rerr.ErrorCode
		if msg == "" {
			msg = string(rerr.Body)
		}
		return &HTTPError{StatusCode: rerr.Response.StatusCode, Message: msg}
	}
	return err
}
