// Package client talks to the Eversense follower (care) API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cdr.dev/slog/v3"

	"github.com/naveenspark/eversense/pkg/domain"
)

// Client is the Eversense care API client. Every request obtains its bearer
// token from the client's Session.
type Client struct {
	apiURL     string
	httpClient *http.Client
	session    *Session
	logger     slog.Logger
	location   *time.Location
	metrics    *Metrics
}

// New creates a new API client for the follower account creds.
func New(creds domain.Credentials, opts ...Option) *Client {
	o := buildOptions(opts)
	return &Client{
		apiURL:     strings.TrimRight(o.apiURL, "/"),
		httpClient: o.httpClient,
		session:    newSession(creds, o),
		logger:     o.logger,
		location:   o.location,
		metrics:    o.metrics,
	}
}

// Session returns the session that authorizes the client's requests.
func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	token, err := c.session.EnsureValid(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Message string `json:"Message"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, body, out)
}
