// Package dataapi implements the persistence gateway on top of a managed
// backend's PostgREST data API (for example Supabase). Every request is
// atomic on the server but a session spans several HTTP calls, so
// WithSession cannot roll back work that already succeeded.
package dataapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/festival-coordinator/internal/repository"
)

const restPath = "/rest/v1/"

// Client talks to one data API project.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithSession hands work a session bound to this client. There is no
// transaction to commit or roll back.
func (c *Client) WithSession(ctx context.Context, work func(ctx context.Context, s repository.Session) error) error {
	return work(ctx, session{c})
}

// Ping issues a cheap read against the groups table.
func (c *Client) Ping(ctx context.Context) error {
	var rows []struct{}
	return c.do(ctx, http.MethodGet, "groups", url.Values{"select": {"id"}, "limit": {"1"}}, nil, &rows)
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// apiError is the PostgREST error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// err maps PostgreSQL error codes relayed by the API onto repository
// sentinels.
func (e apiError) err(status int) error {
	switch {
	case strings.HasPrefix(e.Code, "23"):
		return repository.Constraint(e.Message)
	case strings.HasPrefix(e.Code, "22"):
		return repository.InvalidInput(e.Message)
	}
	return fmt.Errorf("data api: status %d: %s %s", status, e.Code, e.Message)
}

// do sends one request. Writes ask for the affected rows back so callers
// can detect misses without a second round trip.
func (c *Client) do(ctx context.Context, method, table string, params url.Values, body any, out any) error {
	u := c.baseURL + restPath + table
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("could not encode %s body: %w", table, err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("data api %s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("data api %s %s: read body: %w", method, table, err)
	}
	if resp.StatusCode >= 400 {
		var ae apiError
		if jerr := json.Unmarshal(raw, &ae); jerr != nil || ae.Code == "" {
			return fmt.Errorf("data api %s %s: status %d: %s", method, table, resp.StatusCode, bytes.TrimSpace(raw))
		}
		return ae.err(resp.StatusCode)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("data api %s %s: decode: %w", method, table, err)
	}
	return nil
}
