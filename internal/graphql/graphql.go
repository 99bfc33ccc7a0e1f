// Copyright (c) 2026 desokit Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package graphql queries accounts from the DeSo GraphQL service.
package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/desotools/desokit/internal/network"
)

// DefaultURL is the public DeSo GraphQL endpoint.
const DefaultURL = "https://graphql-prod.deso.com/graphql"

// ErrNotFound is returned when the account does not exist.
var ErrNotFound = errors.New("account not found")

const accountFields = `publicKey
    username
    description
    profilePic
    extraData`

var (
	queryByPublicKey = `query AccountByPublicKey($publicKey: String!) {
  accountByPublicKey(publicKey: $publicKey) {
    ` + accountFields + `
  }
}`
	queryByUsername = `query AccountByUsername($username: String!) {
  accountByUsername(username: $username) {
    ` + accountFields + `
  }
}`
)

// Account is the subset of the account type used by desokit.
type Account struct {
	PublicKey   string         `json:"publicKey"`
	Username    string         `json:"username"`
	Description string         `json:"description"`
	ProfilePic  string         `json:"profilePic"`
	ExtraData   map[string]any `json:"extraData"`
}

// Extra returns the string value of an extra data key.
func (a *Account) Extra(key string) string {
	if a == nil || a.ExtraData == nil {
		return ""
	}
	s, _ := a.ExtraData[key].(string)
	return s
}

// Error is an entry of the GraphQL errors array.
type Error struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// Errors is the GraphQL errors array of a response.
type Errors []Error

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Message)
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// httpError is a non-2xx response from the endpoint.
type httpError struct {
	code int
	body string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("graphql: http %d: %s", e.code, e.body)
}

func (e *httpError) HTTPStatusCode() int { return e.code }

// Client is a DeSo GraphQL client.
type Client struct {
	rc      *resty.Client
	url     string
	lim     *rate.Limiter
	retries int
	lg      *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithLimits sets the rate limit, retries and request timeout.
func WithLimits(l network.Limits) Option {
	return func(c *Client) {
		c.lim = l.Limiter()
		c.retries = l.Retries
		c.rc.SetTimeout(l.Timeout)
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(c *Client) {
		if lg == nil {
			lg = slog.Default()
		}
		c.lg = lg
	}
}

// New returns a client for the GraphQL endpoint at url.  Empty url means
// DefaultURL.
func New(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		rc: resty.New().
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		url: url,
		lg:  slog.Default(),
	}
	WithLimits(network.DefLimits)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors Errors          `json:"errors,omitempty"`
}

// Do executes query with variables and decodes the data field into out.
func (c *Client) Do(ctx context.Context, query string, vars map[string]any, out any) error {
	var resp response
	err := network.WithRetry(ctx, c.lim, c.retries, func() error {
		r, err := c.rc.R().
			SetContext(ctx).
			SetBody(request{Query: query, Variables: vars}).
			Post(c.url)
		if err != nil {
			return err
		}
		if r.IsError() {
			return &httpError{code: r.StatusCode(), body: strings.TrimSpace(string(r.Body()))}
		}
		resp = response{}
		return json.Unmarshal(r.Body(), &resp)
	})
	if err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return resp.Errors
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Data, out)
}

// AccountByPublicKey returns the account with the given public key.
func (c *Client) AccountByPublicKey(ctx context.Context, publicKey string) (*Account, error) {
	if publicKey == "" {
		return nil, errors.New("public key is empty")
	}
	var data struct {
		Account *Account `json:"accountByPublicKey"`
	}
	if err := c.Do(ctx, queryByPublicKey, map[string]any{"publicKey": publicKey}, &data); err != nil {
		return nil, fmt.Errorf("accountByPublicKey: %w", err)
	}
	if data.Account == nil {
		return nil, ErrNotFound
	}
	c.lg.DebugContext(ctx, "account resolved", "publicKey", publicKey, "username", data.Account.Username)
	return data.Account, nil
}

// AccountByUsername returns the account with the given username.
func (c *Client) AccountByUsername(ctx context.Context, username string) (*Account, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, errors.New("username is empty")
	}
	var data struct {
		Account *Account `json:"accountByUsername"`
	}
	if err := c.Do(ctx, queryByUsername, map[string]any{"username": username}, &data); err != nil {
		return nil, fmt.Errorf("accountByUsername: %w", err)
	}
	if data.Account == nil {
		return nil, ErrNotFound
	}
	return data.Account, nil
}

var _ network.StatusError = (*httpError)(nil)
