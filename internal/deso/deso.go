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

// Package deso is a client for the subset of the DeSo node API (/api/v0)
// needed to read profiles, message threads and access groups, and to build
// and submit direct message transactions.
//
// The client never signs anything: transactions are returned unsigned and
// must be signed by the holder of the key before SubmitTransaction.
package deso

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/desotools/desokit/internal/network"
)

//go:generate mockgen -destination=mock_deso/mock_deso.go . Client

// DefaultNodeURL is the public DeSo node.
const DefaultNodeURL = "https://node.deso.org"

var (
	// ErrNoAccessGroup is returned when the access group needed to read or
	// send a message does not exist.
	ErrNoAccessGroup = errors.New("access group not found")
	// ErrNotFound is returned when the node does not know the requested
	// entity.
	ErrNotFound = errors.New("not found")
)

// Client is the DeSo node API used by the messaging and profile layers.
type Client interface {
	// MessageThreads returns the latest message of every thread of the
	// user.
	MessageThreads(ctx context.Context, publicKey string) (*ThreadsResponse, error)
	// ThreadMessages returns a page of messages of one thread, newest
	// first.
	ThreadMessages(ctx context.Context, req ThreadRequest) (*ThreadsResponse, error)
	// AccessGroups returns the access groups the user owns or is a member
	// of.
	AccessGroups(ctx context.Context, publicKey string) (*AccessGroups, error)
	// SingleProfile returns the profile for a public key or a username.
	SingleProfile(ctx context.Context, key string) (*ProfileEntry, error)
	// SendDM constructs an unsigned direct message transaction.
	SendDM(ctx context.Context, req SendDMRequest) (*TxnResponse, error)
	// SubmitTransaction submits a signed transaction.
	SubmitTransaction(ctx context.Context, signedHex string) (*SubmitResponse, error)
}

// APIError is a non-successful response from the node.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("deso api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("deso api: %d: %s", e.StatusCode, e.Message)
}

// HTTPStatusCode returns the status code of the response.
func (e *APIError) HTTPStatusCode() int {
	return e.StatusCode
}

// Temporary reports whether the request may succeed if retried.
func (e *APIError) Temporary() bool {
	return network.IsRecoverable(e.StatusCode)
}

// HTTPClient is the Client backed by a DeSo node over HTTP.
type HTTPClient struct {
	rc      *resty.Client
	lim     *rate.Limiter
	retries int
	lg      *slog.Logger
}

var _ Client = (*HTTPClient)(nil)

// Option configures the HTTPClient.
type Option func(*HTTPClient)

// WithLimits sets the rate limit, retries and request timeout.
func WithLimits(l network.Limits) Option {
	return func(c *HTTPClient) {
		c.lim = l.Limiter()
		c.retries = l.Retries
		c.rc.SetTimeout(l.Timeout)
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(c *HTTPClient) {
		if lg == nil {
			lg = slog.Default()
		}
		c.lg = lg
	}
}

// WithHTTPClient sets the underlying http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc == nil {
			return
		}
		if hc.Transport != nil {
			c.rc.SetTransport(hc.Transport)
		}
		if hc.Timeout > 0 {
			c.rc.SetTimeout(hc.Timeout)
		}
	}
}

// New returns a client for the node at nodeURL, e.g.
// "https://node.deso.org".
func New(nodeURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(nodeURL)
	if err != nil {
		return nil, fmt.Errorf("invalid node url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid node url %q: must be http(s)://host", nodeURL)
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(nodeURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	c := &HTTPClient{
		rc: rc,
		lg: slog.Default(),
	}
	WithLimits(network.DefLimits)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// errorBody is the error payload returned by the node.
type errorBody struct {
	Error string `json:"error"`
}

// post sends body to the endpoint at path and decodes the response into out.
// Temporary failures are retried.
func (c *HTTPClient) post(ctx context.Context, path string, body any, out any) error {
	start := time.Now()
	err := network.WithRetry(ctx, c.lim, c.retries, func() error {
		resp, err := c.rc.R().
			SetContext(ctx).
			SetBody(body).
			Post(path)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return responseError(resp)
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	})
	c.lg.DebugContext(ctx, "deso api call", "path", path, "took", time.Since(start), "error", err)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// responseError converts a non-2xx response into an error.
func responseError(resp *resty.Response) error {
	if resp.StatusCode() == http.StatusTooManyRequests {
		return &network.RateLimitedError{RetryAfter: retryAfter(resp.Header().Get("Retry-After"))}
	}
	var eb errorBody
	_ = json.Unmarshal(resp.Body(), &eb)
	msg := eb.Error
	if msg == "" {
		msg = strings.TrimSpace(string(resp.Body()))
	}
	apiErr := &APIError{StatusCode: resp.StatusCode(), Message: msg}
	if resp.StatusCode() == http.StatusNotFound {
		return errors.Join(ErrNotFound, apiErr)
	}
	return apiErr
}

// retryAfter parses the Retry-After header value in seconds.
func retryAfter(v string) time.Duration {
	const def = time.Second
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
