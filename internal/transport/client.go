// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	mylog "github.com/staranto/promptxctl/internal/log"
)

// Resolver yields the service base URL. It is consulted on every request so a
// host can repoint the client without rebuilding it.
type Resolver func() string

// Static returns a Resolver for a fixed base URL.
func Static(base string) Resolver {
	base = strings.TrimRight(base, "/")
	return func() string { return base }
}

// Request describes one call. Body, when set, is sent as JSON.
type Request struct {
	Method string
	URL    string
	Body   any
}

// Response is a 2xx answer from the service.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return nil
}

// Client sends requests and owns the retry policy for network failures.
type Client struct {
	http    *retryablehttp.Client
	policy  RetryPolicy
	headers map[string]string

	// strikes counts consecutive calls that ended in a network failure. It
	// raises the backoff floor until ClearRequestTime is called.
	strikes atomic.Int32
}

// Option configures a Client.
type Option func(*Client)

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

// WithHTTPClient replaces the pooled client from go-cleanhttp.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http.HTTPClient = hc
		}
	}
}

// WithTimeout bounds each individual attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.HTTPClient.Timeout = d }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithLogger routes go-retryablehttp's attempt logging. Pass nil to silence
// it.
func WithLogger(l retryablehttp.LeveledLogger) Option {
	return func(c *Client) {
		if l == nil {
			c.http.Logger = nil
			return
		}
		c.http.Logger = l
	}
}

// New builds a Client.
func New(opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.Logger = mylog.Leveled{}

	c := &Client{
		http:    rc,
		policy:  DefaultRetryPolicy(),
		headers: map[string]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	rc.RetryMax = c.policy.retries()
	rc.RetryWaitMin = c.policy.InitialDelay
	rc.RetryWaitMax = c.policy.MaxDelay
	rc.CheckRetry = c.checkRetry
	rc.Backoff = c.backoff
	rc.ErrorHandler = c.giveUp

	return c
}

// Policy returns the retry policy in effect.
func (c *Client) Policy() RetryPolicy {
	return c.policy
}

// ClearRequestTime resets the backoff state built up by earlier network
// failures. Callers invoke it after a successful request so an old outage
// does not slow down unrelated calls.
func (c *Client) ClearRequestTime() {
	if n := c.strikes.Swap(0); n > 0 {
		log.Debugf("cleared %d network failure strike(s)", n)
	}
}

// Strikes reports how many calls in a row ended in a network failure.
func (c *Client) Strikes() int {
	return int(c.strikes.Load())
}

// Send issues r and returns the response for a 2xx status, an *Error for any
// other status, or an error wrapping ErrNetwork when no response arrived
// within the retry policy.
func (c *Client) Send(ctx context.Context, r Request) (*Response, error) {
	var body any
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = b
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	log.Debugf("%s %s", r.Method, r.URL)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.Method, r.URL, err)
	}
	defer resp.Body.Close()

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w: %w", ErrNetwork, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		terr := newError(resp.StatusCode, doc.Bytes())
		log.WithField("status", resp.StatusCode).Debugf("%s %s: %s", r.Method, r.URL, terr.Message)
		return nil, terr
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       doc.Bytes(),
	}, nil
}

// checkRetry retries only when no response came back. Errors that another try
// cannot fix (bad scheme, TLS verification) are left to DefaultRetryPolicy to
// spot.
func (c *Client) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil || resp != nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func (c *Client) backoff(_, maxWait time.Duration, attempt int, resp *http.Response) time.Duration {
	floor := c.policy.floor(c.strikes.Load())
	return retryablehttp.DefaultBackoff(floor, maxWait, attempt, resp)
}

// giveUp runs once go-retryablehttp stops trying with an error in hand.
func (c *Client) giveUp(resp *http.Response, err error, attempts int) (*http.Response, error) {
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	// Bad scheme, redirect loops and TLS failures are configuration errors,
	// not a lost connection.
	if retry, _ := retryablehttp.DefaultRetryPolicy(context.Background(), nil, err); !retry {
		return nil, err
	}
	c.strikes.Add(1)
	return nil, fmt.Errorf("%w after %d attempt(s): %w", ErrNetwork, attempts, err)
}
