// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package promptx

import (
	"bytes"
	"context"
	"net/http"

	"github.com/apex/log"

	"github.com/staranto/promptxctl/internal/role"
	"github.com/staranto/promptxctl/internal/transport"
)

const (
	rolesPath          = "/promptx/roles"
	generatePromptPath = "/promptx/generate-prompt"
	statusPath         = "/promptx/status"
)

// Sender is the part of transport.Client this package needs.
type Sender interface {
	Send(ctx context.Context, r transport.Request) (*transport.Response, error)
	ClearRequestTime()
}

// Client calls the PromptX endpoints. It keeps no state between calls.
type Client struct {
	sender  Sender
	baseURL transport.Resolver
}

// NewClient returns a Client sending through s to the service at baseURL.
func NewClient(s Sender, baseURL transport.Resolver) *Client {
	return &Client{sender: s, baseURL: baseURL}
}

// ListRoles fetches every role known to the service.
func (c *Client) ListRoles(ctx context.Context) (*Envelope[[]role.Role], error) {
	return call[[]role.Role](ctx, c, http.MethodGet, rolesPath, nil)
}

// GeneratePrompt asks the service for the system prompt of a role.
func (c *Client) GeneratePrompt(ctx context.Context, req role.GeneratePromptRequest) (*Envelope[string], error) {
	return call[string](ctx, c, http.MethodPost, generatePromptPath, req)
}

// Status asks the service whether PromptX is available.
func (c *Client) Status(ctx context.Context) (*Envelope[bool], error) {
	return call[bool](ctx, c, http.MethodGet, statusPath, nil)
}

func call[T any](ctx context.Context, c *Client, method, path string, body any) (*Envelope[T], error) {
	resp, err := c.sender.Send(ctx, transport.Request{
		Method: method,
		URL:    c.baseURL() + path,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	// The service answered, so whatever backoff earlier outages built up no
	// longer applies.
	c.sender.ClearRequestTime()

	env := &Envelope[T]{StatusCode: resp.StatusCode}
	var result Result[T]
	if err := resp.Decode(&result); err != nil {
		return nil, err
	}
	if raw := bytes.TrimSpace(resp.Body); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		env.Data = &result
	}

	log.Debugf("%s %s: status=%d", method, path, resp.StatusCode)
	return env, nil
}
