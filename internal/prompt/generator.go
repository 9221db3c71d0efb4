// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"context"
	"errors"

	"github.com/apex/log"

	"github.com/staranto/promptxctl/internal/promptx"
	"github.com/staranto/promptxctl/internal/role"
	"github.com/staranto/promptxctl/internal/transport"
)

// DefaultError is the message used when a failure carries no better one.
const DefaultError = "failed to generate system prompt"

// ErrRejected marks a response whose result code is not CodeOK.
var ErrRejected = errors.New("system prompt request rejected")

// Client is the part of promptx.Client the generator needs.
type Client interface {
	GeneratePrompt(ctx context.Context, req role.GeneratePromptRequest) (*promptx.Envelope[string], error)
}

// Error carries the message surfaced to the user along with its cause.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Generator validates requests and unwraps generate-prompt responses.
type Generator struct {
	client Client
}

// NewGenerator returns a Generator calling c.
func NewGenerator(c Client) *Generator {
	return &Generator{client: c}
}

// GenerateSystemPrompt returns the prompt text generated for req. The text is
// returned only when the service reports success; otherwise the error message
// is, in order of preference, the transport's, the service's msg, or
// DefaultError.
func (g *Generator) GenerateSystemPrompt(ctx context.Context, req role.GeneratePromptRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", &Error{Message: err.Error(), Err: err}
	}

	env, err := g.client.GeneratePrompt(ctx, req)
	if err != nil {
		msg := transport.Message(err, DefaultError)
		if errors.Is(err, transport.ErrMalformed) {
			msg = DefaultError
		}
		return "", &Error{Message: msg, Err: err}
	}

	result, err := env.Payload()
	if err != nil {
		return "", &Error{Message: DefaultError, Err: err}
	}

	if !result.OK() {
		msg := result.Msg
		if msg == "" {
			msg = DefaultError
		}
		log.WithField("role", req.RoleID).Warnf("system prompt rejected: %s", msg)
		return "", &Error{Message: msg, Err: ErrRejected}
	}

	log.Debugf("generated system prompt for %s (%d bytes)", req.RoleID, len(result.Data))
	return result.Data, nil
}
