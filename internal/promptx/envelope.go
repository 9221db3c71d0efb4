// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package promptx

import (
	"errors"
)

// CodeOK is the result code the service uses for success.
const CodeOK = 0

// ErrEmptyResponse is reported by callers unwrapping an envelope that carries
// no payload.
var ErrEmptyResponse = errors.New("empty response from PromptX service")

// Result is the service's own {code, msg, data} wrapper.
type Result[T any] struct {
	// Code is nil when the body did not carry one.
	Code *int   `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

// OK reports whether the result carries the success code.
func (r *Result[T]) OK() bool {
	return r != nil && r.Code != nil && *r.Code == CodeOK
}

// Envelope is the transport level wrapper around a Result. Data is nil when
// the response body was empty.
type Envelope[T any] struct {
	StatusCode int
	Data       *Result[T]
}

// Payload returns the inner result, or ErrEmptyResponse when there is none.
func (e *Envelope[T]) Payload() (*Result[T], error) {
	if e == nil || e.Data == nil {
		return nil, ErrEmptyResponse
	}
	return e.Data, nil
}
