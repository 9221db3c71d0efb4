// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

var (
	// ErrNetwork marks a request that never got a response.
	ErrNetwork = errors.New("network failure")
	// ErrMalformed marks a response body that could not be decoded.
	ErrMalformed = errors.New("malformed response")
)

// Error is returned when the service answered with a non-2xx status.
type Error struct {
	StatusCode int
	// Message is the service supplied "msg" when the body carries one, and
	// the status text otherwise.
	Message string
	Body    []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

func newError(status int, body []byte) *Error {
	msg := gjson.GetBytes(body, "msg").String()
	if msg == "" {
		msg = gjson.GetBytes(body, "message").String()
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{
		StatusCode: status,
		Message:    msg,
		Body:       body,
	}
}

// Message returns the most descriptive text available for err: the service
// message of an *Error, the error text otherwise, and fallback when err is nil
// or has no text.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var te *Error
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	if s := err.Error(); s != "" {
		return s
	}
	return fallback
}
