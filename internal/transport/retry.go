// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"time"
)

// RetryPolicy controls how often and how patiently a request that got no
// response is reissued. Cancellation comes from the request context.
type RetryPolicy struct {
	// MaxAttempts counts the first try. Values below 1 mean a single try.
	MaxAttempts int
	// InitialDelay is the wait before the first retry. It doubles on each
	// further retry.
	InitialDelay time.Duration
	// MaxDelay caps a single wait.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
	}
}

// retries converts MaxAttempts into go-retryablehttp's RetryMax.
func (p RetryPolicy) retries() int {
	if p.MaxAttempts < 1 {
		return 0
	}
	return p.MaxAttempts - 1
}

// floor returns the initial delay raised by strikes, the number of earlier
// calls that ended in a network failure.
func (p RetryPolicy) floor(strikes int32) time.Duration {
	d := p.InitialDelay
	for i := int32(0); i < strikes && d < p.MaxDelay; i++ {
		d *= 2
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}
