// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package transport sends JSON requests to the PromptX service. Requests that
// get no response at all are retried according to a RetryPolicy; any answer
// from the service, including an error status, is handed back to the caller
// without a retry.
package transport
