// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package promptx is the client for the PromptX role endpoints. It maps each
// endpoint onto one transport call and returns the service envelope as-is;
// interpreting result codes is up to the caller.
package promptx
