// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package prompt turns a role into the system prompt generated for it by the
// PromptX service.
package prompt
