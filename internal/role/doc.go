// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package role defines the PromptX role model, the fixed source categories a
// role can come from, and the grouping of a role set by source.
package role
