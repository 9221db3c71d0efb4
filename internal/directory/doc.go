// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package directory keeps the in-memory role directory: the last fetched role
// set, its grouping by source, and the bookkeeping that decides when the set
// is stale and must be fetched again.
package directory
