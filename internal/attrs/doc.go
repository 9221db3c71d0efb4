// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package attrs parses the --attrs flag: which role attributes are shown, what
// they are titled and how their values are transformed.
package attrs
