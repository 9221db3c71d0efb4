// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// promptxctl is the command line client for a PromptX service. It lists the
// role directory, shows single roles, generates system prompts and reports
// service status.
package main
