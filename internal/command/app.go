// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/promptxctl/internal/config"
	"github.com/staranto/promptxctl/internal/meta"
)

// Version is stamped at build time.
var Version = "dev"

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	// The arg[1] immediately following the binary (arg[0]) is the subcommand
	// and also represents the namespace key to be used when retrieving config
	// values. arg[1] could be -h/--help, so ignore it if it appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, err := config.Load(ns)
	if err != nil {
		log.WithError(err).Debug("continuing without a config file")
	}

	m := meta.Meta{
		Args:      args,
		Config:    cfg,
		Context:   ctx,
		Namespace: ns,
	}

	app := &cli.Command{
		Name:    "promptxctl",
		Usage:   "PromptX role directory and prompt generation",
		Version: Version,
		Metadata: map[string]any{
			"meta": m,
		},
		Flags: []cli.Flag{
			NewURLFlag(ns, cfg.Source),
			NewTimeoutFlag(ns, cfg.Source),
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if s, ok := c.Metadata["services"].(*Services); ok {
				logMetrics(s.Registry)
			}
			return nil
		},
	}

	app.Commands = append(app.Commands,
		RolesCommandBuilder(app, m),
		RoleCommandBuilder(app, m),
		PromptCommandBuilder(app, m),
		StatusCommandBuilder(app, m),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
