// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/promptxctl/internal/meta"
	"github.com/staranto/promptxctl/internal/output"
	"github.com/staranto/promptxctl/internal/role"
)

func RolesCommandAction(ctx context.Context, cmd *cli.Command) error {
	s := GetServices(cmd)

	if err := s.Directory.Fetch(ctx, cmd.Bool("refresh")); err != nil {
		return err
	}

	roles := s.Directory.Roles()
	if v := cmd.String("source"); v != "" {
		src, err := role.ParseSource(v)
		if err != nil {
			return err
		}
		roles = role.FilterBySource(roles, src)
	}
	log.Debugf("roles: %d", len(roles))

	w := Writer(cmd)
	opts := OutputOptions(cmd, w)

	if cmd.Bool("grouped") {
		return output.SpitGroups(role.GroupBySource(roles), opts, w)
	}
	return output.SpitRoles(roles, opts, w)
}

func RolesCommandBuilder(root *cli.Command, m meta.Meta) *cli.Command {
	source := m.Config.Source

	return (&CommandBuilder{
		Name:      "roles",
		Usage:     "list roles in the PromptX directory",
		UsageText: `promptxctl roles [options]`,
		Examples: [][2]string{
			{"promptxctl roles", "all roles"},
			{"promptxctl roles --grouped", "roles under their source labels"},
			{"promptxctl roles --source project -o json", "project roles as JSON"},
			{"promptxctl roles -f 'name~developer' -s -id", "filter and sort"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "refresh",
				Aliases: []string{"r"},
				Usage:   "fetch the role list even if the cached copy is fresh",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: fmt.Sprintf("only roles from this source %v", role.Sources),
				Validator: func(value string) error {
					return FlagValidators(value, SourceValidator)
				},
			},
			&cli.BoolWithInverseFlag{
				Name:    "grouped",
				Aliases: []string{"g"},
				Usage:   "group roles by source",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("roles.grouped", altsrc.StringSourcer(source)),
				),
			},
		},
		Action: RolesCommandAction,
		Meta:   m,
	}).Build()
}
