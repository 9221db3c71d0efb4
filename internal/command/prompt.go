// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/promptxctl/internal/meta"
	"github.com/staranto/promptxctl/internal/output"
	"github.com/staranto/promptxctl/internal/role"
)

func PromptCommandAction(ctx context.Context, cmd *cli.Command) error {
	r, err := lookupRole(ctx, cmd)
	if err != nil {
		return err
	}

	req := role.NewGeneratePromptRequest(r)
	if v := cmd.String("name"); v != "" {
		req.RoleName = v
	}
	if v := cmd.String("description"); v != "" {
		req.RoleDescription = v
	}
	log.WithField("role", req.RoleID).Debug("generating system prompt")

	text, err := GetServices(cmd).Prompts.GenerateSystemPrompt(ctx, req)
	if err != nil {
		return err
	}

	w := Writer(cmd)
	opts := OutputOptions(cmd, w)
	if opts.Format == output.FormatText {
		_, err = fmt.Fprintln(w, text)
		return err
	}

	record := map[string]interface{}{
		"roleId": req.RoleID,
		"prompt": text,
	}
	return output.SpitRecord(record, []string{"roleId", "prompt"}, opts, w)
}

func PromptCommandBuilder(root *cli.Command, m meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "prompt",
		Usage:     "generate the system prompt for a role",
		UsageText: `promptxctl prompt <role-id> [options]`,
		ArgsUsage: "<role-id>",
		Examples: [][2]string{
			{"promptxctl prompt assistant", "system prompt for the assistant role"},
			{"promptxctl prompt pm --name 'PM' -o json", "override the role name"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "refresh",
				Aliases: []string{"r"},
				Usage:   "fetch the role list even if the cached copy is fresh",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "role name sent instead of the directory's",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "role description sent instead of the directory's",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
		},
		Action: PromptCommandAction,
		Meta:   m,
	}).Build()
}
