// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/promptxctl/internal/meta"
	"github.com/staranto/promptxctl/internal/output"
	"github.com/staranto/promptxctl/internal/role"
)

var (
	ErrMissingRoleID = errors.New("a role id is required")
	ErrRoleNotFound  = errors.New("role not found")
)

// roleKeys orders the fields of a single role in text output.
var roleKeys = []string{"id", "name", "source", "label", "description", "protocol", "reference"}

// lookupRole resolves the role named by the first argument through the
// directory cache.
func lookupRole(ctx context.Context, cmd *cli.Command) (role.Role, error) {
	id := cmd.Args().First()
	if id == "" {
		return role.Role{}, ErrMissingRoleID
	}

	s := GetServices(cmd)

	if err := s.Directory.Fetch(ctx, cmd.Bool("refresh")); err != nil {
		return role.Role{}, err
	}

	r, ok := s.Directory.RoleByID(id)
	if !ok {
		return role.Role{}, fmt.Errorf("%w: %s", ErrRoleNotFound, id)
	}
	return r, nil
}

func roleRecord(r role.Role) map[string]interface{} {
	return map[string]interface{}{
		"id":          r.ID,
		"name":        r.Name,
		"description": r.Description,
		"source":      r.Source.String(),
		"label":       r.Source.Label(),
		"protocol":    r.Protocol,
		"reference":   r.Reference,
	}
}

func RoleCommandAction(ctx context.Context, cmd *cli.Command) error {
	r, err := lookupRole(ctx, cmd)
	if err != nil {
		return err
	}

	w := Writer(cmd)
	return output.SpitRecord(roleRecord(r), roleKeys, OutputOptions(cmd, w), w)
}

func RoleCommandBuilder(root *cli.Command, m meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "role",
		Usage:     "show a single role",
		UsageText: `promptxctl role <role-id> [options]`,
		ArgsUsage: "<role-id>",
		Examples: [][2]string{
			{"promptxctl role assistant", "show the assistant role"},
			{"promptxctl role pm -o yaml", "show the pm role as YAML"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "refresh",
				Aliases: []string{"r"},
				Usage:   "fetch the role list even if the cached copy is fresh",
			},
		},
		Action: RoleCommandAction,
		Meta:   m,
	}).Build()
}
