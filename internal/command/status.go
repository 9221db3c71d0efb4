// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/promptxctl/internal/meta"
	"github.com/staranto/promptxctl/internal/output"
	"github.com/staranto/promptxctl/internal/transport"
)

// DefaultStatusError is reported when the service answers without a usable
// status.
const DefaultStatusError = "failed to query service status"

func StatusCommandAction(ctx context.Context, cmd *cli.Command) error {
	s := GetServices(cmd)

	record := map[string]interface{}{
		"url":       cmd.String("url"),
		"available": false,
	}
	keys := []string{"url", "available"}

	env, err := s.API.Status(ctx)
	switch {
	case err != nil:
		record["error"] = transport.Message(err, DefaultStatusError)
		keys = append(keys, "error")
	default:
		result, perr := env.Payload()
		switch {
		case perr != nil:
			record["error"] = DefaultStatusError
			keys = append(keys, "error")
		case !result.OK():
			msg := result.Msg
			if msg == "" {
				msg = DefaultStatusError
			}
			record["error"] = msg
			keys = append(keys, "error")
		default:
			record["available"] = result.Data
		}
	}
	log.WithFields(log.Fields{"available": record["available"]}).Debug("status")

	if cmd.Bool("roles") && record["available"] == true {
		if ferr := s.Directory.Fetch(ctx, false); ferr != nil {
			record["roles_error"] = ferr.Error()
			keys = append(keys, "roles_error")
		} else {
			snap := s.Directory.Snapshot()
			record["roles"] = len(snap.Roles)
			record["groups"] = len(snap.Groups)
			record["fetched"] = humanize.Time(snap.LastFetch)
			keys = append(keys, "roles", "groups", "fetched")
		}
	}

	w := Writer(cmd)
	return output.SpitRecord(record, keys, OutputOptions(cmd, w), w)
}

func StatusCommandBuilder(root *cli.Command, m meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "status",
		Usage:     "report whether the PromptX service is available",
		UsageText: `promptxctl status [options]`,
		Examples: [][2]string{
			{"promptxctl status", "check the default service"},
			{"promptxctl status --roles -u http://promptx:8000", "also load the role directory"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "roles",
				Usage: "also fetch the role directory and summarize it",
			},
		},
		Action: StatusCommandAction,
		Meta:   m,
	}).Build()
}
