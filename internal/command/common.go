// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/promptxctl/internal/attrs"
	"github.com/staranto/promptxctl/internal/config"
	"github.com/staranto/promptxctl/internal/directory"
	"github.com/staranto/promptxctl/internal/meta"
	"github.com/staranto/promptxctl/internal/output"
	"github.com/staranto/promptxctl/internal/prompt"
	"github.com/staranto/promptxctl/internal/promptx"
	"github.com/staranto/promptxctl/internal/transport"
)

// Services are the clients a command works with. They are built once per
// invocation, after the global flags are parsed.
type Services struct {
	Transport *transport.Client
	API       *promptx.Client
	Directory *directory.Cache
	Prompts   *prompt.Generator
	Registry  *prometheus.Registry
}

// NewServices wires the transport, API client, directory cache and prompt
// generator from the --url and --timeout flags and the retry.* config keys.
func NewServices(cmd *cli.Command) *Services {
	policy := RetryPolicyFromConfig()
	log.Debugf("retry policy: %+v", policy)

	tc := transport.New(
		transport.WithRetryPolicy(policy),
		transport.WithTimeout(cmd.Duration("timeout")),
		transport.WithHeader("User-Agent", "promptxctl/"+Version),
	)

	// Resolve lazily so the base URL always reflects the parsed flag.
	base := func() string {
		return strings.TrimRight(cmd.String("url"), "/")
	}

	api := promptx.NewClient(tc, base)
	reg := prometheus.NewRegistry()

	return &Services{
		Transport: tc,
		API:       api,
		Directory: directory.New(api, directory.WithRegisterer(reg)),
		Prompts:   prompt.NewGenerator(api),
		Registry:  reg,
	}
}

// RetryPolicyFromConfig overlays the retry.* config keys on the default
// policy.
func RetryPolicyFromConfig() transport.RetryPolicy {
	p := transport.DefaultRetryPolicy()
	p.MaxAttempts, _ = config.GetInt("retry.max", p.MaxAttempts)
	p.InitialDelay, _ = config.GetDuration("retry.wait_min", p.InitialDelay)
	p.MaxDelay, _ = config.GetDuration("retry.wait_max", p.MaxDelay)
	return p
}

// GetMeta returns the meta.Meta stored in the root command's Metadata. If
// missing or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Root().Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// GetServices returns the Services for this invocation, building them on
// first use. Building is deferred to the action so flags given after the
// subcommand name are already parsed.
func GetServices(cmd *cli.Command) *Services {
	root := cmd.Root()
	if s, ok := root.Metadata["services"].(*Services); ok {
		return s
	}

	s := NewServices(cmd)
	if root.Metadata == nil {
		root.Metadata = map[string]any{}
	}
	root.Metadata["services"] = s
	return s
}

// Writer returns where command output goes.
func Writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// OutputOptions collects the output flags. Color is only honoured when w is a
// terminal.
func OutputOptions(cmd *cli.Command, w io.Writer) output.Options {
	delim, _ := config.GetString("filter_delim", output.DefaultFilterDelim)

	return output.Options{
		Format:      cmd.String("output"),
		Filter:      cmd.String("filter"),
		FilterDelim: delim,
		Sort:        cmd.String("sort"),
		Color:       cmd.Bool("color") && isTerminal(w),
		Titles:      cmd.Bool("titles"),
		Attrs:       attrs.Build(cmd.String("attrs")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// CommandBuilder constructs a subcommand with the shared output flags, usage
// examples and metadata wired in the same way for every command.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	ArgsUsage string
	Examples  [][2]string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	cmd := &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		ArgsUsage: cb.ArgsUsage,
		Metadata: map[string]any{
			"meta":     cb.Meta,
			"examples": cb.Examples,
		},
		Flags: append(append([]cli.Flag{
			&cli.BoolFlag{
				Name:        "examples",
				Usage:       "show usage examples",
				HideDefault: true,
			},
		}, cb.Flags...), NewGlobalFlags(cb.Name, cb.Meta.Config.Source)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
	}

	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Bool("examples") {
			output.DumpExamples(Writer(c), cb.Examples)
			return nil
		}
		log.WithField("ns", GetMeta(c).Namespace).Debugf("executing %s %v", cb.Name, c.Args().Slice())
		return cb.Action(ctx, c)
	}

	return cmd
}

// logMetrics writes the directory counters at debug level.
func logMetrics(reg prometheus.Gatherer) {
	if reg == nil {
		return
	}

	families, err := reg.Gather()
	if err != nil {
		log.WithError(err).Debug("failed to gather metrics")
		return
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := log.Fields{"metric": mf.GetName()}
			for _, lp := range m.GetLabel() {
				fields[lp.GetName()] = lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				fields["value"] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				fields["value"] = m.GetGauge().GetValue()
			}
			log.WithFields(fields).Debug("metric")
		}
	}
}
