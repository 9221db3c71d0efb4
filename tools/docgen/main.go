// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/promptxctl/internal/command"
)

// Doc generator:
// - Walks the promptxctl command tree
// - Generates:
//   - docs/commands/promptxctl-<cmd>.md from usage, flags and examples
//   - docs/man/share/man1/promptxctl-<cmd>.1 via md2man
//   - docs/tldr/promptxctl-<cmd>.md from the command examples

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	for _, dir := range []string{commandsDir, manOutDir, tldrOutDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatalf("creating output dir %s: %v", dir, err)
		}
	}

	app, err := command.InitApp(context.Background(), []string{"promptxctl"})
	if err != nil {
		fatalf("building command tree: %v", err)
	}

	var processed int
	for _, cmd := range app.Commands {
		if cmd.Hidden {
			continue
		}

		md := buildMarkdown(app, cmd)
		mdPath := filepath.Join(commandsDir, fmt.Sprintf("promptxctl-%s.md", cmd.Name))
		if err := writeFileIfChanged(mdPath, []byte(md), writeOnlyIfChanged); err != nil {
			fatalf("writing markdown for %s: %v", cmd.Name, err)
		}

		manPath := filepath.Join(manOutDir, fmt.Sprintf("promptxctl-%s.1", cmd.Name))
		if err := writeFileIfChanged(manPath, md2man.Render([]byte(md)), writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", cmd.Name, err)
		}

		tldr := buildTLDR(cmd.Name, cmd.Usage, examplesOf(cmd))
		tldrPath := filepath.Join(tldrOutDir, fmt.Sprintf("promptxctl-%s.md", cmd.Name))
		if err := writeFileIfChanged(tldrPath, []byte(tldr), writeOnlyIfChanged); err != nil {
			fatalf("writing TLDR for %s: %v", cmd.Name, err)
		}

		processed++
	}

	if processed == 0 {
		fatalf("no commands found")
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

type example struct {
	Desc string
	Cmd  string
}

func examplesOf(cmd *cli.Command) []example {
	raw, _ := cmd.Metadata["examples"].([][2]string)
	exs := make([]example, 0, len(raw))
	for _, ex := range raw {
		exs = append(exs, example{Cmd: ex[0], Desc: ex[1]})
	}
	return exs
}

type usager interface {
	GetUsage() string
}

// buildMarkdown renders a command page in the md2man dialect. Flags of the
// root command are listed as global options.
func buildMarkdown(root, cmd *cli.Command) string {
	var b strings.Builder

	title := fmt.Sprintf("promptxctl-%s", cmd.Name)
	b.WriteString(fmt.Sprintf("%s 1 \"\" \"promptxctl\" \"promptxctl manual\"\n", strings.ToUpper(title)))
	b.WriteString(strings.Repeat("=", len(title)+4) + "\n\n")

	b.WriteString("# NAME\n\n")
	b.WriteString(fmt.Sprintf("%s - %s\n\n", title, cmd.Usage))

	b.WriteString("# SYNOPSIS\n\n")
	usage := cmd.UsageText
	if usage == "" {
		usage = fmt.Sprintf("promptxctl %s [options]", cmd.Name)
	}
	b.WriteString("`" + usage + "`\n\n")

	b.WriteString("# OPTIONS\n\n")
	writeFlags(&b, cmd.Flags)

	if len(root.Flags) > 0 {
		b.WriteString("# GLOBAL OPTIONS\n\n")
		writeFlags(&b, root.Flags)
	}

	if exs := examplesOf(cmd); len(exs) > 0 {
		b.WriteString("# EXAMPLES\n\n")
		for _, ex := range exs {
			b.WriteString(fmt.Sprintf("%s:\n\n    %s\n\n", ex.Desc, sanitizeCommand(ex.Cmd)))
		}
	}

	return b.String()
}

func writeFlags(b *strings.Builder, flags []cli.Flag) {
	for _, f := range flags {
		names := f.Names()
		parts := make([]string, 0, len(names))
		for _, n := range names {
			if len(n) == 1 {
				parts = append(parts, "-"+n)
			} else {
				parts = append(parts, "--"+n)
			}
		}

		usage := ""
		if u, ok := f.(usager); ok {
			usage = u.GetUsage()
		}
		b.WriteString(fmt.Sprintf("**%s**\n  %s\n\n", strings.Join(parts, ", "), usage))
	}
}

func buildTLDR(cmd, short string, exs []example) string {
	var b strings.Builder
	b.WriteString("# promptxctl-" + cmd + "\n\n")
	if short != "" {
		b.WriteString("> " + strings.ToUpper(short[:1]) + short[1:] + ".\n")
	} else {
		b.WriteString("> promptxctl " + cmd + "\n")
	}
	b.WriteString("> More information: https://github.com/staranto/promptxctl.\n\n")

	if len(exs) == 0 {
		b.WriteString("- Show help for the command:\n\n")
		b.WriteString("`promptxctl " + cmd + " --help`\n")
		b.WriteString("\n")
		return b.String()
	}

	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		desc := strings.TrimSpace(ex.Desc)
		if desc != "" {
			desc = strings.ToUpper(desc[:1]) + desc[1:]
		}
		b.WriteString("- " + desc + ":\n\n")
		b.WriteString("`" + sanitizeCommand(ex.Cmd) + "`\n")
	}
	return b.String()
}

func sanitizeCommand(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
