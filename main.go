// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/apex/log"

	"github.com/staranto/promptxctl/internal/command"
	"github.com/staranto/promptxctl/internal/config"
	mylog "github.com/staranto/promptxctl/internal/log"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments expands an argument set from the config file. "@name"
// selects <command>.<name>; without one, <command>.defaults is used if
// present. Set arguments go right after the command so explicit arguments
// override them.
func mangleArguments(args []string) []string {
	// Short-circuit for --help/-h and flags in the command position.
	if strings.HasPrefix(args[1], "-") {
		return args
	}
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return append(args[:2:2], "--help")
		}
	}

	set := "defaults"
	rest := make([]string, 0, len(args)-2)
	for _, a := range args[2:] {
		if strings.HasPrefix(a, "@") && len(a) > 1 {
			set = a[1:]
			continue
		}
		rest = append(rest, a)
	}

	// The config file is loaded again by InitApp with the command namespace.
	if _, err := config.Load(); err != nil {
		log.WithError(err).Debug("no config file for argument sets")
	}

	setArgs, _ := config.GetStringSlice(args[1] + "." + set)

	working := append([]string{}, args[:2]...)
	for _, arg := range setArgs {
		working = append(working, strings.Fields(arg)...)
	}
	working = append(working, rest...)

	log.Debugf("set=%s, args=%v", set, working)
	return working
}
