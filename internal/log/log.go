// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// PROMPTXCTL_LOG env variable.
func InitLogger() {
	level, err := log.ParseLevel(strings.ToLower(os.Getenv("PROMPTXCTL_LOG")))
	if err != nil {
		level = log.ErrorLevel
	}
	log.SetHandler(&CustomHandler{Writer: os.Stderr})
	log.SetLevel(level)
}

// CustomHandler formats log messages on a single line. Stdout is left to
// command output, so the default destination is stderr.
type CustomHandler struct {
	Writer io.Writer
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	w := h.Writer
	if w == nil {
		w = os.Stderr
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())
	fmt.Fprintf(w, "%s %.1s %s%s\n", timestamp, level, e.Message, formatFields(e.Fields))
	return nil
}

func formatFields(fields log.Fields) string {
	if len(fields) == 0 {
		return ""
	}
	names := fields.Names()
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, fields.Get(name))
	}
	return b.String()
}
