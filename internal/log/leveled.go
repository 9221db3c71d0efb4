// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"

	"github.com/apex/log"
)

// Leveled adapts Apex to the key/value LeveledLogger interface expected by
// go-retryablehttp, so retry attempts land in the same output as everything
// else.
type Leveled struct{}

func (Leveled) Error(msg string, keysAndValues ...interface{}) {
	log.WithFields(pairs(keysAndValues)).Error(msg)
}

func (Leveled) Info(msg string, keysAndValues ...interface{}) {
	log.WithFields(pairs(keysAndValues)).Info(msg)
}

// Debug is where go-retryablehttp reports every attempt, which is noise at
// any level above debug.
func (Leveled) Debug(msg string, keysAndValues ...interface{}) {
	log.WithFields(pairs(keysAndValues)).Debug(msg)
}

func (Leveled) Warn(msg string, keysAndValues ...interface{}) {
	log.WithFields(pairs(keysAndValues)).Warn(msg)
}

func pairs(kv []interface{}) log.Fields {
	fields := make(log.Fields, len(kv)/2) //nolint:mnd
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	if len(kv)%2 == 1 {
		fields["extra"] = kv[len(kv)-1]
	}
	return fields
}
