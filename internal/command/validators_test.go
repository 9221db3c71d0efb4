// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator FlagValidatorType
		value     any
		wantErr   bool
	}{
		{name: "jammed flag", validator: JammedFlagValidator, value: "--output", wantErr: true},
		{name: "not jammed", validator: JammedFlagValidator, value: "-name"},
		{name: "output text", validator: OutputValidator, value: "text"},
		{name: "output yaml", validator: OutputValidator, value: "yaml"},
		{name: "output raw", validator: OutputValidator, value: "raw", wantErr: true},
		{name: "source empty", validator: SourceValidator, value: ""},
		{name: "source user", validator: SourceValidator, value: "user"},
		{name: "source unknown", validator: SourceValidator, value: "team", wantErr: true},
		{name: "url http", validator: URLValidator, value: "http://localhost:8000"},
		{name: "url https path", validator: URLValidator, value: "https://example.com/api"},
		{name: "url no scheme", validator: URLValidator, value: "localhost:8000", wantErr: true},
		{name: "url no host", validator: URLValidator, value: "http://", wantErr: true},
		{name: "url empty", validator: URLValidator, value: "", wantErr: true},
		{name: "attrs", validator: AttrsValidator, value: "id,name::u,!source"},
		{name: "attrs empty key", validator: AttrsValidator, value: "id,,name", wantErr: true},
		{name: "duration positive", validator: NonNegativeValidator, value: time.Second},
		{name: "duration negative", validator: NonNegativeValidator, value: -time.Second, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FlagValidators(tt.value, tt.validator)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFlagValidators_StopsAtFirstError(t *testing.T) {
	err := FlagValidators("--x", JammedFlagValidator, URLValidator)
	assert.EqualError(t, err, "must not begin with '--'")
}
