// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/staranto/promptxctl/internal/attrs"
	"github.com/staranto/promptxctl/internal/output"
	"github.com/staranto/promptxctl/internal/role"
)

// GlobalFlagsValidator checks the flags every subcommand depends on.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if err := URLValidator(c.String("url")); err != nil {
		return fmt.Errorf("--url %w", err)
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if s, ok := value.(string); ok && strings.HasPrefix(s, "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	s, _ := value.(string)
	if !slices.Contains(output.Formats, s) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

func SourceValidator(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := role.ParseSource(s); err != nil {
		return fmt.Errorf("must be one of %v", role.Sources)
	}
	return nil
}

func URLValidator(value any) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must be an http or https URL")
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}

func AttrsValidator(value any) error {
	s, _ := value.(string)
	var al attrs.AttrList
	return al.Set(s)
}

func NonNegativeValidator(value any) error {
	if d, ok := value.(time.Duration); ok && d < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
