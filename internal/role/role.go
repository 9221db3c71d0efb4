// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package role

import (
	"errors"
	"fmt"
	"strings"
)

// Source is the scope a role was defined in.
type Source string

const (
	System  Source = "system"
	Project Source = "project"
	User    Source = "user"
)

// Protocol is the resource type reported for every role.
const Protocol = "role"

// Sources lists every valid source in display order.
var Sources = []Source{System, Project, User}

var labels = map[Source]string{
	System:  "📦 系统角色",
	Project: "🏢 项目角色",
	User:    "👤 用户角色",
}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case System, Project, User:
		return true
	}
	return false
}

// Label returns the display label of the group holding roles from s.
func (s Source) Label() string {
	return labels[s]
}

func (s Source) String() string {
	return string(s)
}

// ParseSource converts a user supplied string into a Source. Matching is case
// insensitive.
func ParseSource(v string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("%q must be one of %v: %w", v, Sources, ErrUnknownSource)
	}
	return s, nil
}

// Role is a single agent persona definition.
type Role struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Source      Source `json:"source" yaml:"source"`
	Protocol    string `json:"protocol" yaml:"protocol"`
	Reference   string `json:"reference,omitempty" yaml:"reference,omitempty"`
}

// GeneratePromptRequest is the body sent when asking the service for a system
// prompt. It is not stored anywhere.
type GeneratePromptRequest struct {
	RoleID          string `json:"roleId"`
	RoleName        string `json:"roleName"`
	RoleDescription string `json:"roleDescription"`
}

var (
	ErrUnknownSource  = errors.New("unknown role source")
	ErrInvalidRequest = errors.New("invalid generate prompt request")
)

// NewGeneratePromptRequest builds the request for r.
func NewGeneratePromptRequest(r Role) GeneratePromptRequest {
	return GeneratePromptRequest{
		RoleID:          r.ID,
		RoleName:        r.Name,
		RoleDescription: r.Description,
	}
}

// Validate rejects requests with a blank field. The service refuses those, so
// there is no point in sending them.
func (r GeneratePromptRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.RoleID) == "" {
		missing = append(missing, "roleId")
	}
	if strings.TrimSpace(r.RoleName) == "" {
		missing = append(missing, "roleName")
	}
	if strings.TrimSpace(r.RoleDescription) == "" {
		missing = append(missing, "roleDescription")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s must not be blank: %w", strings.Join(missing, ", "), ErrInvalidRequest)
	}
	return nil
}
