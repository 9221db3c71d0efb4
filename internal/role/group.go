// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package role

import (
	"github.com/apex/log"
)

// Group is a derived view of the roles sharing one Source.
type Group struct {
	Label  string `json:"label" yaml:"label"`
	Source Source `json:"source" yaml:"source"`
	Roles  []Role `json:"roles" yaml:"roles"`
}

// GroupBySource partitions roles into at most one group per source, ordered
// system, project, user regardless of input order. Groups without roles are
// omitted and input order is preserved inside each group. Roles with an
// unknown source belong to no group.
func GroupBySource(roles []Role) []Group {
	buckets := make(map[Source][]Role, len(Sources))
	for _, r := range roles {
		if !r.Source.Valid() {
			continue
		}
		buckets[r.Source] = append(buckets[r.Source], r)
	}

	groups := make([]Group, 0, len(Sources))
	for _, s := range Sources {
		if len(buckets[s]) == 0 {
			continue
		}
		groups = append(groups, Group{
			Label:  s.Label(),
			Source: s,
			Roles:  buckets[s],
		})
	}
	return groups
}

// FilterBySource returns the roles whose source is s, in input order.
func FilterBySource(roles []Role, s Source) []Role {
	var out []Role
	for _, r := range roles {
		if r.Source == s {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the first role with the given id.
func Find(roles []Role, id string) (Role, bool) {
	for _, r := range roles {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}

// Normalize drops roles that break the directory invariants: an unknown source
// or an id already seen earlier in the slice. The first occurrence of an id
// wins.
func Normalize(roles []Role) []Role {
	seen := make(map[string]struct{}, len(roles))
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		if !r.Source.Valid() {
			log.WithField("id", r.ID).Warnf("dropping role with unknown source %q", r.Source)
			continue
		}
		if _, dup := seen[r.ID]; dup {
			log.WithField("id", r.ID).Warn("dropping duplicate role")
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}
