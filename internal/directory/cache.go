// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/staranto/promptxctl/internal/promptx"
	"github.com/staranto/promptxctl/internal/role"
	"github.com/staranto/promptxctl/internal/transport"
)

// StalenessThreshold is how long a fetched role set is served without asking
// the service again.
const StalenessThreshold = 5 * time.Minute

// DefaultFetchError is the message used when a failure carries no better one.
const DefaultFetchError = "failed to fetch role list"

const fetchKey = "roles"

// Lister is the part of promptx.Client the cache needs.
type Lister interface {
	ListRoles(ctx context.Context) (*promptx.Envelope[[]role.Role], error)
}

// State is a point-in-time copy of the directory.
type State struct {
	Roles  []role.Role
	Groups []role.Group
	// Loading is true while a fetch is in flight.
	Loading bool
	// Error holds the message of the last failed fetch. It is cleared when a
	// new fetch starts.
	Error string
	// LastFetch is zero until the first successful fetch.
	LastFetch time.Time
}

// FetchError is returned by Fetch. Its text is the same message stored in
// State.Error.
type FetchError struct {
	Message string
	Err     error
}

func (e *FetchError) Error() string { return e.Message }

func (e *FetchError) Unwrap() error { return e.Err }

// Cache owns the role directory. It is safe for concurrent use; concurrent
// fetches share a single request.
type Cache struct {
	lister  Lister
	now     func() time.Time
	metrics *metrics
	group   singleflight.Group

	mu    sync.RWMutex
	state State
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithRegisterer registers the cache's metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Cache) { c.metrics = newMetrics(reg) }
}

// New returns an empty directory backed by l.
func New(l Lister, opts ...Option) *Cache {
	c := &Cache{lister: l, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = newMetrics(nil)
	}
	return c
}

// NeedsRefresh reports whether the directory was never fetched or its last
// successful fetch is older than StalenessThreshold.
func (c *Cache) NeedsRefresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.needsRefresh()
}

func (c *Cache) needsRefresh() bool {
	if c.state.LastFetch.IsZero() {
		return true
	}
	return c.now().Sub(c.state.LastFetch) > StalenessThreshold
}

// Fetch loads the role set from the service unless the cached one is still
// fresh and force is false. A caller whose ctx ends stops waiting; the shared
// request is detached from every caller's cancellation and keeps running for
// the others.
func (c *Cache) Fetch(ctx context.Context, force bool) error {
	if !force && !c.NeedsRefresh() {
		c.metrics.fetches.WithLabelValues(outcomeHit).Inc()
		log.Debug("role directory is fresh")
		return nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(fetchKey, func() (interface{}, error) {
		return nil, c.load(shared)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.metrics.fetches.WithLabelValues(outcomeShared).Inc()
		}
		return res.Err
	}
}

// load runs one fetch attempt and applies its outcome.
func (c *Cache) load(ctx context.Context) error {
	c.mu.Lock()
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	roles, err := c.list(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false

	if err != nil {
		msg := failureMessage(err)
		c.state.Error = msg
		c.metrics.fetches.WithLabelValues(outcomeFailure).Inc()
		log.WithError(err).Warn("role directory fetch failed")
		return &FetchError{Message: msg, Err: err}
	}

	c.state.Roles = roles
	c.state.Groups = role.GroupBySource(roles)
	c.state.LastFetch = c.now()
	c.metrics.fetches.WithLabelValues(outcomeSuccess).Inc()
	c.metrics.roles.Set(float64(len(roles)))
	log.Debugf("role directory holds %d role(s) in %d group(s)", len(roles), len(c.state.Groups))
	return nil
}

// failureMessage keeps decode details out of State.Error.
func failureMessage(err error) string {
	if errors.Is(err, transport.ErrMalformed) || errors.Is(err, promptx.ErrEmptyResponse) {
		return DefaultFetchError
	}
	return transport.Message(err, DefaultFetchError)
}

// list calls the service and unwraps both envelope levels.
func (c *Cache) list(ctx context.Context) ([]role.Role, error) {
	env, err := c.lister.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	result, err := env.Payload()
	if err != nil {
		return nil, err
	}
	if result.Code == nil {
		return nil, errors.New(DefaultFetchError)
	}
	if !result.OK() {
		if result.Msg != "" {
			return nil, errors.New(result.Msg)
		}
		return nil, errors.New(DefaultFetchError)
	}
	// code 0 without data is an empty directory, not a failure.
	return role.Normalize(result.Data), nil
}

// Snapshot returns a copy of the current state.
func (c *Cache) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	s.Roles = cloneRoles(c.state.Roles)
	s.Groups = cloneGroups(c.state.Groups)
	return s
}

// Roles returns the current role set.
func (c *Cache) Roles() []role.Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneRoles(c.state.Roles)
}

// Groups returns the current grouping.
func (c *Cache) Groups() []role.Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneGroups(c.state.Groups)
}

// Loading reports whether a fetch is in flight.
func (c *Cache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Loading
}

// Err returns the message of the last failed fetch, or "".
func (c *Cache) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Error
}

// LastFetchTime returns the time of the last successful fetch.
func (c *Cache) LastFetchTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.LastFetch
}

// SystemRoles returns a copy of the system roles.
func (c *Cache) SystemRoles() []role.Role {
	return c.bySource(role.System)
}

// ProjectRoles returns a copy of the project roles.
func (c *Cache) ProjectRoles() []role.Role {
	return c.bySource(role.Project)
}

// UserRoles returns a copy of the user roles.
func (c *Cache) UserRoles() []role.Role {
	return c.bySource(role.User)
}

// RoleByID looks a role up in the current set.
func (c *Cache) RoleByID(id string) (role.Role, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return role.Find(c.state.Roles, id)
}

func (c *Cache) bySource(s role.Source) []role.Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return role.FilterBySource(c.state.Roles, s)
}

func cloneRoles(in []role.Role) []role.Role {
	if in == nil {
		return nil
	}
	return append([]role.Role(nil), in...)
}

func cloneGroups(in []role.Group) []role.Group {
	if in == nil {
		return nil
	}
	out := make([]role.Group, len(in))
	for i, g := range in {
		g.Roles = cloneRoles(g.Roles)
		out[i] = g
	}
	return out
}
