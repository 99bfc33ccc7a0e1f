// Copyright (c) 2026 desokit Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/desotools/desokit/internal/cache"
	"github.com/desotools/desokit/internal/deso"
	"github.com/desotools/desokit/internal/graphql"
)

//go:generate mockgen -destination=mock_profile/mock_profile.go . AccountSource,EntrySource

// ErrNotFound is returned when no source knows the profile.
var ErrNotFound = errors.New("profile not found")

// AccountSource looks up accounts on the GraphQL service.
type AccountSource interface {
	AccountByPublicKey(ctx context.Context, publicKey string) (*graphql.Account, error)
	AccountByUsername(ctx context.Context, username string) (*graphql.Account, error)
}

// EntrySource looks up profiles on a node.
type EntrySource interface {
	SingleProfile(ctx context.Context, key string) (*deso.ProfileEntry, error)
}

// defCacheName is the cache file used when none is given.
const defCacheName = "profiles"

// Resolver resolves profiles by public key or username.  Resolved profiles
// are kept in memory and, if a cache manager is set, persisted with Save.
type Resolver struct {
	gql       AccountSource
	node      EntrySource
	cm        *cache.Manager
	cacheName string
	lg        *slog.Logger

	loadOnce sync.Once
	mu       sync.RWMutex
	byKey    map[string]Profile
	byName   map[string]string // lowercase username -> public key
	dirty    bool
}

// Option configures the Resolver.
type Option func(*Resolver)

// WithGraphQL sets the GraphQL source.
func WithGraphQL(src AccountSource) Option {
	return func(r *Resolver) { r.gql = src }
}

// WithNode sets the node fallback source.
func WithNode(src EntrySource) Option {
	return func(r *Resolver) { r.node = src }
}

// WithCache sets the cache manager and the cache name.
func WithCache(m *cache.Manager, name string) Option {
	return func(r *Resolver) {
		r.cm = m
		if name != "" {
			r.cacheName = name
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(r *Resolver) {
		if lg == nil {
			lg = slog.Default()
		}
		r.lg = lg
	}
}

// NewResolver creates a resolver.  Without sources it only answers from
// the cache.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		cacheName: defCacheName,
		lg:        slog.Default(),
		byKey:     make(map[string]Profile),
		byName:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the profile for key, which is a public key or a username
// with an optional leading "@".
func (r *Resolver) Resolve(ctx context.Context, key string) (Profile, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "@")
	if key == "" {
		return Profile{}, errors.New("empty profile key")
	}
	r.loadOnce.Do(r.loadCache)

	if p, ok := r.lookup(key); ok {
		return p, nil
	}
	p, err := r.fetch(ctx, key)
	if err != nil {
		return Profile{}, err
	}
	r.put(p)
	return p, nil
}

// ResolveMany resolves the public keys concurrently.  Keys that cannot be
// resolved are returned as profiles carrying only the public key.
func (r *Resolver) ResolveMany(ctx context.Context, keys []string) map[string]Profile {
	out := make(map[string]Profile, len(keys))
	var mu sync.Mutex
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for _, k := range keys {
		eg.Go(func() error {
			p, err := r.Resolve(ctx, k)
			if err != nil {
				r.lg.DebugContext(ctx, "profile not resolved", "key", k, "error", err)
				p = Profile{PublicKey: k}
			}
			mu.Lock()
			out[k] = p
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

// Put adds known profiles, e.g. the ones returned with message threads.
func (r *Resolver) Put(pp ...Profile) {
	r.loadOnce.Do(r.loadCache)
	for _, p := range pp {
		if p.PublicKey != "" {
			r.put(p)
		}
	}
}

// Save persists the resolved profiles to the cache, if it is set.
func (r *Resolver) Save() error {
	if r.cm == nil {
		return nil
	}
	r.mu.RLock()
	if !r.dirty {
		r.mu.RUnlock()
		return nil
	}
	pp := make([]Profile, 0, len(r.byKey))
	for _, p := range r.byKey {
		pp = append(pp, p)
	}
	r.mu.RUnlock()

	if err := cache.Save(r.cm, r.cacheName, pp); err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}
	r.mu.Lock()
	r.dirty = false
	r.mu.Unlock()
	return nil
}

func (r *Resolver) loadCache() {
	if r.cm == nil {
		return
	}
	pp, err := cache.Load[Profile](r.cm, r.cacheName)
	if err != nil {
		r.lg.Debug("profile cache not loaded", "error", err)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pp {
		r.index(p)
	}
}

func (r *Resolver) lookup(key string) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.byKey[key]; ok {
		return p, true
	}
	if pk, ok := r.byName[strings.ToLower(key)]; ok {
		p, ok := r.byKey[pk]
		return p, ok
	}
	return Profile{}, false
}

func (r *Resolver) put(p Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index(p)
	r.dirty = true
}

func (r *Resolver) index(p Profile) {
	r.byKey[p.PublicKey] = p
	if p.Username != "" {
		r.byName[strings.ToLower(p.Username)] = p.PublicKey
	}
}

// fetch asks GraphQL first, then the node.
func (r *Resolver) fetch(ctx context.Context, key string) (Profile, error) {
	var errs []error
	if r.gql != nil {
		var (
			acc *graphql.Account
			err error
		)
		if deso.IsPublicKey(key) {
			acc, err = r.gql.AccountByPublicKey(ctx, key)
		} else {
			acc, err = r.gql.AccountByUsername(ctx, key)
		}
		if err == nil {
			p := FromAccount(acc)
			if r.node != nil {
				r.enrich(ctx, &p)
			}
			return p, nil
		}
		r.lg.DebugContext(ctx, "graphql lookup failed, trying node", "key", key, "error", err)
		errs = append(errs, err)
	}
	if r.node != nil {
		e, err := r.node.SingleProfile(ctx, key)
		if err == nil {
			return FromEntry(e), nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 || allNotFound(errs) {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return Profile{}, errors.Join(errs...)
}

// enrich adds the verification flag, known only to the node.
func (r *Resolver) enrich(ctx context.Context, p *Profile) {
	e, err := r.node.SingleProfile(ctx, p.PublicKey)
	if err != nil {
		return
	}
	p.Verified = e.IsVerified
	if p.PictureURL == "" {
		if u, ok := BuildProfilePictureURL(e.LargeProfilePicURL()); ok {
			p.PictureURL = u
		}
	}
}

func allNotFound(errs []error) bool {
	for _, err := range errs {
		if !errors.Is(err, graphql.ErrNotFound) && !errors.Is(err, deso.ErrNotFound) {
			return false
		}
	}
	return true
}
