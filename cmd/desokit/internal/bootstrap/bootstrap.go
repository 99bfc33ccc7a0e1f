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

// Package bootstrap creates the clients and stores shared by the commands
// from the loaded configuration.
package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/desotools/desokit/cmd/desokit/internal/cfg"
	"github.com/desotools/desokit/internal/cache"
	"github.com/desotools/desokit/internal/chatstore"
	"github.com/desotools/desokit/internal/deso"
	"github.com/desotools/desokit/internal/graphql"
	"github.com/desotools/desokit/internal/messaging"
	"github.com/desotools/desokit/internal/profile"
	"github.com/desotools/desokit/internal/reposearch"
)

// NodeClient returns the DeSo node client.
func NodeClient() (*deso.HTTPClient, error) {
	return deso.New(cfg.Config.Node.URL,
		deso.WithLimits(cfg.Config.Node.Limits),
		deso.WithLogger(cfg.Log),
	)
}

// GraphQLClient returns the GraphQL client.  It shares the node limits,
// except for the timeout.
func GraphQLClient() *graphql.Client {
	lim := cfg.Config.Node.Limits
	if cfg.Config.GraphQL.Timeout > 0 {
		lim.Timeout = cfg.Config.GraphQL.Timeout
	}
	return graphql.New(cfg.Config.GraphQL.URL,
		graphql.WithLimits(lim),
		graphql.WithLogger(cfg.Log),
	)
}

// CacheManager returns the profile cache manager.
func CacheManager() (*cache.Manager, error) {
	c := cfg.Config.Cache
	return cache.NewManager(cfg.CacheDir(),
		cache.WithMaxAge(c.MaxAge),
		cache.WithDisabled(c.Disabled),
		cache.WithNoEncryption(cfg.NoEncryption),
		cache.WithLogger(cfg.Log),
	)
}

// Resolver returns the profile resolver backed by GraphQL, the node and
// the profile cache.  A cache that cannot be initialised is skipped.
func Resolver(node *deso.HTTPClient) *profile.Resolver {
	opts := []profile.Option{
		profile.WithGraphQL(GraphQLClient()),
		profile.WithLogger(cfg.Log),
	}
	if node != nil {
		opts = append(opts, profile.WithNode(node))
	}
	if m, err := CacheManager(); err != nil {
		cfg.Log.Warn("profile cache disabled", "error", err)
	} else {
		opts = append(opts, profile.WithCache(m, ""))
	}
	return profile.NewResolver(opts...)
}

// ChatStore opens the chat store.  It returns nil if no database is
// configured.
func ChatStore(ctx context.Context) (*chatstore.Store, error) {
	dsn := cfg.Config.Chat.Database
	if dsn == "" {
		return nil, nil
	}
	if dsn != ":memory:" && !filepath.IsAbs(dsn) {
		dsn = filepath.Join(cfg.CacheDir(), dsn)
	}
	st, err := chatstore.Open(ctx, dsn, chatstore.WithLogger(cfg.Log))
	if err != nil {
		return nil, fmt.Errorf("chat store: %w", err)
	}
	return st, nil
}

// Chat is the messaging service with the resources it holds.
type Chat struct {
	*messaging.Service
	Store    *chatstore.Store
	Profiles *profile.Resolver
}

// Close saves the profile cache and closes the store.
func (c *Chat) Close() error {
	if err := c.Profiles.Save(); err != nil {
		cfg.Log.Warn("unable to save the profile cache", "error", err)
	}
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}

// ChatService creates the messaging service for publicKey.  If the service
// is disabled, the error wraps messaging.ErrDisabled.
func ChatService(ctx context.Context, publicKey string) (*Chat, error) {
	if publicKey == "" {
		publicKey = cfg.Config.Chat.PublicKey
	}
	node, err := NodeClient()
	if err != nil {
		return nil, err
	}
	st, err := ChatStore(ctx)
	if err != nil {
		return nil, err
	}
	res := Resolver(node)
	opts := []messaging.ServiceOption{
		messaging.WithProfiles(res),
		messaging.WithPageSize(cfg.Config.Chat.PageSize),
		messaging.WithLogger(cfg.Log),
	}
	if st != nil {
		opts = append(opts, messaging.WithStore(st))
	}
	c := &Chat{
		Service:  messaging.NewService(ctx, node, publicKey, opts...),
		Store:    st,
		Profiles: res,
	}
	if err := c.Err(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Searcher returns the repository searcher.
func Searcher() *reposearch.Searcher {
	s := cfg.Config.Search
	return reposearch.New(s.ReposDir,
		reposearch.WithDirectories(s.Directories...),
		reposearch.WithMaxExcerpt(s.MaxExcerpt),
		reposearch.WithLogger(cfg.Log),
	)
}
