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

// Package profile contains the profile lookup command.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/desotools/desokit/cmd/desokit/internal/bootstrap"
	"github.com/desotools/desokit/cmd/desokit/internal/cfg"
	"github.com/desotools/desokit/cmd/desokit/internal/golang/base"
	"github.com/desotools/desokit/internal/profile"
)

// CmdProfile is the "desokit profile" command.
var CmdProfile = &base.Command{
	UsageLine: "desokit profile [flags] <public key|@username>...",
	Short:     "look up DeSo profiles",
	Long: `
# Profile Command

Profile looks up each public key or username on the DeSo GraphQL service,
falling back to the node API.  Resolved profiles are cached locally (see
"cache" section of the config file).

Use -picture to print the profile picture URLs instead.
`,
	PrintFlags:    true,
	RequireConfig: true,
}

var picture bool

func init() {
	CmdProfile.Run = runProfile
	CmdProfile.Flag.BoolVar(&picture, "picture", false, "print the profile picture URLs")
	cfg.AddFormatFlag(&CmdProfile.Flag)
}

// resolver resolves profiles.
type resolver interface {
	Resolve(ctx context.Context, key string) (profile.Profile, error)
}

func runProfile(ctx context.Context, cmd *base.Command, args []string) error {
	if len(args) == 0 {
		base.SetExitStatus(base.SInvalidParameters)
		return errors.New("at least one public key or username is required")
	}
	f, err := cfg.Formatter()
	if err != nil {
		base.SetExitStatus(base.SInvalidParameters)
		return err
	}
	node, err := bootstrap.NodeClient()
	if err != nil {
		base.SetExitStatus(base.SInitializationError)
		return err
	}
	r := bootstrap.Resolver(node)
	defer func() {
		if err := r.Save(); err != nil {
			cfg.Log.WarnContext(ctx, "unable to save the profile cache", "error", err)
		}
	}()

	pp, err := lookup(ctx, r, args)
	if err != nil {
		return err
	}
	if picture {
		return printPictures(os.Stdout, cfg.Config.Node.URL, pp)
	}
	return f.Profiles(ctx, os.Stdout, pp)
}

// lookup resolves all keys.  A key that is not found is reported and
// skipped, any other error stops the lookup.
func lookup(ctx context.Context, r resolver, keys []string) ([]profile.Profile, error) {
	pp := make([]profile.Profile, 0, len(keys))
	for _, k := range keys {
		p, err := r.Resolve(ctx, k)
		if err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				base.SetExitStatus(base.SUserError)
				cfg.Log.WarnContext(ctx, "profile not found", "key", k)
				continue
			}
			base.SetExitStatus(base.SApplicationError)
			return nil, fmt.Errorf("profile %s: %w", k, err)
		}
		pp = append(pp, p)
	}
	if len(pp) == 0 {
		return nil, profile.ErrNotFound
	}
	return pp, nil
}

func printPictures(w io.Writer, nodeURL string, pp []profile.Profile) error {
	for _, p := range pp {
		u, ok := profile.BuildProfilePictureURL(p.PictureURL)
		if !ok {
			u = profile.PictureURL(nodeURL, p.PublicKey)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", p.Handle(), u); err != nil {
			return err
		}
	}
	return nil
}
