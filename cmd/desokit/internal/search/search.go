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

// Package search contains the repository search and document commands.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desotools/desokit/cmd/desokit/internal/bootstrap"
	"github.com/desotools/desokit/cmd/desokit/internal/cfg"
	"github.com/desotools/desokit/cmd/desokit/internal/golang/base"
	"github.com/desotools/desokit/internal/format"
	"github.com/desotools/desokit/internal/reposearch"
)

// CmdSearch is the "desokit search" command.
var CmdSearch = &base.Command{
	UsageLine: "desokit search [flags] <query>",
	Short:     "search the local documentation repositories",
	Long: `
# Search Command

Search looks for the query terms in the markdown and source files of the
repositories under the repos directory (see "search.repos_dir" in the config
file, or REPOS_DIR environment variable).

Each file gets one point per occurrence of every term, the file name and the
title are weighted higher.  Results are sorted by descending score.

Example:

    desokit search -repo docs submit transaction
`,
	PrintFlags:    true,
	RequireConfig: true,
}

// CmdDoc is the "desokit doc" command.
var CmdDoc = &base.Command{
	UsageLine: "desokit doc [flags] <repo> <path>",
	Short:     "print a document from the documentation repositories",
	Long: `
# Doc Command

Doc prints the file at the slash-separated path within the repository
directory.  Use -outline to print only the heading outline of a markdown
document.
`,
	PrintFlags:    true,
	RequireConfig: true,
}

var (
	repo    string
	limit   int
	outline bool
)

func init() {
	CmdSearch.Run = runSearch
	CmdSearch.Flag.StringVar(&repo, "repo", "", "search only the `repository` directory")
	CmdSearch.Flag.IntVar(&limit, "n", 0, "maximum `number` of results (default: from config)")
	cfg.AddFormatFlag(&CmdSearch.Flag)

	CmdDoc.Run = runDoc
	CmdDoc.Flag.BoolVar(&outline, "outline", false, "print the heading outline only")
	cfg.AddFormatFlag(&CmdDoc.Flag)
}

// searcher is the subset of the repository searcher used by the commands.
type searcher interface {
	Search(ctx context.Context, query string) ([]reposearch.Result, error)
	SearchRepo(ctx context.Context, repo, query string) ([]reposearch.Result, error)
	Read(ctx context.Context, repo, path string) (*reposearch.Document, error)
}

func runSearch(ctx context.Context, cmd *base.Command, args []string) error {
	if len(args) == 0 {
		base.SetExitStatus(base.SInvalidParameters)
		return errors.New("search query is required")
	}
	f, err := cfg.Formatter()
	if err != nil {
		base.SetExitStatus(base.SInvalidParameters)
		return err
	}
	n := limit
	if n <= 0 {
		n = cfg.Config.Search.MaxResults
	}
	return search(ctx, os.Stdout, f, bootstrap.Searcher(), repo, strings.Join(args, " "), n)
}

func search(ctx context.Context, w io.Writer, f format.Formatter, s searcher, repo, query string, n int) error {
	var (
		res []reposearch.Result
		err error
	)
	if repo != "" {
		res, err = s.SearchRepo(ctx, repo, query)
	} else {
		res, err = s.Search(ctx, query)
	}
	if err != nil {
		if errors.Is(err, reposearch.ErrInvalidPath) {
			base.SetExitStatus(base.SInvalidParameters)
		} else {
			base.SetExitStatus(base.SApplicationError)
		}
		return fmt.Errorf("search: %w", err)
	}
	if n > 0 && len(res) > n {
		res = res[:n]
	}
	cfg.Log.DebugContext(ctx, "search complete", "query", query, "results", len(res))
	return f.Results(ctx, w, res)
}

func runDoc(ctx context.Context, cmd *base.Command, args []string) error {
	if len(args) != 2 {
		base.SetExitStatus(base.SInvalidParameters)
		return errors.New("repository and path are required")
	}
	f, err := cfg.Formatter()
	if err != nil {
		base.SetExitStatus(base.SInvalidParameters)
		return err
	}
	return doc(ctx, os.Stdout, f, bootstrap.Searcher(), args[0], args[1], outline)
}

func doc(ctx context.Context, w io.Writer, f format.Formatter, s searcher, repo, path string, outline bool) error {
	d, err := s.Read(ctx, repo, path)
	if err != nil {
		switch {
		case errors.Is(err, reposearch.ErrNotFound):
			base.SetExitStatus(base.SUserError)
		case errors.Is(err, reposearch.ErrInvalidPath):
			base.SetExitStatus(base.SInvalidParameters)
		default:
			base.SetExitStatus(base.SApplicationError)
		}
		return err
	}
	if outline {
		var buf strings.Builder
		for _, h := range reposearch.Outline(d.Content) {
			fmt.Fprintf(&buf, "%s- %s\n", strings.Repeat("  ", max(h.Level-1, 0)), h.Text)
		}
		d.Content = buf.String()
	}
	return f.Document(ctx, w, d)
}
