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

package reposearch

// In this file: the Searcher and the directory walk.

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultDirectories is the list of repository directories searched when
// none are configured.
var DefaultDirectories = []string{
	"docs",
	"core",
	"backend",
	"identity",
	"deso-js",
	"frontend",
	"graphql",
}

// skipDirs are dependency and build output directories that are never
// descended into.
var skipDirs = map[string]struct{}{
	"node_modules": {},
	"vendor":       {},
	"dist":         {},
	"build":        {},
	"target":       {},
	"__pycache__":  {},
}

// textExt is the set of recognised text and source file extensions.
var textExt = map[string]struct{}{
	".md": {}, ".mdx": {}, ".txt": {},
	".go": {}, ".js": {}, ".jsx": {}, ".ts": {}, ".tsx": {},
	".json": {}, ".yml": {}, ".yaml": {}, ".toml": {},
	".proto": {}, ".sol": {}, ".py": {}, ".sh": {}, ".rs": {},
	".graphql": {}, ".html": {}, ".css": {},
}

const (
	// DefaultMaxResults is the number of results callers should display.
	DefaultMaxResults = 10
	// DefaultMaxExcerpt is the excerpt length limit in characters.
	DefaultMaxExcerpt = 500
	// maxFileSize is the largest file that is scanned.
	maxFileSize = 1 << 20
)

// Result is a single search hit.
type Result struct {
	// Repo is the repository directory name.
	Repo string `json:"repo"`
	// Path is the slash separated path of the file relative to Repo.
	Path    string `json:"path"`
	Title   string `json:"title"`
	Score   int    `json:"score"`
	Excerpt string `json:"excerpt"`
}

// Searcher searches the repositories under a root directory.  The zero value
// is not usable, use New.
type Searcher struct {
	root       string
	dirs       []string
	maxExcerpt int
	lg         *slog.Logger
}

// Option configures the Searcher.
type Option func(*Searcher)

// WithDirectories sets the repository directories to search.  Empty list
// leaves the defaults in place.
func WithDirectories(dirs ...string) Option {
	return func(s *Searcher) {
		if len(dirs) > 0 {
			s.dirs = slices.Clone(dirs)
		}
	}
}

// WithMaxExcerpt sets the excerpt length limit.
func WithMaxExcerpt(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.maxExcerpt = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(s *Searcher) {
		if lg != nil {
			s.lg = lg
		}
	}
}

// New returns a Searcher over root, typically "repos".
func New(root string, opts ...Option) *Searcher {
	s := &Searcher{
		root:       root,
		dirs:       slices.Clone(DefaultDirectories),
		maxExcerpt: DefaultMaxExcerpt,
		lg:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the root directory.
func (s *Searcher) Root() string {
	return s.root
}

// Directories returns the configured repository directories.
func (s *Searcher) Directories() []string {
	return slices.Clone(s.dirs)
}

// Repositories returns the configured repository directories that exist on
// disk.
func (s *Searcher) Repositories() []string {
	var out []string
	for _, d := range s.dirs {
		if fi, err := os.Stat(filepath.Join(s.root, d)); err == nil && fi.IsDir() {
			out = append(out, d)
		}
	}
	return out
}

// Search searches all configured repositories.  Results are sorted by
// descending score; equal scores keep the walk order.  An empty query
// returns no results.
func (s *Searcher) Search(ctx context.Context, query string) ([]Result, error) {
	return s.search(ctx, query, s.dirs)
}

// SearchRepo is like Search but limited to one repository directory.  The
// repository does not have to be in the configured list.
func (s *Searcher) SearchRepo(ctx context.Context, repo, query string) ([]Result, error) {
	if !validName(repo) {
		return nil, ErrInvalidPath
	}
	return s.search(ctx, query, []string{repo})
}

func (s *Searcher) search(ctx context.Context, query string, dirs []string) ([]Result, error) {
	terms := Terms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	perDir := make([][]Result, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range dirs {
		g.Go(func() error {
			res, err := s.searchDir(gctx, d, terms)
			if err != nil {
				return err
			}
			perDir[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []Result
	for _, r := range perDir {
		results = append(results, r...)
	}
	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return results, nil
}

// searchDir walks one repository directory.  Unreadable entries and
// symbolic links are skipped, and files are read through an os.Root, so
// nothing outside the directory is searched.
func (s *Searcher) searchDir(ctx context.Context, repo string, terms []string) ([]Result, error) {
	root, err := os.OpenRoot(filepath.Join(s.root, repo))
	if err != nil {
		s.lg.DebugContext(ctx, "skipping repository", "repo", repo, "error", err)
		return nil, nil
	}
	defer root.Close()
	fsys := root.FS()

	var results []Result
	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			s.lg.DebugContext(ctx, "skipping unreadable entry", "repo", repo, "path", path, "error", err)
			if d != nil && d.IsDir() && path != "." {
				return fs.SkipDir
			}
			return nil
		}
		if path == "." {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if skip(d) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !isText(d.Name()) {
			return nil
		}
		data, err := readFile(fsys, path, maxFileSize)
		if err != nil {
			s.lg.DebugContext(ctx, "skipping file", "repo", repo, "path", path, "error", err)
			return nil
		}
		content := string(data)
		score := Score(content, terms)
		if score == 0 {
			return nil
		}
		results = append(results, Result{
			Repo:    repo,
			Path:    path,
			Title:   Title(content, d.Name()),
			Score:   score,
			Excerpt: Excerpt(content, terms, s.maxExcerpt),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// errTooLarge is returned by readFile for files over the size limit.
var errTooLarge = errors.New("file too large")

// readFile reads a regular file from fsys that is at most limit bytes.
func readFile(fsys fs.FS, name string, limit int64) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: not a regular file", name)
	}
	if fi.Size() > limit {
		return nil, errTooLarge
	}
	return io.ReadAll(io.LimitReader(f, limit))
}

// skip reports whether the entry is hidden or a dependency directory.
func skip(d fs.DirEntry) bool {
	name := d.Name()
	if strings.HasPrefix(name, ".") {
		return true
	}
	if d.IsDir() {
		_, ok := skipDirs[name]
		return ok
	}
	return false
}

func isText(name string) bool {
	_, ok := textExt[strings.ToLower(filepath.Ext(name))]
	return ok
}
