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

// In this file: reading a single document and building its outline.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	// ErrNotFound is returned when the document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidPath is returned for paths that escape the repository tree.
	ErrInvalidPath = errors.New("invalid path")
)

// MaxDocumentSize is the number of bytes of a document returned by Read.
const MaxDocumentSize = 200 << 10

// Document is a file read from a repository.
type Document struct {
	Repo    string `json:"repo"`
	Path    string `json:"path"`
	Title   string `json:"title"`
	Content string `json:"content"`
	// Size is the size of the file on disk.
	Size int64 `json:"size"`
	// Truncated is set when Content holds only the first MaxDocumentSize
	// bytes.
	Truncated bool `json:"truncated,omitempty"`
}

// validName reports whether repo is a single, non-hidden path element.
func validName(repo string) bool {
	return repo != "" &&
		filepath.IsLocal(repo) &&
		!strings.ContainsAny(repo, `/\`) &&
		!strings.HasPrefix(repo, ".")
}

// Read returns the document at the slash separated path within repo.
func (s *Searcher) Read(ctx context.Context, repo, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validName(repo) {
		return nil, fmt.Errorf("%w: repository %q", ErrInvalidPath, repo)
	}
	rel := filepath.FromSlash(strings.TrimPrefix(path, "/"))
	if rel == "" || !filepath.IsLocal(rel) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	notFound := fmt.Errorf("%w: %s/%s", ErrNotFound, repo, filepath.ToSlash(rel))

	root, err := os.OpenRoot(filepath.Join(s.root, repo))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound
		}
		return nil, err
	}
	defer root.Close()

	// root.Open refuses paths and symbolic links that leave the repository.
	f, err := root.Open(rel)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, notFound
		case errors.Is(err, fs.ErrPermission):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPath, path, err)
		}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s/%s is a directory", ErrNotFound, repo, filepath.ToSlash(rel))
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %q is not a regular file", ErrInvalidPath, path)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", repo, filepath.ToSlash(rel), err)
	}
	doc := &Document{
		Repo: repo,
		Path: filepath.ToSlash(rel),
		Size: fi.Size(),
	}
	if len(data) > MaxDocumentSize {
		data = data[:MaxDocumentSize]
		doc.Truncated = true
	}
	doc.Content = string(data)
	doc.Title = Title(doc.Content, fi.Name())
	return doc, nil
}

// Heading is a markdown heading.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Outline returns the headings of a markdown document in order.
func Outline(content string) []Heading {
	src := []byte(content)
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var hh []Heading
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		hh = append(hh, Heading{Level: h.Level, Text: inlineText(h, src)})
		return ast.WalkSkipChildren, nil
	})
	return hh
}

// inlineText concatenates the text segments under n.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}
