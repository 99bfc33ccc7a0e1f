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

// Package guide holds the DeSo reference content served by the MCP tools:
// API categories, deso-protocol SDK topics, architecture explanations and
// code generation templates.  The content is embedded in the binary and
// looked up by normalised key.
package guide

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed content
var contentFS embed.FS

// ErrUnknownTopic is returned when the requested key is not in the table.
var ErrUnknownTopic = errors.New("unknown topic")

const mdExt = ".md"

// table is a set of markdown documents in one content directory, keyed by
// file name without extension.
type table struct {
	dir   string
	names []string
}

func mustTable(dir string) table {
	entries, err := fs.ReadDir(contentFS, dir)
	if err != nil {
		panic(fmt.Sprintf("guide: %s: %s", dir, err))
	}
	t := table{dir: dir}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != mdExt {
			continue
		}
		t.names = append(t.names, strings.TrimSuffix(e.Name(), mdExt))
	}
	slices.Sort(t.names)
	return t
}

func (t table) keys() []string {
	return slices.Clone(t.names)
}

func (t table) get(key string) (string, error) {
	k := Normalise(key)
	if !slices.Contains(t.names, k) {
		return "", fmt.Errorf("%w: %q", ErrUnknownTopic, key)
	}
	data, err := fs.ReadFile(contentFS, path.Join(t.dir, k+mdExt))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var (
	apiTable  = mustTable("content/api")
	jsTable   = mustTable("content/js")
	archTable = mustTable("content/arch")
)

// Normalise converts user input to a table key: lower case, trimmed, with
// underscores and spaces replaced by dashes.
func Normalise(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer("_", "-", " ", "-").Replace(k)
}

// APICategories returns the list of API categories.
func APICategories() []string { return apiTable.keys() }

// API returns the reference for the API category.
func API(category string) (string, error) { return apiTable.get(category) }

// APIEndpoint returns the section of the category document that describes
// endpoint.  The match is a case-insensitive substring match on the section
// heading, so both "submit-post" and "/api/v0/submit-post" work.
func APIEndpoint(category, endpoint string) (string, error) {
	doc, err := API(category)
	if err != nil {
		return "", err
	}
	want := strings.ToLower(strings.TrimSpace(endpoint))
	if want == "" {
		return doc, nil
	}
	for _, sec := range sections(doc) {
		heading, _, _ := strings.Cut(sec, "\n")
		if strings.Contains(strings.ToLower(heading), want) {
			return sec, nil
		}
	}
	return "", fmt.Errorf("%w: endpoint %q in %s", ErrUnknownTopic, endpoint, Normalise(category))
}

// sections splits a markdown document on level 3 headings.  Text before the
// first heading is dropped.
func sections(doc string) []string {
	var out []string
	parts := strings.Split(doc, "\n### ")
	for _, p := range parts[1:] {
		out = append(out, "### "+strings.TrimSpace(p))
	}
	return out
}

// JSTopics returns the list of deso-protocol guide topics.
func JSTopics() []string { return jsTable.keys() }

// JSGuide returns the deso-protocol guide for the topic.
func JSGuide(topic string) (string, error) { return jsTable.get(topic) }

// ArchitectureTopics returns the list of architecture topics.
func ArchitectureTopics() []string { return archTable.keys() }

// Architecture returns the explanation for the architecture topic.
func Architecture(topic string) (string, error) { return archTable.get(topic) }
