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

package mcp

// In this file: repository search and document tools.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/desotools/desokit/internal/reposearch"
)

const (
	minLimit = 1
	maxLimit = 50
)

// ─── repository_search ────────────────────────────────────────────────────────

func (s *Server) toolRepositorySearch() mcpsrv.ServerTool {
	tool := mcplib.NewTool("repository_search",
		mcplib.WithDescription(`Full-text search over the local DeSo repositories (documentation and source).

Every query term is matched case-insensitively; files are ranked by the total
number of occurrences.  Each result carries the document title, its location
(repo/path) and an excerpt with the matches in bold.  Use
read_repository_document to read a whole file.`),
		mcplib.WithString("query",
			mcplib.Description("Search terms separated by spaces."),
			mcplib.Required(),
		),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of results to return (1–50, default 10)."),
		),
		mcplib.WithString("repo",
			mcplib.Description("Optional repository directory to limit the search to, e.g. \"docs\"."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithIdempotentHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleRepositorySearch}
}

func (s *Server) handleRepositorySearch(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	query, _ := stringArg(req, "query")
	if strings.TrimSpace(query) == "" {
		return resultErr(errors.New("repository_search: query is required")), nil
	}
	limit := intArg(req, "limit", s.maxResults)
	limit = max(min(limit, maxLimit), minLimit)
	repo, _ := stringArg(req, "repo")

	var (
		results []reposearch.Result
		err     error
	)
	if repo = strings.TrimSpace(repo); repo != "" {
		results, err = s.search.SearchRepo(ctx, repo, query)
	} else {
		results, err = s.search.Search(ctx, query)
	}
	if err != nil {
		if errors.Is(err, reposearch.ErrInvalidPath) {
			return resultText(fmt.Sprintf("Invalid repository name %q.", repo)), nil
		}
		s.logger.WarnContext(ctx, "repository_search failed", "query", query, "error", err)
		return resultErr(fmt.Errorf("repository_search: %w", err)), nil
	}
	if len(results) == 0 {
		return resultText(fmt.Sprintf("No results found for %q.", query)), nil
	}
	return resultText(formatResults(query, results, limit)), nil
}

// formatResults renders at most limit results as markdown.
func formatResults(query string, results []reposearch.Result, limit int) string {
	shown := results[:min(limit, len(results))]
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d results for %q (showing %d):\n", len(results), query, len(shown))
	for i, r := range shown {
		fmt.Fprintf(&b, "\n### %d. %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "`%s/%s` (score: %d)\n\n", r.Repo, r.Path, r.Score)
		if r.Excerpt != "" {
			fmt.Fprintf(&b, "%s\n", r.Excerpt)
		}
	}
	return b.String()
}

// ─── read_repository_document ─────────────────────────────────────────────────

func (s *Server) toolReadDocument() mcpsrv.ServerTool {
	tool := mcplib.NewTool("read_repository_document",
		mcplib.WithDescription(`Read a document from the local DeSo repositories.

Use the repo and path values returned by repository_search.  Large files are
truncated.  Set outline to true to get only the markdown headings.`),
		mcplib.WithString("repo",
			mcplib.Description("Repository directory, e.g. \"docs\"."),
			mcplib.Required(),
		),
		mcplib.WithString("path",
			mcplib.Description("Path of the file within the repository, e.g. \"deso-tutorial/setup.md\"."),
			mcplib.Required(),
		),
		mcplib.WithBoolean("outline",
			mcplib.Description("Return only the heading outline of the document."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithIdempotentHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleReadDocument}
}

func (s *Server) handleReadDocument(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	repo, ok := stringArg(req, "repo")
	if !ok || repo == "" {
		return resultErr(errors.New("read_repository_document: repo is required")), nil
	}
	path, ok := stringArg(req, "path")
	if !ok || path == "" {
		return resultErr(errors.New("read_repository_document: path is required")), nil
	}

	doc, err := s.search.Read(ctx, repo, path)
	if err != nil {
		switch {
		case errors.Is(err, reposearch.ErrNotFound):
			return resultText(fmt.Sprintf("Document %q not found in repository %q.", path, repo)), nil
		case errors.Is(err, reposearch.ErrInvalidPath):
			return resultErr(fmt.Errorf("read_repository_document: %w", err)), nil
		}
		s.logger.WarnContext(ctx, "read_repository_document failed", "repo", repo, "path", path, "error", err)
		return resultErr(fmt.Errorf("read_repository_document: %w", err)), nil
	}

	if boolArg(req, "outline", false) {
		return resultText(formatOutline(doc)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s/%s (%s)\n\n---\n\n", doc.Repo, doc.Path, humanize.IBytes(uint64(doc.Size)))
	b.WriteString(doc.Content)
	if doc.Truncated {
		fmt.Fprintf(&b, "\n\n[truncated: showing the first %s of %s]\n",
			humanize.IBytes(uint64(len(doc.Content))), humanize.IBytes(uint64(doc.Size)))
	}
	return resultText(b.String()), nil
}

func formatOutline(doc *reposearch.Document) string {
	hh := reposearch.Outline(doc.Content)
	if len(hh) == 0 {
		return fmt.Sprintf("No headings found in %s/%s.", doc.Repo, doc.Path)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Outline of %s/%s:\n\n", doc.Repo, doc.Path)
	for _, h := range hh {
		fmt.Fprintf(&b, "%s- %s\n", strings.Repeat("  ", h.Level-1), h.Text)
	}
	return b.String()
}

// ─── list_repositories ────────────────────────────────────────────────────────

func (s *Server) toolListRepositories() mcpsrv.ServerTool {
	tool := mcplib.NewTool("list_repositories",
		mcplib.WithDescription("List the repository directories available to repository_search and read_repository_document."),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithIdempotentHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleListRepositories}
}

func (s *Server) handleListRepositories(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	repos := s.search.Repositories()
	if repos == nil {
		repos = []string{}
	}
	result, err := resultJSON(repos)
	if err != nil {
		return resultErr(fmt.Errorf("list_repositories: serialise: %w", err)), nil
	}
	return result, nil
}
