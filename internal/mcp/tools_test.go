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

import (
	"errors"
	"fmt"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/desotools/desokit/internal/reposearch"
)

// isErrorResult returns true when the result carries IsError=true.
func isErrorResult(r *mcplib.CallToolResult) bool {
	return r != nil && r.IsError
}

// firstText returns the text of the first TextContent in the result.
func firstText(t *testing.T, r *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, r.Content, "result has no content")
	txt, ok := r.Content[0].(mcplib.TextContent)
	require.True(t, ok, "first content item is not TextContent")
	return txt.Text
}

type toolTest struct {
	name        string
	args        map[string]any
	wantIsError bool
	wantText    string
	notText     string
}

func runToolTests(t *testing.T, handler func(*Server) func(t *testing.T, req mcplib.CallToolRequest) *mcplib.CallToolResult, tests []toolTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			srv, _ := newTestServer(t, ctrl)
			result := handler(srv)(t, toolReq(tt.args))
			require.NotNil(t, result)
			assert.Equal(t, tt.wantIsError, isErrorResult(result))
			if tt.wantText != "" {
				assert.Contains(t, firstText(t, result), tt.wantText)
			}
			if tt.notText != "" {
				assert.NotContains(t, firstText(t, result), tt.notText)
			}
		})
	}
}

// ─── content tools ────────────────────────────────────────────────────────────

func TestHandleAPIExplorer(t *testing.T) {
	runToolTests(t, func(s *Server) func(*testing.T, mcplib.CallToolRequest) *mcplib.CallToolResult {
		return func(t *testing.T, req mcplib.CallToolRequest) *mcplib.CallToolResult {
			r, err := s.handleAPIExplorer(t.Context(), req)
			require.NoError(t, err)
			return r
		}
	}, []toolTest{
		{name: "no category returns overview", args: nil, wantText: "DeSo API Overview"},
		{name: "category", args: map[string]any{"category": "nft"}, wantText: "create-nft-bid"},
		{name: "category alias", args: map[string]any{"category": "Access_Groups"}, wantText: "get-all-user-access-groups"},
		{name: "endpoint filter", args: map[string]any{"category": "messaging", "endpoint": "send-dm-message"}, wantText: "send-dm-message", notText: "get-all-user-message-threads"},
		{name: "unknown endpoint", args: map[string]any{"category": "messaging", "endpoint": "nope"}, wantText: "not documented"},
		{name: "unknown category", args: map[string]any{"category": "weather"}, wantText: "Available: access-groups"},
	})
}

func TestHandleJSGuide(t *testing.T) {
	runToolTests(t, func(s *Server) func(*testing.T, mcplib.CallToolRequest) *mcplib.CallToolResult {
		return func(t *testing.T, req mcplib.CallToolRequest) *mcplib.CallToolResult {
			r, err := s.handleJSGuide(t.Context(), req)
			require.NoError(t, err)
			return r
		}
	}, []toolTest{
		{name: "setup", args: map[string]any{"topic": "setup"}, wantText: "npm install deso-protocol"},
		{name: "messaging", args: map[string]any{"topic": "messaging"}, wantText: "sendDMMessage"},
		{name: "unknown topic", args: map[string]any{"topic": "quantum"}, wantText: "Unknown topic"},
		{name: "missing topic", args: map[string]any{}, wantIsError: true, wantText: "topic is required"},
	})
}

func TestHandleGenerateCode(t *testing.T) {
	runToolTests(t, func(s *Server) func(*testing.T, mcplib.CallToolRequest) *mcplib.CallToolResult {
		return func(t *testing.T, req mcplib.CallToolRequest) *mcplib.CallToolResult {
			r, err := s.handleGenerateCode(t.Context(), req)
			require.NoError(t, err)
			return r
		}
	}, []toolTest{
		{name: "react default", args: map[string]any{"type": "login"}, wantText: "```tsx"},
		{name: "vanilla", args: map[string]any{"type": "send-dm", "framework": "vanilla"}, wantText: "export async function sendMessage("},
		{name: "custom name", args: map[string]any{"type": "follow", "name": "Follow2"}, wantText: "function Follow2("},
		{name: "unknown type", args: map[string]any{"type": "teleport"}, wantText: "Unknown code type"},
		{name: "unknown framework", args: map[string]any{"type": "login", "framework": "svelte"}, wantText: "unknown framework"},
		{name: "missing type", args: nil, wantIsError: true, wantText: "type is required"},
	})
}

func TestHandleExplainArchitecture(t *testing.T) {
	runToolTests(t, func(s *Server) func(*testing.T, mcplib.CallToolRequest) *mcplib.CallToolResult {
		return func(t *testing.T, req mcplib.CallToolRequest) *mcplib.CallToolResult {
			r, err := s.handleExplainArchitecture(t.Context(), req)
			require.NoError(t, err)
			return r
		}
	}, []toolTest{
		{name: "overview", args: map[string]any{"topic": "overview"}, wantText: "layer-1"},
		{name: "unknown", args: map[string]any{"topic": "moon"}, wantText: "Unknown topic"},
		{name: "missing", args: map[string]any{"topic": " "}, wantIsError: true},
	})
}

// ─── repository tools ─────────────────────────────────────────────────────────

func TestHandleRepositorySearch(t *testing.T) {
	many := make([]reposearch.Result, 15)
	for i := range many {
		many[i] = reposearch.Result{Repo: "docs", Path: fmt.Sprintf("f%02d.md", i), Title: fmt.Sprintf("Doc %02d", i), Score: 15 - i}
	}
	tests := []struct {
		name        string
		args        map[string]any
		setup       func(m *mockSearcher)
		wantIsError bool
		wantText    string
		notText     string
	}{
		{
			name: "returns results",
			args: map[string]any{"query": "tutorial"},
			setup: func(m *mockSearcher) {
				m.EXPECT().Search(gomock.Any(), "tutorial").Return([]reposearch.Result{
					{Repo: "docs", Path: "tutorial.md", Title: "Tutorial", Score: 2, Excerpt: "# **Tutorial**"},
				}, nil)
			},
			wantText: "### 1. Tutorial\n`docs/tutorial.md` (score: 2)",
		},
		{
			name: "default limit is 10",
			args: map[string]any{"query": "doc"},
			setup: func(m *mockSearcher) {
				m.EXPECT().Search(gomock.Any(), "doc").Return(many, nil)
			},
			wantText: "Found 15 results for \"doc\" (showing 10)",
			notText:  "Doc 10",
		},
		{
			name: "explicit limit",
			args: map[string]any{"query": "doc", "limit": 2.0},
			setup: func(m *mockSearcher) {
				m.EXPECT().Search(gomock.Any(), "doc").Return(many, nil)
			},
			wantText: "(showing 2)",
			notText:  "Doc 02",
		},
		{
			name: "repo filter",
			args: map[string]any{"query": "x", "repo": "core"},
			setup: func(m *mockSearcher) {
				m.EXPECT().SearchRepo(gomock.Any(), "core", "x").Return(nil, nil)
			},
			wantText: "No results found",
		},
		{
			name: "invalid repo",
			args: map[string]any{"query": "x", "repo": "../x"},
			setup: func(m *mockSearcher) {
				m.EXPECT().SearchRepo(gomock.Any(), "../x", "x").Return(nil, reposearch.ErrInvalidPath)
			},
			wantText: "Invalid repository name",
		},
		{
			name:        "empty query",
			args:        map[string]any{"query": "  "},
			setup:       func(m *mockSearcher) {},
			wantIsError: true,
			wantText:    "query is required",
		},
		{
			name: "search error",
			args: map[string]any{"query": "x"},
			setup: func(m *mockSearcher) {
				m.EXPECT().Search(gomock.Any(), "x").Return(nil, errors.New("disk failure"))
			},
			wantIsError: true,
			wantText:    "disk failure",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			srv, m := newTestServer(t, ctrl)
			tt.setup(m)

			result, err := srv.handleRepositorySearch(t.Context(), toolReq(tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.wantIsError, isErrorResult(result))
			if tt.wantText != "" {
				assert.Contains(t, firstText(t, result), tt.wantText)
			}
			if tt.notText != "" {
				assert.NotContains(t, firstText(t, result), tt.notText)
			}
		})
	}
}

func TestHandleReadDocument(t *testing.T) {
	doc := &reposearch.Document{
		Repo:    "docs",
		Path:    "guide.md",
		Title:   "Guide",
		Content: "# Guide\n\n## Install\n",
		Size:    2048,
	}
	tests := []struct {
		name        string
		args        map[string]any
		setup       func(m *mockSearcher)
		wantIsError bool
		wantText    string
	}{
		{
			name: "reads document",
			args: map[string]any{"repo": "docs", "path": "guide.md"},
			setup: func(m *mockSearcher) {
				m.EXPECT().Read(gomock.Any(), "docs", "guide.md").Return(doc, nil)
			},
			wantText: "Source: docs/guide.md (2.0 KiB)",
		},
		{
			name: "outline",
			args: map[string]any{"repo": "docs", "path": "guide.md", "outline": true},
			setup: func(m *mockSearcher) {
				m.EXPECT().Read(gomock.Any(), "docs", "guide.md").Return(doc, nil)
			},
			wantText: "- Guide\n  - Install\n",
		},
		{
			name: "truncated",
			args: map[string]any{"repo": "docs", "path": "big.md"},
			setup: func(m *mockSearcher) {
				m.EXPECT().Read(gomock.Any(), "docs", "big.md").Return(&reposearch.Document{Repo: "docs", Path: "big.md", Content: "x", Size: 5 << 20, Truncated: true}, nil)
			},
			wantText: "[truncated",
		},
		{
			name: "not found",
			args: map[string]any{"repo": "docs", "path": "nope.md"},
			setup: func(m *mockSearcher) {
				m.EXPECT().Read(gomock.Any(), "docs", "nope.md").Return(nil, reposearch.ErrNotFound)
			},
			wantText: "not found",
		},
		{
			name: "invalid path",
			args: map[string]any{"repo": "docs", "path": "../x"},
			setup: func(m *mockSearcher) {
				m.EXPECT().Read(gomock.Any(), "docs", "../x").Return(nil, reposearch.ErrInvalidPath)
			},
			wantIsError: true,
			wantText:    "invalid path",
		},
		{
			name:        "missing repo",
			args:        map[string]any{"path": "x"},
			setup:       func(m *mockSearcher) {},
			wantIsError: true,
			wantText:    "repo is required",
		},
		{
			name:        "missing path",
			args:        map[string]any{"repo": "docs"},
			setup:       func(m *mockSearcher) {},
			wantIsError: true,
			wantText:    "path is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			srv, m := newTestServer(t, ctrl)
			tt.setup(m)

			result, err := srv.handleReadDocument(t.Context(), toolReq(tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.wantIsError, isErrorResult(result))
			assert.Contains(t, firstText(t, result), tt.wantText)
		})
	}
}

func TestHandleListRepositories(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, m := newTestServer(t, ctrl)
	m.EXPECT().Repositories().Return(nil)

	result, err := srv.handleListRepositories(t.Context(), toolReq(nil))
	require.NoError(t, err)
	assert.False(t, isErrorResult(result))
	assert.Contains(t, firstText(t, result), "[]")
}

// TestRepositorySearch_tutorial runs the tool against a real tree.
func TestRepositorySearch_tutorial(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, writeFile(root, "docs/learn/tutorial.md", "# Tutorial\n\nStep one.\n"))
	srv := New(WithSearcher(reposearch.New(root)))

	result, err := srv.handleRepositorySearch(t.Context(), toolReq(map[string]any{"query": "tutorial"}))
	require.NoError(t, err)
	assert.Contains(t, firstText(t, result), "### 1. Tutorial")
	assert.Contains(t, firstText(t, result), "`docs/learn/tutorial.md`")
}
