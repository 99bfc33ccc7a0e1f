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

// In this file: MCP server construction and transport management.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/desotools/desokit/internal/guide"
	"github.com/desotools/desokit/internal/reposearch"
)

//go:generate mockgen -destination=mock_mcp/mock_mcp.go . Searcher

const (
	serverName    = "deso-docs-mcp"
	serverVersion = "1.0.0"

	// DefaultReposDir is the repository tree searched when no Searcher is
	// given.
	DefaultReposDir = "repos"
)

// Transport selects how the MCP server communicates with its client.
type Transport string

const (
	// TransportStdio uses stdin/stdout for communication (default).
	TransportStdio Transport = "stdio"
	// TransportHTTP uses Streamable HTTP transport.
	TransportHTTP Transport = "http"
)

// Searcher is the repository search backend.
type Searcher interface {
	Search(ctx context.Context, query string) ([]reposearch.Result, error)
	SearchRepo(ctx context.Context, repo, query string) ([]reposearch.Result, error)
	Read(ctx context.Context, repo, path string) (*reposearch.Document, error)
	Repositories() []string
}

// Server wraps an MCP server and the repository searcher.
type Server struct {
	mcp        *mcpsrv.MCPServer
	search     Searcher
	maxResults int
	nodeURL    string
	logger     *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.  nil falls back to slog.Default().
func WithLogger(lg *slog.Logger) Option {
	return func(s *Server) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// WithSearcher sets the repository searcher.
func WithSearcher(sr Searcher) Option {
	return func(s *Server) {
		if sr != nil {
			s.search = sr
		}
	}
}

// WithMaxResults sets the maximum number of search results returned by
// repository_search when the caller does not give a limit.
func WithMaxResults(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithNodeURL sets the node URL used in generated code.
func WithNodeURL(u string) Option {
	return func(s *Server) {
		s.nodeURL = u
	}
}

// New creates a new MCP server.  The server is populated with all available
// tools but does not start listening until one of the Serve* methods is
// called.
func New(opts ...Option) *Server {
	s := &Server{
		maxResults: reposearch.DefaultMaxResults,
		nodeURL:    guide.DefaultNodeURL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.search == nil {
		s.search = reposearch.New(DefaultReposDir, reposearch.WithLogger(s.logger))
	}

	mcpServer := mcpsrv.NewMCPServer(
		serverName,
		serverVersion,
		mcpsrv.WithInstructions(instructions()),
		mcpsrv.WithToolCapabilities(false),
	)
	for _, t := range s.tools() {
		mcpServer.AddTool(t.Tool, t.Handler)
	}

	s.mcp = mcpServer
	return s
}

// instructions returns the server instructions for the connecting agent.
func instructions() string {
	return `You are connected to the DeSo documentation MCP server.

DeSo ("Decentralized Social") is a layer-1 blockchain for social
applications.  Available tools allow you to:
- Browse the DeSo node API by category (deso_api_explorer)
- Read deso-protocol JavaScript SDK guides (deso_js_guide)
- Generate code snippets for common tasks (generate_deso_code)
- Get explanations of the DeSo architecture (explain_deso_architecture)
- Search the local DeSo repositories (repository_search, list_repositories)
- Read a document from the repositories (read_repository_document)

Amounts are expressed in nanos: 1 DESO = 1,000,000,000 nanos.
`
}

// ServeStdio runs the MCP server over stdin/stdout until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.serveStdio(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serveStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	srv := mcpsrv.NewStdioServer(s.mcp)
	s.logger.InfoContext(ctx, "mcp server listening on stdio")
	if err := srv.Listen(ctx, in, out); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("mcp stdio server error: %w", err)
	}
	return nil
}

// Handler returns the HTTP handler serving the MCP endpoint at /mcp and a
// liveness probe at /healthz.
func (s *Server) Handler() http.Handler {
	streamSrv := mcpsrv.NewStreamableHTTPServer(s.mcp, mcpsrv.WithEndpointPath("/mcp"))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Handle("/mcp", streamSrv)
	return r
}

// ServeHTTP runs the MCP server as a Streamable HTTP server on addr until
// ctx is cancelled.  addr should be a host:port string such as
// "127.0.0.1:8483".
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.InfoContext(ctx, "mcp server listening on http", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("mcp http server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "mcp server shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(sctx); err != nil {
			return fmt.Errorf("mcp http server shutdown error: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// Serve runs the server with the given transport.
func (s *Server) Serve(ctx context.Context, t Transport, addr string) error {
	switch t {
	case TransportStdio, "":
		return s.ServeStdio(ctx)
	case TransportHTTP:
		return s.ServeHTTP(ctx, addr)
	default:
		return fmt.Errorf("unknown transport %q (use %q or %q)", t, TransportStdio, TransportHTTP)
	}
}

// tools returns all MCP tools that this server exposes.
func (s *Server) tools() []mcpsrv.ServerTool {
	return []mcpsrv.ServerTool{
		s.toolAPIExplorer(),
		s.toolJSGuide(),
		s.toolGenerateCode(),
		s.toolExplainArchitecture(),
		s.toolRepositorySearch(),
		s.toolReadDocument(),
		s.toolListRepositories(),
	}
}

// AddTool adds an additional tool to the MCP server.  This can be called after
// New but before serving starts.
func (s *Server) AddTool(tool mcpsrv.ServerTool) {
	s.mcp.AddTool(tool.Tool, tool.Handler)
}

// resultText is a helper that wraps text in a successful CallToolResult.
func resultText(text string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(text)
}

// resultErr is a helper that wraps an error in a CallToolResult with IsError=true.
func resultErr(err error) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(err.Error())},
		IsError: true,
	}
}

// resultJSON is a helper that serialises v to JSON and returns a CallToolResult.
func resultJSON(v any) (*mcplib.CallToolResult, error) {
	return mcplib.NewToolResultJSON(v)
}

// stringArg extracts a named string argument from a tool call request.
// Returns ("", false) if the argument is absent or not a string.
func stringArg(req mcplib.CallToolRequest, name string) (string, bool) {
	args := req.GetArguments()
	if args == nil {
		return "", false
	}
	v, ok := args[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// intArg extracts a named int argument from a tool call request.  The MCP
// protocol serialises numbers as float64, so we convert accordingly.
func intArg(req mcplib.CallToolRequest, name string, defaultVal int) int {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	v, ok := args[name]
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return defaultVal
}

// boolArg extracts a named bool argument from a tool call request.
func boolArg(req mcplib.CallToolRequest, name string, defaultVal bool) bool {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	v, ok := args[name]
	if !ok {
		return defaultVal
	}
	b, ok := v.(bool)
	if !ok {
		return defaultVal
	}
	return b
}
