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

// Package mcp contains the CLI command for starting the desokit MCP server.
package mcp

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/desotools/desokit/cmd/desokit/internal/bootstrap"
	"github.com/desotools/desokit/cmd/desokit/internal/cfg"
	"github.com/desotools/desokit/cmd/desokit/internal/golang/base"
	internalmcp "github.com/desotools/desokit/internal/mcp"
	"github.com/desotools/desokit/internal/osext"
)

//go:embed assets/mcp.md
var mdMCP string

//go:embed all:assets/layouts/*
var projectsFS embed.FS

// CmdMCP is the "desokit mcp" command.
var CmdMCP = &base.Command{
	UsageLine:     "desokit mcp [flags]",
	Short:         "start the DeSo documentation MCP server",
	Long:          mdMCP,
	PrintFlags:    true,
	RequireConfig: true,
}

var (
	listenAddr       string
	transport        string
	newProjectLayout string
)

const (
	layoutOpencode = "opencode"
)

var projectLayouts = []string{
	layoutOpencode,
}

func init() {
	CmdMCP.Run = runMCP
	CmdMCP.Flag.StringVar(&transport, "transport", "", "MCP transport: \"stdio\" or \"http\" (default: from config, \"stdio\")")
	CmdMCP.Flag.StringVar(&listenAddr, "listen", "", "address to listen on when -transport=http (default: from config, HOST:PORT)")
	CmdMCP.Flag.StringVar(&newProjectLayout, "new", "", fmt.Sprintf("creates new project layout for AI. Type may be one of: %v", projectLayouts))
}

func runMCP(ctx context.Context, cmd *base.Command, args []string) error {
	if newProjectLayout != "" {
		if len(args) == 0 {
			base.SetExitStatus(base.SInvalidParameters)
			return errors.New("target directory must be provided (will be created)")
		}
		return runMCPNewProject(ctx, newProjectLayout, args[0])
	}
	return runMCPServer(ctx)
}

func runMCPServer(ctx context.Context) error {
	lg := cfg.Log
	c := cfg.Config

	if err := osext.DirExists(c.Search.ReposDir); err != nil {
		lg.WarnContext(ctx, "mcp: repository directory is not available, search will return no results", "dir", c.Search.ReposDir, "error", err)
	}

	srv := internalmcp.New(
		internalmcp.WithLogger(lg),
		internalmcp.WithSearcher(bootstrap.Searcher()),
		internalmcp.WithMaxResults(c.Search.MaxResults),
		internalmcp.WithNodeURL(c.Node.URL),
	)
	// command_help needs the command tree, which internal/mcp cannot see.
	srv.AddTool(toolCommandHelp())

	t := transport
	if t == "" {
		t = c.MCP.Transport
	}
	addr := listenAddr
	if addr == "" {
		addr = c.MCP.Addr()
	}
	switch strings.ToLower(t) {
	case "stdio", "":
		return srv.ServeStdio(ctx)
	case "http":
		lg.InfoContext(ctx, "mcp: http transport", "addr", addr)
		return srv.ServeHTTP(ctx, addr)
	default:
		base.SetExitStatus(base.SInvalidParameters)
		return fmt.Errorf("mcp: unknown transport %q (use \"stdio\" or \"http\")", t)
	}
}

func runMCPNewProject(ctx context.Context, layout string, tgtDir string) error {
	// ensure we know the project type before accessing the FS
	if !slices.Contains(projectLayouts, layout) {
		base.SetExitStatus(base.SInvalidParameters)
		return fmt.Errorf("unknown project layout %q. Use one of %v", layout, projectLayouts)
	}
	subfs, err := fs.Sub(projectsFS, path.Join("assets", "layouts", layout))
	if err != nil {
		base.SetExitStatus(base.SApplicationError)
		return fmt.Errorf("fs chdir: %w", err)
	}
	if err := initNewProject(tgtDir, subfs); err != nil {
		return err
	}
	cfg.Log.InfoContext(ctx, "new project created", "in", tgtDir, "layout", layout)
	return nil
}

func initNewProject(tgtDir string, fsys fs.FS) error {
	if err := osext.DirExists(tgtDir); err != nil {
		if errors.Is(err, osext.ErrNotADir) {
			base.SetExitStatus(base.SUserError)
			return fmt.Errorf("%s: %w", tgtDir, err)
		}
		if err := os.MkdirAll(tgtDir, 0o777); err != nil {
			base.SetExitStatus(base.SApplicationError)
			return fmt.Errorf("unable to initialise new project in %q: %w", tgtDir, err)
		}
	}
	if err := os.CopyFS(tgtDir, fsys); err != nil {
		base.SetExitStatus(base.SApplicationError)
		return fmt.Errorf("copy project files: %w", err)
	}
	return nil
}
