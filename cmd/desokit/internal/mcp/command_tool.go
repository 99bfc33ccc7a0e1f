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
	"bytes"
	"context"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/desotools/desokit/cmd/desokit/internal/golang/base"
	"github.com/desotools/desokit/cmd/desokit/internal/golang/help"
)

// toolCommandHelp returns an MCP tool that provides CLI help for any desokit
// subcommand.
func toolCommandHelp() mcpsrv.ServerTool {
	tool := mcplib.NewTool("command_help",
		mcplib.WithDescription(`Return command-line help for a desokit subcommand.

Providing no command name (or an empty string) returns the list of all
available commands.  Use it to construct a desokit invocation, for example to
look up a profile or list chat conversations.`),
		mcplib.WithString("command",
			mcplib.Description(`Subcommand name, e.g. "profile", "search", "chat". Leave empty for top-level help. Nested subcommands are space-separated, e.g. "chat send".`),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithIdempotentHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: handleCommandHelp}
}

func handleCommandHelp(_ context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	cmdName := strings.TrimSpace(req.GetString("command", ""))

	var buf bytes.Buffer
	if cmdName == "" {
		fmt.Fprintln(&buf, "desokit commands:")
		listCommands(&buf, base.Desokit.Commands)
		return mcplib.NewToolResultText(buf.String()), nil
	}

	cur, rest := base.Desokit.Lookup(strings.Fields(cmdName))
	if len(rest) > 0 || cur == base.Desokit {
		return mcplib.NewToolResultText(fmt.Sprintf(
			"Unknown command %q. Run command_help with an empty command name to list all commands.",
			cmdName,
		)), nil
	}

	fmt.Fprintf(&buf, "Command: desokit %s\n", cur.LongName())
	fmt.Fprintf(&buf, "Usage: %s\n", cur.UsageLine)
	if cur.Short != "" {
		fmt.Fprintf(&buf, "Summary: %s\n", cur.Short)
	}
	if cur.Long != "" {
		fmt.Fprintf(&buf, "\nDescription:\n%s\n", strings.TrimSpace(cur.Long))
	}
	if cur.Runnable() {
		fmt.Fprintln(&buf, "\nFlags:")
		help.PrintFlags(&buf, cur)
	}
	if len(cur.Commands) > 0 {
		fmt.Fprintln(&buf, "\nSubcommands:")
		listCommands(&buf, cur.Commands)
	}
	return mcplib.NewToolResultText(buf.String()), nil
}

func listCommands(buf *bytes.Buffer, cmds []*base.Command) {
	for _, c := range cmds {
		if c.Short == "" {
			continue
		}
		fmt.Fprintf(buf, "  %-20s %s\n", c.Name(), c.Short)
	}
}
