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

// Package apiconfig contains the configuration file commands.
package apiconfig

import (
	"github.com/desotools/desokit/cmd/desokit/internal/golang/base"
)

var CmdConfig = &base.Command{
	UsageLine: "desokit config",
	Short:     "configuration file",
	Long: `
# Config Command

Config command allows to perform different operations on the desokit
configuration file: node and GraphQL endpoints with their limits, the
documentation repositories, the chat account and the MCP server settings.

The configuration file is TOML.  Values not present in the file keep their
defaults.  Environment variables (DESO_NODE_URL, DESO_GRAPHQL_URL,
DESO_PUBLIC_KEY, REPOS_DIR, HOST, PORT) override the file.
`,
	Commands: []*base.Command{
		CmdConfigNew,
		CmdConfigCheck,
	},
}
