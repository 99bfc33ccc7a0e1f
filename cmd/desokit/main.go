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

// Command desokit is a toolkit for the DeSo blockchain: an MCP server with
// the DeSo API reference, profile lookup and a terminal chat client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/desotools/desokit/cmd/desokit/internal/apiconfig"
	"github.com/desotools/desokit/cmd/desokit/internal/cfg"
	"github.com/desotools/desokit/cmd/desokit/internal/chat"
	"github.com/desotools/desokit/cmd/desokit/internal/golang/base"
	"github.com/desotools/desokit/cmd/desokit/internal/golang/help"
	"github.com/desotools/desokit/cmd/desokit/internal/mcp"
	"github.com/desotools/desokit/cmd/desokit/internal/profile"
	"github.com/desotools/desokit/cmd/desokit/internal/search"
	"github.com/desotools/desokit/internal/config"
)

// secrets defines the names of the supported secret files that we load our
// secrets from.  Inexperienced windows users might have bad experience trying
// to create .env file with the notepad as it will battle for having the
// "txt" extension.  Let it have it.
var secrets = []string{".env", ".env.txt", "secrets.txt"}

func init() {
	base.Desokit.Commands = []*base.Command{
		mcp.CmdMCP,
		search.CmdSearch,
		search.CmdDoc,
		profile.CmdProfile,
		chat.CmdChat,
		apiconfig.CmdConfig,
		CmdVersion,
	}
}

func main() {
	loadSecrets(secrets)

	cfg.SetGlobalFlags(flag.CommandLine)
	flag.Usage = func() {
		help.PrintUsage(os.Stderr, base.Desokit)
		base.SetExitStatus(base.SHelpRequested)
		base.Exit()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
	}

	if args[0] == "help" {
		help.Help(os.Stdout, args[1:])
		base.Exit()
		return
	}

	cmd, rest := base.Desokit.Lookup(args)
	if cmd == base.Desokit {
		fmt.Fprintf(os.Stderr, "desokit %s: unknown command\nRun 'desokit help' for usage.\n", args[0])
		base.SetExitStatus(base.SInvalidParameters)
		base.Exit()
	}
	if !cmd.Runnable() {
		help.PrintUsage(os.Stderr, cmd)
		base.SetExitStatus(base.SHelpRequested)
		base.Exit()
	}

	if err := invoke(cmd, rest); err != nil {
		fmt.Fprintf(os.Stderr, "desokit %s: %s\n", cmd.LongName(), err)
		if base.ExitStatus() == base.SNoError {
			base.SetExitStatus(base.SGenericError)
		}
	}
	base.Exit()
}

// invoke parses the command flags, initialises the logging, tracing and
// configuration, and runs the command.
func invoke(cmd *base.Command, args []string) error {
	cmd.Flag.Usage = func() { cmd.Usage() }
	if !cmd.CustomFlags {
		if err := cmd.Flag.Parse(args); err != nil {
			base.SetExitStatus(base.SInvalidParameters)
			return err
		}
		args = cmd.Flag.Args()
	}

	lg, err := initLog(logOptions{
		File:    cfg.LogFile,
		JSON:    cfg.JSONHandler,
		Verbose: cfg.Verbose,
		Command: cmd.LongName(),
	})
	if err != nil {
		base.SetExitStatus(base.SInitializationError)
		return err
	}
	cfg.Log = lg

	if cmd.RequireConfig {
		if err := cfg.LoadConfig(); err != nil {
			base.SetExitStatus(base.SInitializationError)
			if errors.Is(err, config.ErrInvalid) {
				_ = config.PrintErrors(os.Stderr, err)
			}
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, stopTrace := initTrace(ctx, cfg.TraceFile, cmd.LongName())
	base.AtExit(stopTrace)

	lg.DebugContext(ctx, "running command", "args", args)

	if err := cmd.Run(ctx, cmd, args); err != nil {
		if errors.Is(err, context.Canceled) {
			base.SetExitStatus(base.SCancelled)
		}
		lg.DebugContext(ctx, "command failed", "error", err)
		return err
	}
	return nil
}

// loadSecrets load secrets from the files in secrets slice.
func loadSecrets(files []string) {
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			slog.Debug("loaded secrets", "filename", f)
		}
	}
}
