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

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"runtime/trace"

	"github.com/rusq/tracer"

	"github.com/desotools/desokit/cmd/desokit/internal/cfg"
	"github.com/desotools/desokit/cmd/desokit/internal/golang/base"
	"github.com/desotools/desokit/internal/deso"
	"github.com/desotools/desokit/internal/profile"
)

// logOptions configures the logger.
type logOptions struct {
	File    string // log file name, STDERR if empty
	JSON    bool
	Verbose bool
	Command string // added to every record
}

// initLog initialises the logging and returns the Logger.  Records go to
// STDERR, or to the log file, which is closed at exit.  STDOUT is left to the
// command output, and to the protocol when the MCP server runs over stdio.
// Public keys in the record attributes are shortened, unless verbose.
func initLog(lo logOptions) (*slog.Logger, error) {
	level := slog.LevelInfo
	if lo.Verbose {
		cfg.SetDebugLevel()
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if !lo.Verbose {
		opts.ReplaceAttr = shortenKeys
	}

	var w io.Writer = os.Stderr
	if lo.File != "" {
		lf, err := os.OpenFile(lo.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o666)
		if err != nil {
			return slog.Default(), fmt.Errorf("failed to create the log file: %w", err)
		}
		log.SetOutput(lf) // panics end up in the file as well.
		w = lf
		base.AtExit(func() {
			if err := lf.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to close the log file: %s\n", err)
			}
		})
	}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if lo.JSON {
		h = slog.NewJSONHandler(w, opts)
	}
	lg := slog.New(h)
	if lo.Command != "" {
		lg = lg.With("cmd", lo.Command)
	}
	slog.SetDefault(lg)
	lg.Debug("logging initialised", "file", lo.File, "json", lo.JSON)
	return lg, nil
}

// shortenKeys replaces DeSo public keys in string attributes with their
// short form.
func shortenKeys(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString && deso.IsPublicKey(a.Value.String()) {
		a.Value = slog.StringValue(profile.ShortKey(a.Value.String()))
	}
	return a
}

// initTrace starts the runtime trace, if filename is not empty, and the
// trace task of the command.  The returned stop function ends the task and
// writes the trace.
func initTrace(ctx context.Context, filename, command string) (context.Context, func()) {
	var trc *tracer.Info
	if filename != "" {
		slog.InfoContext(ctx, "trace will be written to", "filename", filename)
		trc = tracer.New(filename)
		if err := trc.Start(); err != nil {
			slog.WarnContext(ctx, "failed to start the trace", "filename", filename, "error", err)
			trc = nil
		}
	}

	ctx, task := trace.NewTask(ctx, "desokit")
	trace.Log(ctx, "command", command)

	return ctx, func() {
		task.End()
		if trc == nil {
			return
		}
		if err := trc.End(); err != nil {
			slog.Warn("failed to write the trace file", "filename", filename, "error", err)
		}
	}
}
