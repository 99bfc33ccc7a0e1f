// Package base defines shared basic pieces of the desokit command.
//
// The command subsystem is based on golang's `go` command implementation, which
// is BSD-licensed:
//
//	Copyright 2017 The Go Authors. All rights reserved.
//	Use of this source code is governed by a BSD-style
//	license that can be found in the LICENSE file.
package base

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
)

// A Command is an implementation of a desokit command.
type Command struct {
	// Run runs the command.
	// The args are the arguments after the command name.
	Run func(ctx context.Context, cmd *Command, args []string) error

	// UsageLine is the one-line usage message.
	UsageLine string

	// Short is the short description shown in the 'desokit help' output.
	Short string

	// Long is the long message shown in the 'desokit help <this-command>'
	// output.
	Long string

	// Flag is a set of flags specific to this command.
	Flag flag.FlagSet

	// CustomFlags indicates that the command will do its own
	// flag parsing.
	CustomFlags bool

	// PrintFlags indicates that generic help handler should print the
	// flags in the flagset.  Set it to false, if a Long lists all the flags.
	PrintFlags bool

	// RequireConfig indicates that the configuration must be loaded before
	// the command runs.
	RequireConfig bool

	// Commands lists the available commands and help topics.
	// The order here is the order in which they are printed by 'desokit help'.
	Commands []*Command
}

var Desokit = &Command{
	UsageLine: "desokit",
	Long:      `Desokit is a toolkit for the DeSo blockchain: an MCP documentation server, profile lookup and a terminal chat client.`,
	// Commands initialised in main.
}

var (
	exitStatus = SNoError
	exitMu     sync.Mutex
)

// SetExitStatus sets the exit status, unless a higher one is already set.
func SetExitStatus(n StatusCode) {
	exitMu.Lock()
	if exitStatus < n {
		exitStatus = n
	}
	exitMu.Unlock()
}

// ExitStatus returns the current exit status.
func ExitStatus() StatusCode {
	exitMu.Lock()
	defer exitMu.Unlock()
	return exitStatus
}

var atExitFuncs []func()

func AtExit(f func()) {
	atExitFuncs = append(atExitFuncs, f)
}

func Exit() {
	for _, f := range atExitFuncs {
		f()
	}
	os.Exit(int(ExitStatus()))
}

// Runnable reports whether the command can be run; otherwise
// it is a documentation pseudo-command.
func (c *Command) Runnable() bool {
	return c.Run != nil
}

// LongName returns the command's long name: all the words in the usage line
// between "desokit" and a flag or argument.
func (c *Command) LongName() string {
	name := c.UsageLine
	if i := strings.IndexAny(name, "[<"); i > 0 {
		name = strings.TrimSpace(name[:i])
	}
	if name == "desokit" {
		return ""
	}
	return strings.TrimPrefix(name, "desokit ")
}

// Name returns the command's short name: the last word in the usage line
// before a flag or argument.
func (c *Command) Name() string {
	name := c.LongName()
	if i := strings.LastIndex(name, " "); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Lookup walks the command tree along args and returns the deepest command
// found and the remaining arguments.
func (c *Command) Lookup(args []string) (*Command, []string) {
	cmd := c
	for len(args) > 0 {
		var next *Command
		for _, sub := range cmd.Commands {
			if sub.Name() == args[0] {
				next = sub
				break
			}
		}
		if next == nil {
			break
		}
		cmd, args = next, args[1:]
	}
	return cmd, args
}

func (c *Command) Usage() {
	fmt.Fprintf(os.Stderr, "usage: %s\n", c.UsageLine)
	fmt.Fprintf(os.Stderr, "Run 'desokit help %s' for details.\n", c.LongName())
	SetExitStatus(SInvalidParameters)
	Exit()
}
