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

package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/desotools/desokit/cmd/desokit/internal/bootstrap"
	"github.com/desotools/desokit/cmd/desokit/internal/cfg"
	"github.com/desotools/desokit/cmd/desokit/internal/golang/base"
	"github.com/desotools/desokit/internal/format"
	"github.com/desotools/desokit/internal/messaging"
	"github.com/desotools/desokit/internal/osext"
	"github.com/desotools/desokit/internal/tui"
)

var cmdConversations = &base.Command{
	UsageLine: "desokit chat conversations [flags]",
	Short:     "list the conversations",
	Long: `
# Chat Conversations

Lists the conversations of the account, newest first, with the last message
and the number of unread messages.  Unread counts require the chat database
("chat.database" in the config file).
`,
	PrintFlags:    true,
	RequireConfig: true,
}

var cmdThread = &base.Command{
	UsageLine: "desokit chat thread [flags] <conversation>",
	Short:     "print the messages of a conversation",
	Long: `
# Chat Thread

Prints a page of messages of the conversation, oldest first.  Use -before
to page back.  With -cached, messages are read from the chat database
without contacting the node.

The conversation is marked as read unless -no-mark-read is given.
`,
	PrintFlags:    true,
	RequireConfig: true,
}

var cmdWatch = &base.Command{
	UsageLine: "desokit chat watch [flags]",
	Short:     "watch the conversations in the terminal",
	Long: `
# Chat Watch

Opens the terminal UI with the conversation list.  The list and the open
thread are refreshed every "chat.fast_interval" while you are active and
every "chat.idle_interval" otherwise.

Keys: up/down to move, enter to open, esc to go back, r to refresh, p to
pause polling, q to quit.
`,
	PrintFlags:    true,
	RequireConfig: true,
}

var threadFlags struct {
	limit      int
	before     string
	cached     bool
	noMarkRead bool
}

func init() {
	cmdConversations.Run = runConversations
	cfg.AddFormatFlag(&cmdConversations.Flag)

	cmdThread.Run = runThread
	cmdThread.Flag.IntVar(&threadFlags.limit, "n", 0, "number of messages (default: from config)")
	cmdThread.Flag.StringVar(&threadFlags.before, "before", "", "show messages before the RFC3339 `time`")
	cmdThread.Flag.BoolVar(&threadFlags.cached, "cached", false, "read messages from the chat database only")
	cmdThread.Flag.BoolVar(&threadFlags.noMarkRead, "no-mark-read", false, "do not mark the conversation as read")
	cfg.AddFormatFlag(&cmdThread.Flag)

	cmdWatch.Run = runWatch
}

func runConversations(ctx context.Context, cmd *base.Command, args []string) error {
	f, err := cfg.Formatter()
	if err != nil {
		base.SetExitStatus(base.SInvalidParameters)
		return err
	}
	return withChat(ctx, func(ctx context.Context, c *bootstrap.Chat) error {
		return listConversations(ctx, os.Stdout, f, c)
	})
}

func listConversations(ctx context.Context, w io.Writer, f format.Formatter, svc chatService) error {
	cc, err := svc.Conversations(ctx)
	if err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}
	return f.Conversations(ctx, w, cc)
}

// threadOptions are the options of the thread command.
type threadOptions struct {
	limit    int
	before   time.Time
	cached   bool
	markRead bool
}

func runThread(ctx context.Context, cmd *base.Command, args []string) error {
	if len(args) != 1 {
		base.SetExitStatus(base.SInvalidParameters)
		return errors.New("conversation is required")
	}
	f, err := cfg.Formatter()
	if err != nil {
		base.SetExitStatus(base.SInvalidParameters)
		return err
	}
	opts := threadOptions{
		limit:    threadFlags.limit,
		cached:   threadFlags.cached,
		markRead: !threadFlags.noMarkRead,
	}
	if opts.limit <= 0 {
		opts.limit = cfg.Config.Chat.PageSize
	}
	if threadFlags.before != "" {
		if opts.before, err = time.Parse(time.RFC3339, threadFlags.before); err != nil {
			base.SetExitStatus(base.SInvalidParameters)
			return fmt.Errorf("invalid -before: %w", err)
		}
	}
	return withChat(ctx, func(ctx context.Context, c *bootstrap.Chat) error {
		return printThread(ctx, os.Stdout, f, c, args[0], opts)
	})
}

func printThread(ctx context.Context, w io.Writer, f format.Formatter, svc chatService, key string, opts threadOptions) error {
	conv, err := findConversation(ctx, svc, nil, key, false)
	if err != nil {
		convStatus(err)
		return err
	}
	var fetch = func() ([]messaging.Message, error) {
		return svc.Thread(ctx, conv, opts.before, opts.limit)
	}
	if opts.cached {
		fetch = func() ([]messaging.Message, error) {
			return svc.CachedThread(ctx, conv, opts.limit)
		}
	}
	msgs, err := fetch()
	if err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}
	if err := f.Thread(ctx, w, svc.User(), conv, msgs); err != nil {
		return err
	}
	if opts.markRead && opts.before.IsZero() && !opts.cached {
		if err := svc.MarkRead(ctx, conv, time.Time{}); err != nil {
			cfg.Log.WarnContext(ctx, "unable to mark the conversation as read", "conversation", conv.ID, "error", err)
		}
	}
	return nil
}

func runWatch(ctx context.Context, cmd *base.Command, args []string) error {
	if !osext.IsInteractive() {
		base.SetExitStatus(base.SUserError)
		return errors.New("watch requires an interactive terminal, use 'desokit chat conversations' instead")
	}
	c := cfg.Config.Chat
	return withChat(ctx, func(ctx context.Context, svc *bootstrap.Chat) error {
		if err := tui.Run(ctx, svc, svc.User(), c.PageSize, c.FastInterval, c.IdleInterval, c.ActiveWindow); err != nil {
			base.SetExitStatus(base.SApplicationError)
			return err
		}
		return nil
	})
}
