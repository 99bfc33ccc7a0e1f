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

// Package chat contains the DeSo direct message commands.
package chat

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/desotools/desokit/cmd/desokit/internal/bootstrap"
	"github.com/desotools/desokit/cmd/desokit/internal/cfg"
	"github.com/desotools/desokit/cmd/desokit/internal/golang/base"
	"github.com/desotools/desokit/internal/deso"
	"github.com/desotools/desokit/internal/messaging"
	"github.com/desotools/desokit/internal/profile"
)

// CmdChat is the chat command.  The logic is in the subcommands.
var CmdChat = &base.Command{
	UsageLine: "desokit chat",
	Short:     "read and send DeSo direct messages",
	Long: `
# Chat Command

Chat lists the conversations of a DeSo account, prints message threads,
watches them in a terminal UI and prepares direct messages.

The account is set with the -as flag, "chat.public_key" in the config file
or the DESO_PUBLIC_KEY environment variable.  If the node can not be reached
or the account has no messaging key, messaging is disabled and the commands
fail.

Messages that can not be decrypted are shown as "[unable to decrypt message]".

Conversations are identified by the conversation ID, the public key or the
username of the other party.

Sending is done in two steps: "desokit chat send" prints the unsigned
transaction, which must be signed with the wallet of the account, and
"desokit chat submit" submits the signed transaction to the node.
`,
	Commands: []*base.Command{
		cmdConversations,
		cmdThread,
		cmdWatch,
		cmdSend,
		cmdSubmit,
	},
}

//go:generate mockgen -destination=mocks_test.go -package=chat -source=chat.go

// chatService is the subset of the messaging service used by the commands.
type chatService interface {
	User() string
	Conversations(ctx context.Context) ([]messaging.Conversation, error)
	Thread(ctx context.Context, conv messaging.Conversation, before time.Time, limit int) ([]messaging.Message, error)
	CachedThread(ctx context.Context, conv messaging.Conversation, limit int) ([]messaging.Message, error)
	MarkRead(ctx context.Context, conv messaging.Conversation, ts time.Time) error
	Send(ctx context.Context, conv messaging.Conversation, text string) (messaging.Outgoing, error)
	Submit(ctx context.Context, msgID string, signedHex string) (*deso.SubmitResponse, error)
}

// profileResolver resolves the other party of a new conversation.
type profileResolver interface {
	Resolve(ctx context.Context, key string) (profile.Profile, error)
}

// common flags
var asKey string

func init() {
	for _, cmd := range CmdChat.Commands {
		addCommonFlags(&cmd.Flag)
	}
}

func addCommonFlags(fs *flag.FlagSet) {
	fs.StringVar(&asKey, "as", "", "public `key` of the account (default: from config)")
}

// withChat opens the messaging service and calls fn.
func withChat(ctx context.Context, fn func(ctx context.Context, c *bootstrap.Chat) error) error {
	c, err := bootstrap.ChatService(ctx, asKey)
	if err != nil {
		if errors.Is(err, messaging.ErrDisabled) {
			base.SetExitStatus(base.SInitializationError)
		} else {
			base.SetExitStatus(base.SApplicationError)
		}
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			cfg.Log.WarnContext(ctx, "close", "error", err)
		}
	}()
	return fn(ctx, c)
}

// ErrNoConversation is returned if the conversation is not found.
var ErrNoConversation = errors.New("conversation not found")

// findConversation returns the conversation identified by key, which is a
// conversation ID, a public key or a username.  If newDM is set and there is
// no conversation yet, a new direct message conversation is returned.
func findConversation(ctx context.Context, svc chatService, res profileResolver, key string, newDM bool) (messaging.Conversation, error) {
	key = strings.TrimSpace(key)
	name := strings.TrimPrefix(key, "@")
	cc, err := svc.Conversations(ctx)
	if err != nil {
		return messaging.Conversation{}, err
	}
	for _, c := range cc {
		if c.ID == key {
			return c, nil
		}
	}
	for _, c := range cc {
		if c.ChatType == deso.ChatTypeDM && (c.OtherKey == key || (c.Username != "" && strings.EqualFold(c.Username, name))) {
			return c, nil
		}
	}
	if !newDM || res == nil {
		return messaging.Conversation{}, fmt.Errorf("%w: %s", ErrNoConversation, key)
	}
	p := profile.Profile{PublicKey: key}
	if !deso.IsPublicKey(key) {
		if p, err = res.Resolve(ctx, name); err != nil {
			return messaging.Conversation{}, fmt.Errorf("%w: %s: %w", ErrNoConversation, key, err)
		}
	}
	return messaging.Conversation{
		ID:           messaging.ConversationID(p.PublicKey, ""),
		ChatType:     deso.ChatTypeDM,
		OtherKey:     p.PublicKey,
		GroupKeyName: deso.DefaultGroupKeyName,
		Username:     p.Username,
	}, nil
}

// convStatus sets the exit status for the conversation lookup error.
func convStatus(err error) {
	if errors.Is(err, ErrNoConversation) {
		base.SetExitStatus(base.SUserError)
	} else {
		base.SetExitStatus(base.SApplicationError)
	}
}
