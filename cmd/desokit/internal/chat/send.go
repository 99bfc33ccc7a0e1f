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
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desotools/desokit/cmd/desokit/internal/bootstrap"
	"github.com/desotools/desokit/cmd/desokit/internal/cfg"
	"github.com/desotools/desokit/cmd/desokit/internal/golang/base"
	"github.com/desotools/desokit/internal/messaging"
	"github.com/desotools/desokit/internal/osext"
	"github.com/desotools/desokit/internal/profile"
)

var cmdSend = &base.Command{
	UsageLine: "desokit chat send [flags] <conversation> <text>",
	Short:     "prepare a direct message",
	Long: `
# Chat Send

Encrypts the message for the other party and asks the node to construct the
direct message transaction.  The unsigned transaction hex is printed; sign it
with the wallet of the account and submit it with 'desokit chat submit'.

If the text is "-", it is read from STDIN.  If there is no conversation with
the recipient yet, the public key or the username starts a new one.

Sending to group chats is not supported.
`,
	PrintFlags:    true,
	RequireConfig: true,
}

var cmdSubmit = &base.Command{
	UsageLine: "desokit chat submit [flags] <signed transaction hex>",
	Short:     "submit a signed transaction",
	Long: `
# Chat Submit

Submits the signed transaction to the node and prints the transaction hash.
If the hex is "-", it is read from STDIN.
`,
	PrintFlags:    true,
	RequireConfig: true,
}

var (
	assumeYes bool
	jsonOut   bool
)

func init() {
	cmdSend.Run = runSend
	cmdSend.Flag.BoolVar(&assumeYes, "y", false, "do not ask for confirmation")
	cmdSend.Flag.BoolVar(&jsonOut, "json", false, "print the result as JSON")

	cmdSubmit.Run = runSubmit
	cmdSubmit.Flag.BoolVar(&jsonOut, "json", false, "print the result as JSON")
}

// sent is the output of the send command.
type sent struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	Recipient      string `json:"recipient"`
	FeeNanos       uint64 `json:"fee_nanos"`
	TransactionHex string `json:"transaction_hex"`
}

func runSend(ctx context.Context, cmd *base.Command, args []string) error {
	if len(args) < 2 {
		base.SetExitStatus(base.SInvalidParameters)
		return errors.New("conversation and text are required")
	}
	text, err := argOrStdin(strings.Join(args[1:], " "), os.Stdin)
	if err != nil {
		base.SetExitStatus(base.SUserError)
		return err
	}
	return withChat(ctx, func(ctx context.Context, c *bootstrap.Chat) error {
		confirm := func(to string) bool {
			if assumeYes || !osext.IsInteractive() {
				return true
			}
			return base.YesNo("Send the message to " + to)
		}
		return send(ctx, os.Stdout, c, c.Profiles, args[0], text, confirm)
	})
}

func send(ctx context.Context, w io.Writer, svc chatService, res profileResolver, key, text string, confirm func(to string) bool) error {
	conv, err := findConversation(ctx, svc, res, key, true)
	if err != nil {
		convStatus(err)
		return err
	}
	to := conv.Username
	if to == "" {
		to = profile.ShortKey(conv.OtherKey)
	}
	if !confirm(to) {
		base.SetExitStatus(base.SCancelled)
		return base.ErrOpCancelled
	}
	out, err := svc.Send(ctx, conv, text)
	if err != nil {
		if errors.Is(err, errors.ErrUnsupported) {
			base.SetExitStatus(base.SUserError)
		} else {
			base.SetExitStatus(base.SApplicationError)
		}
		return err
	}
	cfg.Log.DebugContext(ctx, "message prepared", "id", out.Message.ID, "conversation", conv.ID)
	return printSent(w, conv, out, jsonOut)
}

func printSent(w io.Writer, conv messaging.Conversation, out messaging.Outgoing, asJSON bool) error {
	s := sent{
		MessageID:      out.Message.ID,
		ConversationID: out.Message.ConversationID,
		Recipient:      conv.OtherKey,
	}
	if out.Txn != nil {
		s.FeeNanos = out.Txn.FeeNanos
		s.TransactionHex = out.Txn.TransactionHex
	}
	if asJSON {
		return json.NewEncoder(w).Encode(s)
	}
	_, err := fmt.Fprintf(w, "Message:      %s\nConversation: %s\nFee:          %s\n\n%s\n",
		s.MessageID, s.ConversationID, profile.FormatNanos(s.FeeNanos), s.TransactionHex)
	return err
}

func runSubmit(ctx context.Context, cmd *base.Command, args []string) error {
	if len(args) != 1 {
		base.SetExitStatus(base.SInvalidParameters)
		return errors.New("signed transaction hex is required")
	}
	signed, err := argOrStdin(args[0], os.Stdin)
	if err != nil {
		base.SetExitStatus(base.SUserError)
		return err
	}
	return withChat(ctx, func(ctx context.Context, c *bootstrap.Chat) error {
		return submit(ctx, os.Stdout, c, signed)
	})
}

func submit(ctx context.Context, w io.Writer, svc chatService, signed string) error {
	resp, err := svc.Submit(ctx, "", signed)
	if err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}
	if jsonOut {
		return json.NewEncoder(w).Encode(resp)
	}
	_, err = fmt.Fprintln(w, resp.TxnHashHex)
	return err
}

// argOrStdin returns arg, or the contents of r if arg is "-".
func argOrStdin(arg string, r io.Reader) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	var sb strings.Builder
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	s := strings.TrimSpace(sb.String())
	if s == "" {
		return "", errors.New("empty input")
	}
	return s, nil
}
