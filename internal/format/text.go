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

package format

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/desotools/desokit/internal/messaging"
	"github.com/desotools/desokit/internal/profile"
	"github.com/desotools/desokit/internal/reposearch"
)

var _ Formatter = &Text{}

const (
	defaultMsgSplitAfter = 3 * time.Minute
	textTimeFmt          = "02/01/2006 15:04:05 Z0700"
)

type Text struct {
	opts options
	now  func() time.Time
}

type textOptions struct {
	msgSplitAfter time.Duration
}

// TextNewMessageThreshold sets the interval after which consecutive messages
// of the same sender get a new header.
func TextNewMessageThreshold(d time.Duration) Option {
	return func(o *options) {
		o.textOptions.msgSplitAfter = d
	}
}

func init() {
	formatters[CText] = NewText
}

func NewText(opts ...Option) Formatter {
	settings := options{
		textOptions: textOptions{
			msgSplitAfter: defaultMsgSplitAfter,
		}}
	for _, fn := range opts {
		fn(&settings)
	}
	return &Text{opts: settings, now: time.Now}
}

func (txt *Text) Extension() string {
	return ".txt"
}

func (txt *Text) Results(ctx context.Context, w io.Writer, rr []reposearch.Result) error {
	if len(rr) == 0 {
		_, err := fmt.Fprintln(w, "no results")
		return err
	}
	buf := bufio.NewWriter(w)
	for i, r := range rr {
		fmt.Fprintf(buf, "%d. %s (%s/%s) score %d\n", i+1, r.Title, r.Repo, r.Path, r.Score)
		if r.Excerpt != "" {
			fmt.Fprintf(buf, "   %s\n", r.Excerpt)
		}
	}
	return buf.Flush()
}

func (txt *Text) Document(ctx context.Context, w io.Writer, doc *reposearch.Document) error {
	buf := bufio.NewWriter(w)
	if !txt.opts.bare {
		fmt.Fprintf(buf, "# %s/%s (%s)\n\n", doc.Repo, doc.Path, humanize.IBytes(uint64(doc.Size)))
	}
	buf.WriteString(doc.Content)
	if doc.Truncated {
		fmt.Fprintf(buf, "\n\n[truncated at %s]\n", humanize.IBytes(reposearch.MaxDocumentSize))
	}
	return buf.Flush()
}

func (txt *Text) Profiles(ctx context.Context, w io.Writer, pp []profile.Profile) error {
	const strFormat = "%s\t%s\t%s\t%s\n"
	writer := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !txt.opts.bare {
		if _, err := fmt.Fprintf(writer, strFormat, "Name", "Handle", "Public Key", "Verified?"); err != nil {
			return fmt.Errorf("writer error: %w", err)
		}
	}
	for _, p := range pp {
		if _, err := fmt.Fprintf(writer, strFormat, p.Name(), p.Handle(), p.PublicKey, yesno(p.Verified)); err != nil {
			return fmt.Errorf("writer error: %w", err)
		}
	}
	return writer.Flush()
}

func (txt *Text) Conversations(ctx context.Context, w io.Writer, cc []messaging.Conversation) error {
	const strFormat = "%s\t%s\t%s\t%s\t%s\n"
	writer := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !txt.opts.bare {
		if _, err := fmt.Fprintf(writer, strFormat, "Name", "ID", "Unread", "Last", "Message"); err != nil {
			return fmt.Errorf("writer error: %w", err)
		}
	}
	for _, c := range cc {
		name := c.Username
		if name == "" {
			name = profile.ShortKey(c.OtherKey)
		}
		unread := ""
		if c.Unread > 0 {
			unread = humanize.Comma(int64(c.Unread))
		}
		last := ""
		if !c.LastTimestamp.IsZero() {
			last = humanize.RelTime(c.LastTimestamp, txt.now(), "ago", "from now")
		}
		if _, err := fmt.Fprintf(writer, strFormat, name, c.ID, unread, last, profile.TruncateMiddle(c.LastMessage, 40, 0)); err != nil {
			return fmt.Errorf("writer error: %w", err)
		}
	}
	return writer.Flush()
}

func (txt *Text) Thread(ctx context.Context, w io.Writer, user string, conv messaging.Conversation, mm []messaging.Message) error {
	buf := bufio.NewWriter(w)
	var prev messaging.Message
	for i, m := range mm {
		st := status(m)
		if i > 0 && prev.SenderKey == m.SenderKey && m.Timestamp.Sub(prev.Timestamp) < txt.opts.msgSplitAfter && st == "" {
			fmt.Fprintf(buf, "%s\n", m.Text)
		} else {
			fmt.Fprintf(buf, "\n> %s [%s] @ %s:", sender(user, conv, m), profile.ShortKey(m.SenderKey), m.Timestamp.Format(textTimeFmt))
			if st != "" {
				fmt.Fprintf(buf, " (%s)", st)
			}
			fmt.Fprintf(buf, "\n%s\n", m.Text)
		}
		prev = m
	}
	return buf.Flush()
}

func yesno(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
