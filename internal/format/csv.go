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
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/desotools/desokit/internal/messaging"
	"github.com/desotools/desokit/internal/profile"
	"github.com/desotools/desokit/internal/reposearch"
)

var _ Formatter = &CSV{}

type CSV struct {
	opts options
}

type csvOptions struct {
	UseCRLF bool
	Comma   rune
}

func init() {
	formatters[CCSV] = NewCSV
}

func NewCSV(opts ...Option) Formatter {
	settings := options{
		csvOptions: csvOptions{
			UseCRLF: false,
			Comma:   ',',
		},
	}
	for _, fn := range opts {
		fn(&settings)
	}
	return &CSV{settings}
}

// CSVComma sets the field delimiter.
func CSVComma(r rune) Option {
	return func(o *options) {
		o.csvOptions.Comma = r
	}
}

// Extension returns the file extension for the formatter.
func (c CSV) Extension() string {
	return ".csv"
}

var (
	// formatting functions
	_fb = strconv.FormatBool
	_fi = strconv.Itoa
	_ft = func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	}
)

func (c *CSV) write(w io.Writer, header []string, rows [][]string) error {
	csv := c.mkwriter(w)
	if !c.opts.bare {
		if err := csv.Write(header); err != nil {
			return err
		}
	}
	if err := csv.WriteAll(rows); err != nil {
		return err
	}
	return csv.Error()
}

func (c *CSV) Results(_ context.Context, w io.Writer, rr []reposearch.Result) error {
	rows := make([][]string, 0, len(rr))
	for _, r := range rr {
		rows = append(rows, []string{r.Repo, r.Path, r.Title, _fi(r.Score), r.Excerpt})
	}
	return c.write(w, []string{"Repo", "Path", "Title", "Score", "Excerpt"}, rows)
}

func (c *CSV) Document(_ context.Context, w io.Writer, doc *reposearch.Document) error {
	return c.write(w,
		[]string{"Repo", "Path", "Title", "Size", "Truncated?", "Content"},
		[][]string{{doc.Repo, doc.Path, doc.Title, strconv.FormatInt(doc.Size, 10), _fb(doc.Truncated), doc.Content}},
	)
}

func (c *CSV) Profiles(_ context.Context, w io.Writer, pp []profile.Profile) error {
	rows := make([][]string, 0, len(pp))
	for _, p := range pp {
		rows = append(rows, []string{p.PublicKey, p.Username, p.DisplayName, _fb(p.Verified), p.PictureURL, p.Description})
	}
	return c.write(w, []string{"Public Key", "Username", "Display Name", "Verified?", "Picture", "Description"}, rows)
}

func (c *CSV) Conversations(_ context.Context, w io.Writer, cc []messaging.Conversation) error {
	rows := make([][]string, 0, len(cc))
	for _, cv := range cc {
		rows = append(rows, []string{cv.ID, string(cv.ChatType), cv.OtherKey, cv.GroupKeyName, cv.Username, _ft(cv.LastTimestamp), _fi(cv.Unread), cv.LastMessage})
	}
	return c.write(w, []string{"ID", "Type", "Other Key", "Group", "Username", "Last", "Unread", "Message"}, rows)
}

// timestamp, sender, status, text

func (c *CSV) Thread(_ context.Context, w io.Writer, user string, conv messaging.Conversation, mm []messaging.Message) error {
	rows := make([][]string, 0, len(mm))
	for _, m := range mm {
		rows = append(rows, []string{_ft(m.Timestamp), m.SenderKey, sender(user, conv, m), status(m), m.Text})
	}
	return c.write(w, []string{"Timestamp", "Sender Key", "Sender", "Status", "Text"}, rows)
}

func (c *CSV) mkwriter(w io.Writer) *csv.Writer {
	wr := csv.NewWriter(w)
	wr.Comma = c.opts.Comma
	wr.UseCRLF = c.opts.UseCRLF
	return wr
}
