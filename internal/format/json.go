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
	"encoding/json"
	"io"

	"github.com/desotools/desokit/internal/messaging"
	"github.com/desotools/desokit/internal/profile"
	"github.com/desotools/desokit/internal/reposearch"
)

var _ Formatter = JSON{}

type jsonOptions struct {
	prefix string
	indent string
}

// JSON is the json formatter.
type JSON struct {
	opts jsonOptions
}

func init() {
	formatters[CJSON] = NewJSON
}

func NewJSON(opts ...Option) Formatter {
	settings := options{
		jsonOptions: jsonOptions{indent: "  "},
	}
	for _, fn := range opts {
		fn(&settings)
	}
	if settings.bare {
		settings.jsonOptions = jsonOptions{}
	}
	return JSON{opts: settings.jsonOptions}
}

// Extension returns the file extension for the formatter.
func (j JSON) Extension() string {
	return ".json"
}

func JSONPrefix(prefix string) Option {
	return func(o *options) {
		o.jsonOptions.prefix = prefix
	}
}

func JSONIndent(indent string) Option {
	return func(o *options) {
		o.jsonOptions.indent = indent
	}
}

func (j JSON) Results(ctx context.Context, w io.Writer, rr []reposearch.Result) error {
	if rr == nil {
		rr = []reposearch.Result{}
	}
	return j.enc(w).Encode(rr)
}

func (j JSON) Document(ctx context.Context, w io.Writer, doc *reposearch.Document) error {
	return j.enc(w).Encode(doc)
}

func (j JSON) Profiles(ctx context.Context, w io.Writer, pp []profile.Profile) error {
	if pp == nil {
		pp = []profile.Profile{}
	}
	return j.enc(w).Encode(pp)
}

func (j JSON) Conversations(ctx context.Context, w io.Writer, cc []messaging.Conversation) error {
	if cc == nil {
		cc = []messaging.Conversation{}
	}
	return j.enc(w).Encode(cc)
}

// thread is the JSON representation of a conversation with its messages.
type thread struct {
	User         string                 `json:"user"`
	Conversation messaging.Conversation `json:"conversation"`
	Messages     []messaging.Message    `json:"messages"`
}

func (j JSON) Thread(ctx context.Context, w io.Writer, user string, conv messaging.Conversation, mm []messaging.Message) error {
	if mm == nil {
		mm = []messaging.Message{}
	}
	return j.enc(w).Encode(thread{User: user, Conversation: conv, Messages: mm})
}

func (j JSON) enc(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetIndent(j.opts.prefix, j.opts.indent)
	return enc
}
