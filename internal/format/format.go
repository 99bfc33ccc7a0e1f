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

// Package format provides formatting functions for different output format
// types.
package format

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/desotools/desokit/internal/messaging"
	"github.com/desotools/desokit/internal/profile"
	"github.com/desotools/desokit/internal/reposearch"
)

// Type is the formatter type.
//
//go:generate stringer -type Type -trimprefix C format.go
type Type int

const (
	CUnknown Type = iota // Unknown formatter type
	CText                // CText is the plain text formatter
	CCSV                 // CCSV is the CSV formatter
	CJSON                // CJSON is the JSON formatter
)

var Descriptions = map[Type]string{
	CText: "Plain text format",
	CCSV:  "CSV format",
	CJSON: "JSON format",
}

// Types is a list of formatter types.
type Types []Type

func (tt Types) String() string {
	var s []string
	for _, t := range tt {
		s = append(s, t.String())
	}
	return strings.Join(s, ", ")
}

func All() Types {
	return slices.SortedFunc(maps.Keys(formatters), func(a, b Type) int {
		return cmp.Compare(a.String(), b.String())
	})
}

// Formatter is the interface that each output format must implement.
type Formatter interface {
	// Results writes search results.
	Results(ctx context.Context, w io.Writer, rr []reposearch.Result) error
	// Document writes a single repository document.
	Document(ctx context.Context, w io.Writer, doc *reposearch.Document) error
	// Profiles writes the profile list.
	Profiles(ctx context.Context, w io.Writer, pp []profile.Profile) error
	// Conversations writes the conversation list.
	Conversations(ctx context.Context, w io.Writer, cc []messaging.Conversation) error
	// Thread writes the messages of conv, as seen by user.
	Thread(ctx context.Context, w io.Writer, user string, conv messaging.Conversation, mm []messaging.Message) error
	// Extension returns the file extension for the formatter.
	Extension() string
}

type options struct {
	textOptions
	csvOptions
	jsonOptions
	bare bool // bare output format
}

// Option is the formatter option.
type Option func(*options)

var formatters = make(map[Type]func(opts ...Option) Formatter)

func (e *Type) Set(v string) error {
	v = strings.ToLower(v)
	for i := 0; i < len(_Type_index)-1; i++ {
		if strings.ToLower(_Type_name[_Type_index[i]:_Type_index[i+1]]) == v {
			*e = Type(i)
			return nil
		}
	}
	return fmt.Errorf("unknown format: %s", v)
}

// FormatFunc returns the constructor of the formatter.
func (e *Type) FormatFunc() (func(opts ...Option) Formatter, bool) {
	fn, ok := formatters[*e]
	return fn, ok
}

// New returns the formatter of type t.
func New(t Type, opts ...Option) (Formatter, error) {
	fn, ok := t.FormatFunc()
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", t)
	}
	return fn(opts...), nil
}

// WithBareFormat omits headers for the formatters that support it.
func WithBareFormat(b bool) Option {
	return func(o *options) {
		o.bare = b
	}
}

// sender returns the label of the author of m.
func sender(user string, conv messaging.Conversation, m messaging.Message) string {
	switch {
	case m.IsFrom(user):
		return "you"
	case m.SenderKey == conv.OtherKey && conv.Username != "":
		return conv.Username
	}
	return profile.ShortKey(m.SenderKey)
}

// status returns the delivery state of m.
func status(m messaging.Message) string {
	switch {
	case m.Failed:
		return "failed"
	case m.Pending:
		return "sending"
	case m.Encrypted:
		return "encrypted"
	}
	return ""
}
