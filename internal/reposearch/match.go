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

package reposearch

// In this file: scoring, titles and excerpts.

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
)

const (
	titleLines   = 10 // number of leading lines searched for a title
	contextLines = 2  // lines of context around the excerpt line
	ellipsis     = "..."
)

// Terms splits the query on white space and lower-cases the terms.
func Terms(query string) []string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return nil
	}
	terms := make([]string, len(fields))
	for i, f := range fields {
		terms[i] = strings.ToLower(f)
	}
	return terms
}

// Score returns the sum of case-insensitive, non-overlapping occurrence
// counts of each term in content.  Terms must be lower case.
func Score(content string, terms []string) int {
	lc := strings.ToLower(content)
	var n int
	for _, t := range terms {
		if t == "" {
			continue
		}
		n += strings.Count(lc, t)
	}
	return n
}

// Title returns the text of the first "# " heading within the first ten
// lines of content, or filename if there is none.
func Title(content, filename string) string {
	for i, line := range strings.SplitN(content, "\n", titleLines+1) {
		if i == titleLines {
			break
		}
		line = strings.TrimRight(line, "\r")
		if h, ok := strings.CutPrefix(line, "# "); ok {
			if h = strings.TrimSpace(h); h != "" {
				return h
			}
		}
	}
	return filename
}

// Excerpt returns the first line that contains any of the terms together
// with two lines of context on each side.  The text is cut to maxLen
// characters, then every occurrence of a term is wrapped in "**", and an
// ellipsis is appended if it was cut.  It returns an empty string if no
// line matches.
func Excerpt(content string, terms []string, maxLen int) string {
	lines := strings.Split(content, "\n")
	at := -1
	for i, line := range lines {
		lc := strings.ToLower(line)
		if slices.ContainsFunc(terms, func(t string) bool { return t != "" && strings.Contains(lc, t) }) {
			at = i
			break
		}
	}
	if at < 0 {
		return ""
	}
	from := max(0, at-contextLines)
	to := min(len(lines), at+contextLines+1)
	window := make([]string, 0, to-from)
	for _, l := range lines[from:to] {
		window = append(window, strings.TrimRight(l, "\r"))
	}
	text, cut := truncate(strings.Join(window, "\n"), maxLen)
	text = Highlight(text, terms)
	if cut {
		text += ellipsis
	}
	return text
}

// Highlight wraps every case-insensitive occurrence of the terms in "**".
// Longer terms win when terms overlap.
func Highlight(s string, terms []string) string {
	re := termsRegexp(terms)
	if re == nil {
		return s
	}
	return re.ReplaceAllString(s, "**${1}**")
}

func termsRegexp(terms []string) *regexp.Regexp {
	var quoted []string
	for _, t := range terms {
		if t == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	if len(quoted) == 0 {
		return nil
	}
	slices.SortFunc(quoted, func(a, b string) int {
		return cmp.Or(cmp.Compare(len(b), len(a)), strings.Compare(a, b))
	})
	quoted = slices.Compact(quoted)
	return regexp.MustCompile("(?i)(" + strings.Join(quoted, "|") + ")")
}

// truncate cuts s to n runes and reports whether it did.  n <= 0 disables
// truncation.
func truncate(s string, n int) (string, bool) {
	if n <= 0 {
		return s, false
	}
	r := []rune(s)
	if len(r) <= n {
		return s, false
	}
	return string(r[:n]), true
}
