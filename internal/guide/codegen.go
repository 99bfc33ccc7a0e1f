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

package guide

// In this file: code generation from embedded templates.

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/template"
)

// Framework is the target of the generated snippet.
type Framework string

const (
	React   Framework = "react"
	Vanilla Framework = "vanilla"
	Node    Framework = "node"
)

// DefaultNodeURL is used in generated code when no node URL is given.
const DefaultNodeURL = "https://node.deso.org"

// ErrUnknownFramework is returned for framework names that are not supported.
var ErrUnknownFramework = errors.New("unknown framework")

var frameworkAliases = map[string]Framework{
	"":           React,
	"react":      React,
	"next":       React,
	"nextjs":     React,
	"vanilla":    Vanilla,
	"js":         Vanilla,
	"javascript": Vanilla,
	"browser":    Vanilla,
	"node":       Node,
	"nodejs":     Node,
}

// Language returns the fenced code block language for the framework.
func (f Framework) Language() string {
	if f == React {
		return "tsx"
	}
	return "javascript"
}

// ParseFramework resolves a framework name or alias.
func ParseFramework(s string) (Framework, error) {
	f, ok := frameworkAliases[Normalise(s)]
	if !ok {
		return "", fmt.Errorf("%w: %q (use one of %v)", ErrUnknownFramework, s, []Framework{React, Vanilla, Node})
	}
	return f, nil
}

// names holds the default identifier per code type: a component name for
// React and a function name otherwise.
type names struct {
	component string
	function  string
}

var codeTypes = map[string]names{
	"login":       {"LoginButton", "login"},
	"create-post": {"CreatePostForm", "createPost"},
	"follow":      {"FollowButton", "follow"},
	"send-dm":     {"SendMessage", "sendMessage"},
	"get-profile": {"ProfileCard", "getProfile"},
	"get-posts":   {"PostFeed", "getPosts"},
	"mint-nft":    {"MintNFT", "mintNFT"},
	"send-deso":   {"SendDeso", "sendDeso"},
}

var codeTemplates = template.Must(
	template.New("code").Option("missingkey=error").ParseFS(contentFS, "content/code/*.tmpl"),
)

// CodeTypes returns the supported code types.
func CodeTypes() []string {
	return slices.Sorted(maps.Keys(codeTypes))
}

// Frameworks returns the frameworks that have a dedicated template for the
// code type.
func Frameworks(codeType string) []Framework {
	var out []Framework
	for _, f := range []Framework{React, Vanilla, Node} {
		if codeTemplates.Lookup(tmplName(Normalise(codeType), f)) != nil {
			out = append(out, f)
		}
	}
	return out
}

func tmplName(codeType string, f Framework) string {
	return codeType + "." + string(f) + ".tmpl"
}

// CodeRequest describes the snippet to generate.
type CodeRequest struct {
	Type      string
	Framework string
	// Name overrides the component or function name.
	Name string
	// NodeURL is the DeSo node used by the snippet.
	NodeURL string
}

// Snippet is generated code.
type Snippet struct {
	Type      string
	Framework Framework
	Code      string
}

// Markdown returns the snippet wrapped in a fenced code block.
func (s Snippet) Markdown() string {
	return fmt.Sprintf("```%s\n%s```\n", s.Framework.Language(), s.Code)
}

// Generate renders the template for the request.  If the framework is known
// but has no template for the type, the vanilla template is used.
func Generate(req CodeRequest) (Snippet, error) {
	typ := Normalise(req.Type)
	n, ok := codeTypes[typ]
	if !ok {
		return Snippet{}, fmt.Errorf("%w: code type %q", ErrUnknownTopic, req.Type)
	}
	fw, err := ParseFramework(req.Framework)
	if err != nil {
		return Snippet{}, err
	}
	if codeTemplates.Lookup(tmplName(typ, fw)) == nil {
		fw = Vanilla
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = n.function
		if fw == React {
			name = n.component
		}
	}
	nodeURL := strings.TrimRight(req.NodeURL, "/")
	if nodeURL == "" {
		nodeURL = DefaultNodeURL
	}

	var buf strings.Builder
	data := struct {
		Name    string
		NodeURL string
	}{name, nodeURL}
	if err := codeTemplates.ExecuteTemplate(&buf, tmplName(typ, fw), data); err != nil {
		return Snippet{}, fmt.Errorf("generate %s/%s: %w", typ, fw, err)
	}
	return Snippet{Type: typ, Framework: fw, Code: buf.String()}, nil
}
