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

package mcp

// In this file: reference content tools backed by package guide.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/desotools/desokit/internal/guide"
)

// unknownKey renders the answer for a key that is not in a content table.
func unknownKey(kind, key string, valid []string) *mcplib.CallToolResult {
	return resultText(fmt.Sprintf("Unknown %s %q. Available: %s.", kind, key, strings.Join(valid, ", ")))
}

// ─── deso_api_explorer ────────────────────────────────────────────────────────

func (s *Server) toolAPIExplorer() mcpsrv.ServerTool {
	tool := mcplib.NewTool("deso_api_explorer",
		mcplib.WithDescription(`Explore the DeSo node API (/api/v0) by category.

Without a category, returns an overview of the API and the list of categories.
With an endpoint (e.g. "submit-post"), returns only the section that describes
that endpoint.`),
		mcplib.WithString("category",
			mcplib.Description("API category to explore."),
			mcplib.Enum(guide.APICategories()...),
		),
		mcplib.WithString("endpoint",
			mcplib.Description(`Optional endpoint name or path to narrow the answer, e.g. "send-dm-message".`),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithIdempotentHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleAPIExplorer}
}

func (s *Server) handleAPIExplorer(_ context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	category, _ := stringArg(req, "category")
	endpoint, _ := stringArg(req, "endpoint")
	if strings.TrimSpace(category) == "" {
		category = "overview"
	}

	text, err := guide.APIEndpoint(category, endpoint)
	if err != nil {
		if errors.Is(err, guide.ErrUnknownTopic) {
			if _, cerr := guide.API(category); cerr != nil {
				return unknownKey("category", category, guide.APICategories()), nil
			}
			return resultText(fmt.Sprintf("Endpoint %q is not documented in category %q.", endpoint, guide.Normalise(category))), nil
		}
		return resultErr(fmt.Errorf("deso_api_explorer: %w", err)), nil
	}
	return resultText(text), nil
}

// ─── deso_js_guide ────────────────────────────────────────────────────────────

func (s *Server) toolJSGuide() mcpsrv.ServerTool {
	tool := mcplib.NewTool("deso_js_guide",
		mcplib.WithDescription("Guide to the deso-protocol JavaScript SDK: setup, identity, transactions, messaging and more."),
		mcplib.WithString("topic",
			mcplib.Description("Guide topic."),
			mcplib.Required(),
			mcplib.Enum(guide.JSTopics()...),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithIdempotentHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleJSGuide}
}

func (s *Server) handleJSGuide(_ context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	topic, ok := stringArg(req, "topic")
	if !ok || strings.TrimSpace(topic) == "" {
		return resultErr(errors.New("deso_js_guide: topic is required")), nil
	}
	text, err := guide.JSGuide(topic)
	if err != nil {
		if errors.Is(err, guide.ErrUnknownTopic) {
			return unknownKey("topic", topic, guide.JSTopics()), nil
		}
		return resultErr(fmt.Errorf("deso_js_guide: %w", err)), nil
	}
	return resultText(text), nil
}

// ─── generate_deso_code ───────────────────────────────────────────────────────

func (s *Server) toolGenerateCode() mcpsrv.ServerTool {
	tool := mcplib.NewTool("generate_deso_code",
		mcplib.WithDescription(`Generate a code snippet that uses DeSo for a common task.

React snippets are TSX components; vanilla snippets are browser modules using
deso-protocol; node snippets call the node API directly and return unsigned
transactions.  When a framework has no template for the type, the vanilla
snippet is returned.`),
		mcplib.WithString("type",
			mcplib.Description("What the code should do."),
			mcplib.Required(),
			mcplib.Enum(guide.CodeTypes()...),
		),
		mcplib.WithString("framework",
			mcplib.Description("Target framework (default react)."),
			mcplib.Enum(string(guide.React), string(guide.Vanilla), string(guide.Node)),
		),
		mcplib.WithString("name",
			mcplib.Description("Optional component or function name."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithIdempotentHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGenerateCode}
}

func (s *Server) handleGenerateCode(_ context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	typ, ok := stringArg(req, "type")
	if !ok || strings.TrimSpace(typ) == "" {
		return resultErr(errors.New("generate_deso_code: type is required")), nil
	}
	framework, _ := stringArg(req, "framework")
	name, _ := stringArg(req, "name")

	snip, err := guide.Generate(guide.CodeRequest{
		Type:      typ,
		Framework: framework,
		Name:      name,
		NodeURL:   s.nodeURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, guide.ErrUnknownTopic):
			return unknownKey("code type", typ, guide.CodeTypes()), nil
		case errors.Is(err, guide.ErrUnknownFramework):
			return resultText(err.Error()), nil
		}
		return resultErr(fmt.Errorf("generate_deso_code: %w", err)), nil
	}
	return resultText(fmt.Sprintf("## %s (%s)\n\n%s", snip.Type, snip.Framework, snip.Markdown())), nil
}

// ─── explain_deso_architecture ────────────────────────────────────────────────

func (s *Server) toolExplainArchitecture() mcpsrv.ServerTool {
	tool := mcplib.NewTool("explain_deso_architecture",
		mcplib.WithDescription("Explain a part of the DeSo architecture: nodes, identity, access groups, transactions, storage, GraphQL."),
		mcplib.WithString("topic",
			mcplib.Description("Architecture topic."),
			mcplib.Required(),
			mcplib.Enum(guide.ArchitectureTopics()...),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithIdempotentHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleExplainArchitecture}
}

func (s *Server) handleExplainArchitecture(_ context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	topic, ok := stringArg(req, "topic")
	if !ok || strings.TrimSpace(topic) == "" {
		return resultErr(errors.New("explain_deso_architecture: topic is required")), nil
	}
	text, err := guide.Architecture(topic)
	if err != nil {
		if errors.Is(err, guide.ErrUnknownTopic) {
			return unknownKey("topic", topic, guide.ArchitectureTopics()), nil
		}
		return resultErr(fmt.Errorf("explain_deso_architecture: %w", err)), nil
	}
	return resultText(text), nil
}
