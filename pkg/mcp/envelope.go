// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mcp

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kadirpekel/hector/pkg/llms"
)

// fencedJSONBlock matches a ```json ... ``` (or bare ```) fenced code block.
var fencedJSONBlock = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)\\n```")

// ParseResponse extracts structured content from a raw LLM text reply
// using three fallbacks in order, exactly as the spec requires: a
// fenced ```json code block, then a raw JSON.parse of the whole string,
// then the raw string itself as a plain-text result.
func ParseResponse(raw string) (data any, isJSON bool) {
	raw = strings.TrimSpace(raw)

	if m := fencedJSONBlock.FindStringSubmatch(raw); m != nil {
		var v any
		if err := json.Unmarshal([]byte(m[1]), &v); err == nil {
			return v, true
		}
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v, true
	}

	return raw, false
}

// ToolDefinitionsToMCP converts the orchestrator's tool list into
// mark3labs/mcp-go wire types, grounding the "Model Context Protocol"
// naming in that library's actual MCP schema types rather than a
// bespoke struct.
func ToolDefinitionsToMCP(defs []llms.ToolDefinition) []mcp.Tool {
	out := make([]mcp.Tool, 0, len(defs))
	for _, d := range defs {
		schema := mcp.ToolInputSchema{Type: "object"}
		if props, ok := d.Parameters["properties"].(map[string]any); ok {
			schema.Properties = props
		}
		if req, ok := d.Parameters["required"].([]string); ok {
			schema.Required = req
		}
		out = append(out, mcp.Tool{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: schema,
		})
	}
	return out
}

// ToolCallResult wraps a tool's output into an mcp.CallToolResult, the
// wire shape used for the `{name, response}` envelope appended back
// into the context as a "tool" role message.
func ToolCallResult(content map[string]any, isError bool) *mcp.CallToolResult {
	text, err := json.Marshal(content)
	if err != nil {
		text = []byte(`{"error":"failed to marshal tool result"}`)
		isError = true
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(text))},
		IsError: isError,
	}
}
