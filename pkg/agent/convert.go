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

package agent

import (
	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/kadirpekel/hector/pkg/llms"
	"github.com/kadirpekel/hector/pkg/tool"
)

// toolDefinitionsFor resolves a whitelist of tool names against the
// registry, silently skipping names that aren't registered, and
// returns them in the shape an llms.LLMProvider.Generate call expects.
func toolDefinitionsFor(registry *tool.Registry, whitelist []string) []llms.ToolDefinition {
	if registry == nil {
		return nil
	}
	tools := make([]mcpgo.Tool, 0, len(whitelist))
	for _, name := range whitelist {
		if t, ok := registry.Get(name); ok {
			tools = append(tools, tool.Definition(t))
		}
	}
	return toLLMToolDefinitions(tools)
}

// toLLMToolDefinitions adapts the tool registry's MCP-shaped tool
// definitions to the llms.ToolDefinition shape every provider's
// Generate accepts.
func toLLMToolDefinitions(tools []mcpgo.Tool) []llms.ToolDefinition {
	defs := make([]llms.ToolDefinition, len(tools))
	for i, t := range tools {
		defs[i] = llms.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters: map[string]any{
				"type":       t.InputSchema.Type,
				"properties": t.InputSchema.Properties,
				"required":   t.InputSchema.Required,
			},
		}
	}
	return defs
}
