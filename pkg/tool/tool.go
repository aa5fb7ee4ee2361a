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

// Package tool implements the orchestrator's Tool Registry: a synchronous,
// schema-described callable surface that agents invoke during their
// tool-call loop. Unlike the teacher's ADK-style Tool/StreamingTool/HITL
// hierarchy, agents here never pause for approval or stream partial
// output, so the registry narrows to a single CallableTool shape.
package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
)

// CallableTool is a synchronously invocable tool exposed to agents.
type CallableTool interface {
	// Name is the identifier the LLM uses to request this tool.
	Name() string

	// Description explains what the tool does, shown to the LLM.
	Description() string

	// Schema describes the tool's parameters using MCP's JSON-schema
	// shaped input schema, so it can be handed directly to LLM providers
	// that accept tool definitions.
	Schema() mcp.ToolInputSchema

	// Call executes the tool synchronously with the given arguments.
	Call(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Definition returns the MCP tool definition for a CallableTool, suitable
// for inclusion in a provider's tool-list request.
func Definition(t CallableTool) mcp.Tool {
	return mcp.Tool{
		Name:        t.Name(),
		Description: t.Description(),
		InputSchema: t.Schema(),
	}
}

// Registry holds the set of tools available to agents, keyed by name.
// Registration is expected at startup; lookups happen on every tool-loop
// iteration, so reads are optimized via RWMutex (mirrors the single-writer
// pattern the teacher uses for its task and vector-provider registries).
type Registry struct {
	mu    sync.RWMutex
	tools map[string]CallableTool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]CallableTool)}
}

// Register adds a tool. Registering a name twice is an error.
func (r *Registry) Register(t CallableTool) error {
	if t == nil || t.Name() == "" {
		return fmt.Errorf("tool: cannot register a tool with an empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool: %q already registered", t.Name())
	}
	r.tools[t.Name()] = t
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (CallableTool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns every registered tool, sorted by name for deterministic
// prompt construction.
func (r *Registry) List() []CallableTool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]CallableTool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Definitions returns the MCP tool definitions for every registered tool,
// ready to hand to an LLM provider as its available tool list.
func (r *Registry) Definitions() []mcp.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]mcp.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, Definition(t))
	}
	return defs
}

// Call looks up a tool by name and invokes it. Returns an error that
// wraps ErrNotFound if no such tool is registered, so callers can
// distinguish "unknown tool" from a tool's own execution error.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("tool: %w: %q", ErrNotFound, name)
	}
	return t.Call(ctx, args)
}

// ErrNotFound is wrapped by Call when the requested tool isn't registered.
var ErrNotFound = fmt.Errorf("tool not found")
