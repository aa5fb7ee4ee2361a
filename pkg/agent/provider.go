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

// Package agent implements the orchestrator's Agent Runtime: the
// single-agent tool-call loop that primes an mcp.Context, drives a
// bounded number of LLM/tool round-trips, classifies the final
// response, and persists the result to long-term memory and the
// Vector Store Gateway's execution collection.
//
// This generalizes the teacher's llmagent.Flow reasoning loop (LLM call
// -> inspect tool_use -> execute -> append -> repeat) down to the
// orchestrator's simpler, non-branching, non-delegating shape: one
// agent, one subtask, a fixed tool whitelist, a hard iteration cap
// instead of semantic/LLM-decided termination.
package agent

import (
	"context"

	"github.com/kadirpekel/hector/pkg/llms"
)

// GenerateFunc is the narrow surface the Runtime needs from an LLM
// backend: one agent-attributed generation call. Binding this to
// ratelimit.LimitedProvider.GenerateForAgent gives every agent
// proactive per-agent budget enforcement; binding it to a plain
// llms.LLMProvider.Generate (ignoring agentID) is also valid for
// deployments that disable rate limiting.
type GenerateFunc func(ctx context.Context, agentID string, messages []llms.Message, tools []llms.ToolDefinition) (llms.Response, error)

// FromProvider adapts a plain llms.LLMProvider (no per-agent budget
// enforcement) to GenerateFunc.
func FromProvider(provider llms.LLMProvider) GenerateFunc {
	return func(ctx context.Context, _ string, messages []llms.Message, tools []llms.ToolDefinition) (llms.Response, error) {
		return provider.Generate(ctx, messages, tools)
	}
}
