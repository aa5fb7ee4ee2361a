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
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kadirpekel/hector/pkg/embedders"
	"github.com/kadirpekel/hector/pkg/llms"
	"github.com/kadirpekel/hector/pkg/logger"
	"github.com/kadirpekel/hector/pkg/mcp"
	"github.com/kadirpekel/hector/pkg/memory"
	"github.com/kadirpekel/hector/pkg/tool"
	"github.com/kadirpekel/hector/pkg/vector"
	"github.com/kadirpekel/hector/workflow"
)

// forcedFinalInstruction is appended as a system-role message once an
// agent exceeds MaxToolLoops without a final answer, per spec.md §4.3
// step 4: no more tools are offered and the model must answer with
// whatever it has gathered so far.
const forcedFinalInstruction = "You have used the maximum number of tool calls. Do not request any more tools; give your best final answer now based on what you've gathered."

// MaxToolLoops bounds the tool-call loop: an agent that still wants to
// call tools after this many round-trips is cut off, told to stop
// requesting tools, and given one final tool-free generation whose
// response becomes its report.
const MaxToolLoops = 5

// recallTopK is how many long-term episodes are retrieved to prime an
// agent's context before it starts working.
const recallTopK = 3

// Config wires a Runtime's dependencies.
type Config struct {
	Generate GenerateFunc
	Tools    *tool.Registry
	LongTerm *memory.LongTerm // optional; nil disables recall/remember
	Gateway  *vector.Gateway  // optional; nil disables execution persistence
	Embedder embedders.EmbedderProvider

	// MaxContextMessages and MaxContextTokens bound each agent's MCP
	// window (spec.md §4.0.2); zero means mcp.New's own defaults.
	MaxContextMessages int
	MaxContextTokens   int
}

// Runtime executes one agent (one subtask) to a terminal workflow
// report. It implements workflow.Runner, so a Supervisor can hand it
// directly to workflow.New.
type Runtime struct {
	generate GenerateFunc
	tools    *tool.Registry
	longTerm *memory.LongTerm
	gateway  *vector.Gateway
	embedder embedders.EmbedderProvider

	maxContextMessages int
	maxContextTokens   int
}

// New creates a Runtime from cfg.
func New(cfg Config) *Runtime {
	return &Runtime{
		generate:           cfg.Generate,
		tools:              cfg.Tools,
		longTerm:           cfg.LongTerm,
		gateway:            cfg.Gateway,
		embedder:           cfg.Embedder,
		maxContextMessages: cfg.MaxContextMessages,
		maxContextTokens:   cfg.MaxContextTokens,
	}
}

var _ workflow.Runner = (*Runtime)(nil)

// Run drives ctx.Agent's subtask through the tool-call loop and returns
// its terminal report, per spec.md §4.3.
func (rt *Runtime) Run(runCtx workflow.RunContext) workflow.AgentReport {
	ctx := context.Background()
	cfg := runCtx.Agent
	start := time.Now()

	mcpCtx := mcp.New(cfg.SystemInstruction, rt.maxContextMessages, rt.maxContextTokens)
	rt.primeDependencyContext(mcpCtx, runCtx.Results)
	rt.primeRecalledContext(ctx, mcpCtx, cfg)
	mcpCtx.Append(llms.Message{Role: "user", Content: cfg.TaskAssigned})

	toolDefs := toolDefinitionsFor(rt.tools, cfg.ToolWhitelist)

	var toolsUsed []string
	toolCallsMade := 0

	for loops := 0; loops < MaxToolLoops; loops++ {
		resp, err := rt.generate(ctx, cfg.SubtaskID, mcpCtx.Messages(), toolDefs)
		if err != nil {
			return rt.errorReport(cfg, start, fmt.Sprintf("generation failed: %v", err), toolsUsed, toolCallsMade)
		}

		mcpCtx.Append(llms.Message{Role: "assistant", Content: resp.Text, ToolCalls: resp.ToolCalls})

		if len(resp.ToolCalls) == 0 {
			return rt.finish(ctx, cfg, start, resp.Text, toolsUsed, toolCallsMade)
		}

		toolCallsMade += len(resp.ToolCalls)
		for _, call := range resp.ToolCalls {
			toolsUsed = append(toolsUsed, call.Name)
		}
		for _, msg := range rt.runToolCalls(ctx, cfg, resp.ToolCalls) {
			mcpCtx.Append(msg)
		}
	}

	// Exceeded MaxToolLoops with the model still wanting tools: force one
	// last, tool-free generation instead of reusing a stale tool-call
	// response's leftover text (spec.md §4.3 step 4 / §8 scenario 5).
	mcpCtx.Append(llms.Message{Role: "system", Content: forcedFinalInstruction})
	resp, err := rt.generate(ctx, cfg.SubtaskID, mcpCtx.Messages(), nil)
	if err != nil {
		return rt.errorReport(cfg, start, fmt.Sprintf("forced final generation failed: %v", err), toolsUsed, toolCallsMade)
	}
	mcpCtx.Append(llms.Message{Role: "assistant", Content: resp.Text})
	return rt.finish(ctx, cfg, start, resp.Text, toolsUsed, toolCallsMade)
}

// runToolCalls executes every requested tool call concurrently, per
// spec.md §4.3 step 4 ("execute all tool calls in parallel"), and
// returns the resulting tool-role messages in the same order the calls
// were requested, so the conversation stays reproducible regardless of
// which call finishes first.
func (rt *Runtime) runToolCalls(ctx context.Context, cfg workflow.AgentConfig, calls []llms.ToolCall) []llms.Message {
	messages := make([]llms.Message, len(calls))
	var g errgroup.Group

	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			result, callErr := rt.callTool(ctx, cfg, call)

			content := result
			if callErr != nil {
				content = fmt.Sprintf("error: %v", callErr)
				logger.GetLogger().Warn("agent tool call failed", "subtask_id", cfg.SubtaskID, "tool", call.Name, "error", callErr)
			}
			// Each goroutine owns a distinct index; no shared state to guard.
			messages[i] = llms.Message{Role: "tool", Content: content, ToolCallID: call.ID, Name: call.Name}
			return nil
		})
	}
	_ = g.Wait()
	return messages
}

// primeDependencyContext seeds the agent's context with the results its
// already-completed dependencies produced, per spec.md §4.2 step 4 /
// §4.3's "dependency-context message".
func (rt *Runtime) primeDependencyContext(mcpCtx *mcp.Context, results map[string]any) {
	if len(results) == 0 {
		return
	}
	mcpCtx.Append(llms.Message{Role: "user", Content: formatDependencyContext(results)})
}

// primeRecalledContext injects the k most relevant prior episodes this
// agent (by subtask id) has recorded, if long-term memory is wired.
func (rt *Runtime) primeRecalledContext(ctx context.Context, mcpCtx *mcp.Context, cfg workflow.AgentConfig) {
	if rt.longTerm == nil {
		return
	}
	episodes, err := rt.longTerm.TopK(ctx, cfg.SubtaskID, cfg.TaskAssigned, recallTopK)
	if err != nil {
		logger.GetLogger().Warn("agent memory recall failed", "subtask_id", cfg.SubtaskID, "error", err)
		return
	}
	if len(episodes) == 0 {
		return
	}
	mcpCtx.Append(llms.Message{Role: "user", Content: formatRecalledEpisodes(episodes)})
}

func (rt *Runtime) callTool(ctx context.Context, cfg workflow.AgentConfig, call llms.ToolCall) (string, error) {
	if !whitelisted(cfg.ToolWhitelist, call.Name) {
		return "", fmt.Errorf("tool %q is not in this agent's whitelist", call.Name)
	}
	result, err := rt.tools.Call(ctx, call.Name, call.Arguments)
	if err != nil {
		return "", err
	}
	return stringifyToolResult(result), nil
}

func whitelisted(whitelist []string, name string) bool {
	for _, w := range whitelist {
		if w == name {
			return true
		}
	}
	return false
}
