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
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/hector/pkg/embedders"
	"github.com/kadirpekel/hector/pkg/llms"
	"github.com/kadirpekel/hector/pkg/memory"
	"github.com/kadirpekel/hector/pkg/tool"
	"github.com/kadirpekel/hector/pkg/vector"
	"github.com/kadirpekel/hector/workflow"
)

// echoTool is a minimal CallableTool double, independent of the real
// network-backed tools in this package.
type echoTool struct{ calls int }

func (e *echoTool) Name() string        { return "echo" }
func (e *echoTool) Description() string { return "echoes its input argument" }
func (e *echoTool) Schema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{Type: "object", Properties: map[string]any{"text": map[string]any{"type": "string"}}}
}
func (e *echoTool) Call(_ context.Context, args map[string]any) (map[string]any, error) {
	e.calls++
	return map[string]any{"echoed": args["text"]}, nil
}

func newTestRuntime(t *testing.T, generate GenerateFunc, registry *tool.Registry) *Runtime {
	t.Helper()
	gateway := vector.NewGateway(vector.NilProvider{})
	embedder := embedders.NewStubEmbedder(8)
	longTerm, err := memory.NewLongTerm(gateway, embedder)
	require.NoError(t, err)

	return New(Config{
		Generate: generate,
		Tools:    registry,
		LongTerm: longTerm,
		Gateway:  gateway,
		Embedder: embedder,
	})
}

func TestRuntime_FinishesImmediatelyWithoutToolCalls(t *testing.T) {
	stub := llms.NewStubProvider("test-model")
	stub.Enqueue(llms.Response{Text: "all done"})

	rt := newTestRuntime(t, FromProvider(stub), tool.NewRegistry())
	cfg := workflow.AgentConfig{MainTaskID: "task-1", SubtaskID: "sub-1", TaskAssigned: "say hello", SystemInstruction: "be helpful"}

	report := rt.Run(workflow.RunContext{Agent: cfg})

	require.Equal(t, workflow.StatusCompleted, report.Status)
	require.Equal(t, "all done", report.Result)
	require.Equal(t, 1, stub.Calls())
}

func TestRuntime_ExecutesToolCallsThenFinishes(t *testing.T) {
	echo := &echoTool{}
	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(echo))

	round := 0
	generate := func(_ context.Context, _ string, messages []llms.Message, _ []llms.ToolDefinition) (llms.Response, error) {
		round++
		if round == 1 {
			return llms.Response{ToolCalls: []llms.ToolCall{{ID: "call-1", Name: "echo", Arguments: map[string]any{"text": "hi"}}}}, nil
		}
		// second round: confirm the tool result landed in the conversation.
		last := messages[len(messages)-1]
		require.Equal(t, "tool", last.Role)
		require.Contains(t, last.Content, "hi")
		return llms.Response{Text: "echoed back"}, nil
	}

	rt := newTestRuntime(t, generate, registry)
	cfg := workflow.AgentConfig{
		MainTaskID: "task-1", SubtaskID: "sub-1", TaskAssigned: "echo hi",
		SystemInstruction: "be helpful", ToolWhitelist: []string{"echo"},
	}

	report := rt.Run(workflow.RunContext{Agent: cfg})

	require.Equal(t, workflow.StatusCompleted, report.Status)
	require.Equal(t, "echoed back", report.Result)
	require.Equal(t, []string{"echo"}, report.ToolsUsed)
	require.Equal(t, 1, report.Stats.ToolCallsMade)
	require.Equal(t, 1, echo.calls)
}

func TestRuntime_RejectsNonWhitelistedTool(t *testing.T) {
	echo := &echoTool{}
	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(echo))

	round := 0
	generate := func(_ context.Context, _ string, messages []llms.Message, _ []llms.ToolDefinition) (llms.Response, error) {
		round++
		if round == 1 {
			return llms.Response{ToolCalls: []llms.ToolCall{{ID: "call-1", Name: "echo", Arguments: map[string]any{}}}}, nil
		}
		last := messages[len(messages)-1]
		require.Contains(t, last.Content, "not in this agent's whitelist")
		return llms.Response{Text: "gave up"}, nil
	}

	rt := newTestRuntime(t, generate, registry)
	cfg := workflow.AgentConfig{
		MainTaskID: "task-1", SubtaskID: "sub-1", TaskAssigned: "echo hi",
		SystemInstruction: "be helpful", ToolWhitelist: nil, // echo is registered but not whitelisted for this agent
	}

	report := rt.Run(workflow.RunContext{Agent: cfg})

	require.Equal(t, workflow.StatusCompleted, report.Status)
	require.Equal(t, 0, echo.calls)
}

func TestRuntime_ExceedsLoopBoundForcesOneFinalToolFreeGeneration(t *testing.T) {
	calls := 0
	generate := func(_ context.Context, _ string, messages []llms.Message, tools []llms.ToolDefinition) (llms.Response, error) {
		calls++
		if calls <= MaxToolLoops {
			return llms.Response{Text: "still working", ToolCalls: []llms.ToolCall{{ID: "x", Name: "missing"}}}, nil
		}
		// the 6th, forced call: no tools offered, and the model is told why.
		require.Nil(t, tools)
		last := messages[len(messages)-1]
		require.Equal(t, "system", last.Role)
		require.Contains(t, last.Content, "Do not request any more tools")
		return llms.Response{Text: "final answer"}, nil
	}

	rt := newTestRuntime(t, generate, tool.NewRegistry())
	cfg := workflow.AgentConfig{MainTaskID: "task-1", SubtaskID: "sub-1", TaskAssigned: "loop forever", SystemInstruction: "be helpful"}

	report := rt.Run(workflow.RunContext{Agent: cfg})

	require.Equal(t, workflow.StatusCompleted, report.Status)
	require.Equal(t, "final answer", report.Result)
	require.Equal(t, MaxToolLoops+1, calls)
	require.Equal(t, MaxToolLoops, report.Stats.ToolCallsMade)
}

func TestRuntime_GenerationErrorYieldsErrorReport(t *testing.T) {
	generate := func(_ context.Context, _ string, _ []llms.Message, _ []llms.ToolDefinition) (llms.Response, error) {
		return llms.Response{}, context.DeadlineExceeded
	}

	rt := newTestRuntime(t, generate, tool.NewRegistry())
	cfg := workflow.AgentConfig{MainTaskID: "task-1", SubtaskID: "sub-1", TaskAssigned: "fail please", SystemInstruction: "be helpful"}

	report := rt.Run(workflow.RunContext{Agent: cfg})

	require.Equal(t, workflow.StatusError, report.Status)
	require.Contains(t, report.Error, "generation failed")
}

func TestRuntime_PrimesDependencyContext(t *testing.T) {
	var sawDependency bool
	generate := func(_ context.Context, _ string, messages []llms.Message, _ []llms.ToolDefinition) (llms.Response, error) {
		for _, m := range messages {
			if m.Role == "user" && containsDependencyResult(m.Content) {
				sawDependency = true
			}
		}
		return llms.Response{Text: "ok"}, nil
	}

	rt := newTestRuntime(t, generate, tool.NewRegistry())
	cfg := workflow.AgentConfig{MainTaskID: "task-1", SubtaskID: "sub-2", TaskAssigned: "use prior result", SystemInstruction: "be helpful"}

	report := rt.Run(workflow.RunContext{Agent: cfg, Results: map[string]any{"sub-1": "research findings"}})

	require.Equal(t, workflow.StatusCompleted, report.Status)
	require.True(t, sawDependency)
}

func containsDependencyResult(content string) bool {
	return strings.HasPrefix(content, "Results from dependency")
}

func TestClassifyFinalResponse(t *testing.T) {
	require.Equal(t, "plain text", classifyFinalResponse("plain text"))
	require.Equal(t, "wrapped value", classifyFinalResponse(`{"result": "wrapped value"}`))

	opaque := classifyFinalResponse(`{"foo": "bar"}`)
	m, ok := opaque.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "bar", m["foo"])
}
