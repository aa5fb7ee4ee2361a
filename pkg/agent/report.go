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
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/hector/pkg/logger"
	"github.com/kadirpekel/hector/pkg/mcp"
	"github.com/kadirpekel/hector/pkg/memory"
	"github.com/kadirpekel/hector/pkg/vector"
	"github.com/kadirpekel/hector/workflow"
)

// classifyFinalResponse implements spec.md §4.3's terminal-response
// classification: a JSON object carrying a "result" key unwraps to that
// value, any other JSON value is kept as an opaque result, and anything
// that isn't JSON at all is kept as the bare response string.
func classifyFinalResponse(text string) any {
	parsed, isJSON := mcp.ParseResponse(text)
	if !isJSON {
		return text
	}
	if obj, ok := parsed.(map[string]any); ok {
		if result, hasResult := obj["result"]; hasResult {
			return result
		}
	}
	return parsed
}

// finish builds a completed report for cfg and persists it.
func (rt *Runtime) finish(ctx context.Context, cfg workflow.AgentConfig, start time.Time, text string, toolsUsed []string, toolCallsMade int) workflow.AgentReport {
	end := time.Now()
	report := workflow.AgentReport{
		SubtaskID:    cfg.SubtaskID,
		TaskAssigned: cfg.TaskAssigned,
		Status:       workflow.StatusCompleted,
		StartTime:    start,
		EndTime:      end,
		Result:       classifyFinalResponse(text),
		Reasoning:    text,
		ToolsUsed:    toolsUsed,
		Stats: workflow.AgentStats{
			ExecutionTimeMs: end.Sub(start).Milliseconds(),
			ToolCallsMade:   toolCallsMade,
		},
	}
	rt.persist(ctx, cfg, report)
	return report
}

// errorReport builds an error report for cfg and persists it, so a
// failed agent's context still enriches future recall.
func (rt *Runtime) errorReport(cfg workflow.AgentConfig, start time.Time, message string, toolsUsed []string, toolCallsMade int) workflow.AgentReport {
	end := time.Now()
	report := workflow.AgentReport{
		SubtaskID:    cfg.SubtaskID,
		TaskAssigned: cfg.TaskAssigned,
		Status:       workflow.StatusError,
		StartTime:    start,
		EndTime:      end,
		ToolsUsed:    toolsUsed,
		Error:        message,
		Stats: workflow.AgentStats{
			ExecutionTimeMs: end.Sub(start).Milliseconds(),
			ToolCallsMade:   toolCallsMade,
		},
	}
	rt.persist(context.Background(), cfg, report)
	return report
}

// persist writes a terminal report to long-term memory and to the
// Vector Store Gateway's execution collection, per spec.md §4.3's
// "persist to vector store execution collection and long-term memory on
// both the success and error paths" requirement. Failures here are
// logged, never escalated: persistence is best-effort observability,
// not part of the agent's correctness contract.
func (rt *Runtime) persist(ctx context.Context, cfg workflow.AgentConfig, report workflow.AgentReport) {
	content := report.Reasoning
	if content == "" {
		content = report.Error
	}
	if content == "" {
		return
	}

	role := "assistant"
	if report.Status == workflow.StatusError {
		role = "error"
	}

	if rt.longTerm != nil {
		episode := memory.Episode{AgentID: cfg.SubtaskID, TaskID: cfg.MainTaskID, Role: role, Content: content}
		if err := rt.longTerm.Remember(ctx, []memory.Episode{episode}); err != nil {
			logger.GetLogger().Warn("agent memory write failed", "subtask_id", cfg.SubtaskID, "error", err)
		}
	}

	if rt.gateway != nil && rt.embedder != nil {
		vec, err := rt.embedder.Embed(ctx, content)
		if err != nil {
			logger.GetLogger().Warn("agent execution embed failed", "subtask_id", cfg.SubtaskID, "error", err)
			return
		}

		metadata := map[string]any{
			"subtask_id": cfg.SubtaskID,
			"task_id":    cfg.MainTaskID,
			"status":     string(report.Status),
		}
		id := uuid.NewString()
		if err := rt.gateway.Add(ctx, vector.CollectionAgentExecs, []string{id}, [][]float32{vec}, []map[string]any{metadata}, []string{content}); err != nil {
			logger.GetLogger().Warn("agent execution persist failed", "subtask_id", cfg.SubtaskID, "error", err)
		}
	}
}
