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

// Package workflow implements the orchestrator's DAG Engine: the
// scheduler that drives a decomposition's agents to terminal states in
// dependency order, dispatching each parallel group concurrently.
package workflow

import "time"

// AgentStatus is an agent's position in its state machine, per
// spec.md §4.3: pending -> waiting (optional) -> ready -> in-progress ->
// {completed | error}, plus the two scheduler-only terminal statuses the
// engine assigns when a dependency failed or a cycle/unknown id stalls
// progress.
type AgentStatus string

const (
	StatusPending     AgentStatus = "pending"
	StatusWaiting     AgentStatus = "waiting"
	StatusReady       AgentStatus = "ready"
	StatusInProgress  AgentStatus = "in-progress"
	StatusCompleted   AgentStatus = "completed"
	StatusError       AgentStatus = "error"
	StatusBlockedErr  AgentStatus = "blocked_error"
	StatusStalled     AgentStatus = "stalled"
)

// IsTerminal reports whether status ends an agent's life in the
// scheduling loop (no more transitions, counted toward `completed`).
func (s AgentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusBlockedErr, StatusStalled:
		return true
	}
	return false
}

// AgentConfig describes one subtask-bound agent the engine must drive
// to a terminal state, built by the Supervisor from a Decomposition's
// Subtasks (spec.md §3, §4.1 step 3).
type AgentConfig struct {
	MainTaskID        string
	SubtaskID         string
	TaskAssigned      string
	AgentType         string
	SystemInstruction string
	ToolWhitelist     []string
	ParallelGroup     string
	Dependencies      []string
}

// AgentStats captures the lightweight runtime counters carried on every
// AgentReport.
type AgentStats struct {
	ExecutionTimeMs int64 `json:"executionTimeMs"`
	ToolCallsMade   int   `json:"toolCallsMade"`
}

// AgentReport is the immutable record an agent emits on reaching a
// terminal state (spec.md §3 "Agent Report"). Reports are owned by the
// Task once produced and never mutated.
type AgentReport struct {
	SubtaskID    string      `json:"subtaskId"`
	TaskAssigned string      `json:"taskAssigned"`
	Status       AgentStatus `json:"status"`
	StartTime    time.Time   `json:"startTime"`
	EndTime      time.Time   `json:"endTime"`
	Result       any         `json:"result,omitempty"`
	Reasoning    string      `json:"reasoning,omitempty"`
	ToolsUsed    []string    `json:"toolsUsed,omitempty"`
	Stats        AgentStats  `json:"stats"`
	Error        string      `json:"error,omitempty"`
}

// Runner executes a single agent to completion and returns its report.
// The engine never interprets agent internals; it only drives the
// dependency/parallel-group schedule and calls Runner for each ready
// agent. context carries the materialized results of every dependency,
// keyed by subtask id, per spec.md §4.2 step 4.
type Runner interface {
	Run(ctx RunContext) AgentReport
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(ctx RunContext) AgentReport

func (f RunnerFunc) Run(ctx RunContext) AgentReport { return f(ctx) }

// RunContext is handed to a Runner for one agent's execution.
type RunContext struct {
	Agent   AgentConfig
	Results map[string]any // subtaskId -> dependency result
}

// EventKind enumerates the scheduler event types spec.md §4.2 requires
// at least one of per agent state change.
type EventKind string

const (
	EventPending        EventKind = "pending"
	EventWaiting        EventKind = "waiting"
	EventReadyToExecute EventKind = "ready_to_execute"
	EventInProgress     EventKind = "in-progress"
	EventTerminal       EventKind = "terminal"
)

// Event is one agent state-change notification. Terminal events carry
// the full Report; all others carry only identity/status/timestamp.
type Event struct {
	SubtaskID string
	Status    AgentStatus
	Kind      EventKind
	Timestamp time.Time
	Report    *AgentReport // set only when Kind == EventTerminal
}

// OnEvent is the scheduler's update callback.
type OnEvent func(Event)

// Outcome is the engine's overall verdict once every agent reaches a
// terminal state.
type Outcome string

const (
	OutcomeCompletedSuccessfully Outcome = "completed_successfully"
	OutcomeCompletedWithErrors   Outcome = "completed_with_errors"
)

// Result is what Run returns: every agent's report keyed by subtask id,
// plus the overall outcome.
type Result struct {
	Reports map[string]AgentReport
	Outcome Outcome
}
