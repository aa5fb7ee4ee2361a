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

// Package task implements the Task Lifecycle Supervisor: the single
// writer of Task state, responsible for decomposition, driving the
// Workflow Engine, and invoking the Evaluator.
package task

import (
	"time"

	"github.com/kadirpekel/hector/pkg/evaluator"
	"github.com/kadirpekel/hector/workflow"
)

// Priority is a user-assigned task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Status is a Task's position in its lifecycle, per spec.md §4.1:
// pending -> decomposing -> in-progress -> evaluating ->
// {completed | completed_with_errors | error}. Manual transitions from
// the external API are permitted but never advance past `evaluating`
// automatically.
type Status string

const (
	StatusPending             Status = "pending"
	StatusDecomposing         Status = "decomposing"
	StatusInProgress          Status = "in-progress"
	StatusEvaluating          Status = "evaluating"
	StatusCompleted           Status = "completed"
	StatusCompletedWithErrors Status = "completed_with_errors"
	StatusError               Status = "error"
)

// IsTerminal reports whether status ends the task's lifecycle.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCompletedWithErrors, StatusError:
		return true
	}
	return false
}

// Subtask is one node of a Decomposition's DAG.
type Subtask struct {
	SubtaskID     string   `json:"subtaskId"`
	SubtaskName   string   `json:"subtaskName"`
	Dependencies  []string `json:"dependencies"`
	ParallelGroup string   `json:"parallelGroup"`
	Complexity    int      `json:"estimatedComplexity,omitempty"` // 1-5, optional (0 = unset)
	Description   string   `json:"description,omitempty"`
}

// Decomposition is the DAG emitted by the decomposition LLM for a Task.
type Decomposition struct {
	MainTaskID string    `json:"mainTask"`
	Subtasks   []Subtask `json:"subtasks"`
}

// Evaluations holds a task's per-agent and system-level evaluation
// records, produced once the task reaches `evaluating`.
type Evaluations struct {
	PerAgent map[string]evaluator.AgentEvaluation `json:"perAgent"`
	System   evaluator.SystemEvaluation           `json:"system"`
}

// Task is a user-submitted unit of work, owned exclusively by the
// Supervisor (spec.md §3 "Ownership").
type Task struct {
	ID            string                          `json:"id"`
	Description   string                          `json:"description"`
	Priority      Priority                        `json:"priority"`
	DueDate       *time.Time                      `json:"dueDate,omitempty"`
	Status        Status                          `json:"status"`
	CreatedAt     time.Time                       `json:"createdAt"`
	UpdatedAt     time.Time                       `json:"updatedAt"`
	CompletedAt   *time.Time                      `json:"completedAt,omitempty"`
	OverallScore  *float64                        `json:"overallScore,omitempty"`
	Decomposition *Decomposition                  `json:"decomposition,omitempty"`
	AgentCount    int                             `json:"agentCount"`
	FinalResult   any                             `json:"finalResult,omitempty"`
	Evaluations   *Evaluations                    `json:"evaluations,omitempty"`
	Reports       map[string]workflow.AgentReport `json:"reports,omitempty"`
	ErrorMessage  string                          `json:"errorMessage,omitempty"`
}
