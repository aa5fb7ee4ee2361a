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

package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/hector/pkg/evaluator"
	"github.com/kadirpekel/hector/pkg/logger"
	"github.com/kadirpekel/hector/pkg/metrics"
	"github.com/kadirpekel/hector/workflow"
)

// Supervisor is the single writer of Task state: the only component
// permitted to mutate a Task once submitted (spec.md §3 "Ownership").
// It owns decomposition, drives the workflow.Engine, and invokes the
// Evaluator, broadcasting an Event on every transition.
//
// Safe for concurrent use. Mutation of the task map always happens
// under mu, mirroring the teacher's InMemoryService single-writer-map
// pattern; individual Task fields are never mutated concurrently with
// a read because every read also takes mu (via snapshot copy).
type Supervisor struct {
	mu     sync.RWMutex
	tasks  map[string]*Task
	events *broadcaster

	decomposer Decomposer
	runner     workflow.Runner
	evaluator  *evaluator.Evaluator
}

// New creates a Supervisor. decomposer turns task descriptions into
// Decompositions, runner executes one agent to completion (normally
// backed by the agent runtime package), and eval scores finished work.
func New(decomposer Decomposer, runner workflow.Runner, eval *evaluator.Evaluator) *Supervisor {
	return &Supervisor{
		tasks:      make(map[string]*Task),
		events:     newBroadcaster(),
		decomposer: decomposer,
		runner:     runner,
		evaluator:  eval,
	}
}

// Subscribe registers a listener for every Event the Supervisor emits
// across all tasks. The caller must call the returned unsubscribe func
// once done listening.
func (s *Supervisor) Subscribe() (<-chan Event, func()) {
	return s.events.Subscribe(32)
}

// Submit creates a pending Task and asynchronously drives it through
// decomposition, execution, and evaluation. It returns immediately with
// the task's initial (pending) snapshot; callers observe progress via
// Subscribe or by polling Get.
func (s *Supervisor) Submit(ctx context.Context, description string, priority Priority, dueDate *time.Time) *Task {
	now := time.Now()
	t := &Task{
		ID:          uuid.NewString(),
		Description: description,
		Priority:    priority,
		DueDate:     dueDate,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.tasks[t.ID] = t
	s.mu.Unlock()
	s.publish(t)

	go s.run(context.WithoutCancel(ctx), t.ID)

	return s.snapshot(t)
}

// Get returns a snapshot of the task with id, or ErrNotFound.
func (s *Supervisor) Get(id string) (*Task, error) {
	s.mu.RLock()
	t, ok := s.tasks[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	return s.snapshot(t), nil
}

// List returns a snapshot of every known task, newest first.
func (s *Supervisor) List() []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, s.snapshot(t))
	}
	sortTasksByCreatedDesc(out)
	return out
}

// Delete removes a task from the supervisor. Deleting a task that is
// still in flight does not cancel its goroutine; the goroutine's final
// write is simply discarded since the map no longer holds the task.
func (s *Supervisor) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return notFound(id)
	}
	delete(s.tasks, id)
	return nil
}

// UpdatePriority changes a task's priority without affecting its
// lifecycle status.
func (s *Supervisor) UpdatePriority(id string, priority Priority) error {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return notFound(id)
	}
	t.Priority = priority
	t.UpdatedAt = time.Now()
	s.mu.Unlock()

	s.publish(t)
	return nil
}

// UpdateStatus allows an external caller (e.g. an operator cancelling a
// stuck task) to force a status transition. It refuses to move a task
// that has already reached a terminal status, since the lifecycle is
// otherwise owned exclusively by the Supervisor's own run loop.
func (s *Supervisor) UpdateStatus(id string, status Status) error {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return notFound(id)
	}
	if t.Status.IsTerminal() {
		s.mu.Unlock()
		return ErrAlreadyTerminal
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	if status.IsTerminal() {
		completedAt := time.Now()
		t.CompletedAt = &completedAt
	}
	s.mu.Unlock()

	s.publish(t)
	return nil
}

// run drives one task through decomposing -> in-progress -> evaluating
// -> a terminal status, per spec.md §4.1's submit algorithm.
func (s *Supervisor) run(ctx context.Context, taskID string) {
	if !s.transition(taskID, StatusDecomposing) {
		return
	}

	t, err := s.Get(taskID)
	if err != nil {
		return // deleted while still queued
	}

	decomposition, err := s.decomposer.Decompose(ctx, t.ID, t.Description)
	if err != nil {
		logger.GetLogger().Error("task decomposition failed", "task_id", t.ID, "error", err)
		s.fail(taskID, err.Error())
		return
	}
	s.setDecomposition(taskID, decomposition)

	agents := buildAgentConfigs(decomposition)

	if !s.transition(taskID, StatusInProgress) {
		return
	}

	onEvent := func(e workflow.Event) {
		metrics.Default.Observe(e)
		s.events.Publish(Event{TaskID: taskID, Status: StatusInProgress, Timestamp: e.Timestamp, Agent: &e})
	}

	engine := workflow.New(s.runner)
	result := engine.Run(agents, onEvent)
	s.setReports(taskID, result.Reports)

	if !s.transition(taskID, StatusEvaluating) {
		return
	}

	s.evaluate(ctx, taskID, result)
}

// buildAgentConfigs maps each Subtask to a workflow.AgentConfig via the
// fixed keyword-based Agent Registry (spec.md §4.1).
func buildAgentConfigs(d Decomposition) []workflow.AgentConfig {
	agents := make([]workflow.AgentConfig, len(d.Subtasks))
	for i, st := range d.Subtasks {
		agentType := ClassifyAgentType(st.SubtaskName)
		def := Definition(agentType)
		agents[i] = workflow.AgentConfig{
			MainTaskID:        d.MainTaskID,
			SubtaskID:         st.SubtaskID,
			TaskAssigned:      st.SubtaskName,
			AgentType:         string(agentType),
			SystemInstruction: def.SystemInstruction,
			ToolWhitelist:     def.ToolWhitelist,
			ParallelGroup:     st.ParallelGroup,
			Dependencies:      st.Dependencies,
		}
	}
	return agents
}

// evaluate scores every agent report and the system as a whole, then
// moves the task to its final terminal status.
func (s *Supervisor) evaluate(ctx context.Context, taskID string, result workflow.Result) {
	perAgent := make(map[string]evaluator.AgentEvaluation, len(result.Reports))
	evaluations := make([]evaluator.AgentEvaluation, 0, len(result.Reports))

	for id, report := range result.Reports {
		eval, err := s.evaluator.EvaluateAgent(ctx, toEvaluatorReport(report))
		if err != nil {
			logger.GetLogger().Error("agent evaluation failed", "task_id", taskID, "subtask_id", id, "error", err)
			continue
		}
		perAgent[id] = eval
		evaluations = append(evaluations, eval)
	}

	systemEval, err := s.evaluator.EvaluateSystem(ctx, evaluations)
	if err != nil {
		logger.GetLogger().Error("system evaluation failed", "task_id", taskID, "error", err)
	}

	s.setEvaluations(taskID, &Evaluations{PerAgent: perAgent, System: systemEval})

	finalStatus := StatusCompleted
	if result.Outcome == workflow.OutcomeCompletedWithErrors {
		finalStatus = StatusCompletedWithErrors
	}
	s.transition(taskID, finalStatus)
}

// toEvaluatorReport adapts a workflow.AgentReport to the minimal view
// evaluator.Evaluator needs.
func toEvaluatorReport(r workflow.AgentReport) evaluator.AgentReport {
	status := "completed"
	if r.Status != workflow.StatusCompleted {
		status = "error"
	}

	output := r.Error
	if text, ok := r.Result.(string); ok && text != "" {
		output = text
	} else if r.Result != nil && output == "" {
		output = r.Reasoning
	}

	return evaluator.AgentReport{
		AgentID:         r.SubtaskID,
		Status:          status,
		Output:          output,
		ExecutionTimeMs: r.Stats.ExecutionTimeMs,
	}
}

// fail moves a task directly to `error`, used when decomposition itself
// fails before any agent ever runs.
func (s *Supervisor) fail(taskID, message string) {
	s.mu.Lock()
	t, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		return
	}
	t.Status = StatusError
	t.ErrorMessage = message
	t.UpdatedAt = time.Now()
	completedAt := time.Now()
	t.CompletedAt = &completedAt
	s.mu.Unlock()

	s.publish(t)
}

// transition moves a task to status and broadcasts the change. It
// returns false (and does nothing) if the task was deleted out from
// under the run loop.
func (s *Supervisor) transition(taskID string, status Status) bool {
	s.mu.Lock()
	t, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	if status.IsTerminal() {
		completedAt := time.Now()
		t.CompletedAt = &completedAt
	}
	s.mu.Unlock()

	s.publish(t)
	return true
}

func (s *Supervisor) setDecomposition(taskID string, d Decomposition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[taskID]; ok {
		t.Decomposition = &d
		t.AgentCount = len(d.Subtasks)
	}
}

func (s *Supervisor) setReports(taskID string, reports map[string]workflow.AgentReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[taskID]; ok {
		t.Reports = reports
	}
}

func (s *Supervisor) setEvaluations(taskID string, evals *Evaluations) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return
	}
	t.Evaluations = evals
	if evals != nil {
		score := float64(evals.System.SystemRating)
		t.OverallScore = &score
	}
}

func (s *Supervisor) publish(t *Task) {
	s.events.Publish(Event{TaskID: t.ID, Status: t.Status, Timestamp: t.UpdatedAt})
}

// snapshot returns a shallow copy of t, safe to hand to callers outside
// the lock that protects the live Task.
func (s *Supervisor) snapshot(t *Task) *Task {
	cp := *t
	return &cp
}

func sortTasksByCreatedDesc(tasks []*Task) {
	for i := 1; i < len(tasks); i++ {
		for j := i; j > 0 && tasks[j].CreatedAt.After(tasks[j-1].CreatedAt); j-- {
			tasks[j], tasks[j-1] = tasks[j-1], tasks[j]
		}
	}
}
