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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/hector/pkg/evaluator"
	"github.com/kadirpekel/hector/pkg/llms"
	"github.com/kadirpekel/hector/workflow"
)

type fakeDecomposer struct {
	decomposition Decomposition
	err           error
}

func (f *fakeDecomposer) Decompose(ctx context.Context, taskID, description string) (Decomposition, error) {
	return f.decomposition, f.err
}

// stubEvaluatorProvider answers both of the evaluator's prompts (score
// dimensions, then freeform feedback) plus the system-evaluation prompt,
// routing on a substring of the prompt text.
func stubEvaluatorProvider() *llms.StubProvider {
	p := llms.NewStubProvider("stub-eval")
	p.WithFunc(func(messages []llms.Message, tools []llms.ToolDefinition) (llms.Response, error) {
		prompt := messages[len(messages)-1].Content
		switch {
		case strings.Contains(prompt, `"accuracy"`):
			return llms.Response{Text: `{"accuracy":{"rating":8,"reason":"ok"},"completeness":{"rating":8,"reason":"ok"},"coherence":{"rating":8,"reason":"ok"}}`}, nil
		case strings.Contains(prompt, "system_rating"):
			return llms.Response{Text: `{"system_rating":8,"analysis":"solid run","recommendations":["none"]}`}, nil
		default:
			return llms.Response{Text: "good work"}, nil
		}
	})
	return p
}

func waitForStatus(t *testing.T, s *Supervisor, taskID string, want Status) *Task {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		tk, err := s.Get(taskID)
		require.NoError(t, err)
		if tk.Status == want {
			return tk
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("task %s never reached status %s", taskID, want)
	return nil
}

func TestSupervisor_SubmitRunsToCompletion(t *testing.T) {
	decomposition := Decomposition{Subtasks: []Subtask{
		{SubtaskID: "s1", SubtaskName: "research the topic", ParallelGroup: "g1"},
		{SubtaskID: "s2", SubtaskName: "plan the rollout", ParallelGroup: "g2", Dependencies: []string{"s1"}},
	}}

	runner := workflow.RunnerFunc(func(ctx workflow.RunContext) workflow.AgentReport {
		return workflow.AgentReport{
			SubtaskID: ctx.Agent.SubtaskID,
			Status:    workflow.StatusCompleted,
			Result:    "done:" + ctx.Agent.SubtaskID,
		}
	})

	eval := evaluator.New(stubEvaluatorProvider())
	sup := New(&fakeDecomposer{decomposition: decomposition}, runner, eval)

	t0 := sup.Submit(context.Background(), "launch the new feature", PriorityHigh, nil)
	require.Equal(t, StatusPending, t0.Status)

	final := waitForStatus(t, sup, t0.ID, StatusCompleted)
	require.NotNil(t, final.Decomposition)
	require.Len(t, final.Reports, 2)
	require.NotNil(t, final.Evaluations)
	require.Len(t, final.Evaluations.PerAgent, 2)
	require.NotNil(t, final.OverallScore)
}

func TestSupervisor_AgentErrorYieldsCompletedWithErrors(t *testing.T) {
	decomposition := Decomposition{Subtasks: []Subtask{
		{SubtaskID: "s1", SubtaskName: "execute the migration", ParallelGroup: "g1"},
	}}

	runner := workflow.RunnerFunc(func(ctx workflow.RunContext) workflow.AgentReport {
		return workflow.AgentReport{SubtaskID: ctx.Agent.SubtaskID, Status: workflow.StatusError, Error: "boom"}
	})

	eval := evaluator.New(stubEvaluatorProvider())
	sup := New(&fakeDecomposer{decomposition: decomposition}, runner, eval)

	t0 := sup.Submit(context.Background(), "migrate the database", PriorityMedium, nil)
	final := waitForStatus(t, sup, t0.ID, StatusCompletedWithErrors)
	require.Equal(t, 1, final.Evaluations.PerAgent["s1"].Accuracy.Value)
}

func TestSupervisor_InvalidDecompositionYieldsError(t *testing.T) {
	runner := workflow.RunnerFunc(func(ctx workflow.RunContext) workflow.AgentReport {
		return workflow.AgentReport{SubtaskID: ctx.Agent.SubtaskID, Status: workflow.StatusCompleted}
	})

	eval := evaluator.New(stubEvaluatorProvider())
	sup := New(&fakeDecomposer{err: ErrInvalidDecomposition}, runner, eval)

	t0 := sup.Submit(context.Background(), "do something ambiguous", PriorityLow, nil)
	final := waitForStatus(t, sup, t0.ID, StatusError)
	require.Contains(t, final.ErrorMessage, "invalid_decomposition")
}

func TestSupervisor_GetListDelete(t *testing.T) {
	eval := evaluator.New(stubEvaluatorProvider())
	runner := workflow.RunnerFunc(func(ctx workflow.RunContext) workflow.AgentReport {
		return workflow.AgentReport{SubtaskID: ctx.Agent.SubtaskID, Status: workflow.StatusCompleted}
	})
	sup := New(&fakeDecomposer{decomposition: Decomposition{Subtasks: []Subtask{{SubtaskID: "s1", SubtaskName: "do a thing"}}}}, runner, eval)

	t0 := sup.Submit(context.Background(), "task one", PriorityLow, nil)

	_, err := sup.Get(t0.ID)
	require.NoError(t, err)
	require.Len(t, sup.List(), 1)

	require.NoError(t, sup.Delete(t0.ID))
	_, err = sup.Get(t0.ID)
	require.Error(t, err)
}

func TestSupervisor_UpdateStatusRejectsTerminal(t *testing.T) {
	eval := evaluator.New(stubEvaluatorProvider())
	runner := workflow.RunnerFunc(func(ctx workflow.RunContext) workflow.AgentReport {
		return workflow.AgentReport{SubtaskID: ctx.Agent.SubtaskID, Status: workflow.StatusCompleted}
	})
	sup := New(&fakeDecomposer{decomposition: Decomposition{Subtasks: []Subtask{{SubtaskID: "s1", SubtaskName: "do a thing"}}}}, runner, eval)

	t0 := sup.Submit(context.Background(), "task one", PriorityLow, nil)
	waitForStatus(t, sup, t0.ID, StatusCompleted)

	err := sup.UpdateStatus(t0.ID, StatusInProgress)
	require.ErrorIs(t, err, ErrAlreadyTerminal)
}
