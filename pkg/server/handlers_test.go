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

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/hector/pkg/evaluator"
	"github.com/kadirpekel/hector/pkg/llms"
	"github.com/kadirpekel/hector/pkg/task"
	"github.com/kadirpekel/hector/workflow"
)

type fakeDecomposer struct{ decomposition task.Decomposition }

func (f *fakeDecomposer) Decompose(_ context.Context, _, _ string) (task.Decomposition, error) {
	return f.decomposition, nil
}

func stubEvaluatorProvider() *llms.StubProvider {
	p := llms.NewStubProvider("stub-eval")
	p.WithFunc(func(messages []llms.Message, tools []llms.ToolDefinition) (llms.Response, error) {
		return llms.Response{Text: `{"system_rating":7,"analysis":"fine","recommendations":[]}`}, nil
	})
	return p
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	decomposition := task.Decomposition{Subtasks: []task.Subtask{
		{SubtaskID: "s1", SubtaskName: "research the topic", ParallelGroup: "g1"},
	}}
	runner := workflow.RunnerFunc(func(ctx workflow.RunContext) workflow.AgentReport {
		return workflow.AgentReport{SubtaskID: ctx.Agent.SubtaskID, Status: workflow.StatusCompleted, Result: "done"}
	})
	sup := task.New(&fakeDecomposer{decomposition: decomposition}, runner, evaluator.New(stubEvaluatorProvider()))
	return New(sup, NewBroadcaster())
}

func waitForTaskStatus(t *testing.T, s *Server, id string, want task.Status) *task.Task {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		tk, err := s.supervisor.Get(id)
		require.NoError(t, err)
		if tk.Status == want {
			return tk
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("task %s never reached status %s", id, want)
	return nil
}

func TestHandleCreateTask_RequiresDescription(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateTask_RunsToCompletion(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString(`{"description":"launch it","priority":"high"}`))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created task.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, task.PriorityHigh, created.Priority)

	waitForTaskStatus(t, s, created.ID, task.StatusCompleted)

	getReq := httptest.NewRequest(http.MethodGet, "/tasks/"+created.ID, nil)
	getRec := httptest.NewRecorder()
	s.ServeHTTP(getRec, getReq)
	require.Equal(t, http.StatusOK, getRec.Code)
}

func TestHandleGetTask_NotFound(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/tasks/does-not-exist", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleUpdatePriority_RejectsInvalidValue(t *testing.T) {
	s := newTestServer(t)
	created := s.supervisor.Submit(context.Background(), "a task", task.PriorityLow, nil)

	req := httptest.NewRequest(http.MethodPut, "/tasks/"+created.ID+"/priority", bytes.NewBufferString(`{"priority":"urgent"}`))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpdateStatus_RejectsInvalidValue(t *testing.T) {
	s := newTestServer(t)
	created := s.supervisor.Submit(context.Background(), "a task", task.PriorityLow, nil)

	req := httptest.NewRequest(http.MethodPut, "/tasks/"+created.ID+"/status", bytes.NewBufferString(`{"status":"not-a-status"}`))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDeleteTask(t *testing.T) {
	s := newTestServer(t)
	created := s.supervisor.Submit(context.Background(), "a task", task.PriorityLow, nil)

	req := httptest.NewRequest(http.MethodDelete, "/tasks/"+created.ID, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	getReq := httptest.NewRequest(http.MethodGet, "/tasks/"+created.ID, nil)
	getRec := httptest.NewRecorder()
	s.ServeHTTP(getRec, getReq)
	require.Equal(t, http.StatusNotFound, getRec.Code)
}

func TestHandleSystemStats(t *testing.T) {
	s := newTestServer(t)
	s.supervisor.Submit(context.Background(), "a task", task.PriorityLow, nil)

	req := httptest.NewRequest(http.MethodGet, "/system/stats", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, 1, stats.TotalTasks)
}

func TestHandleHealthz(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
