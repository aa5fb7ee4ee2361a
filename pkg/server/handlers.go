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
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kadirpekel/hector/pkg/task"
	"github.com/kadirpekel/hector/workflow"
)

type createTaskRequest struct {
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

// handleCreateTask implements `POST /tasks` (spec.md §6).
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	priority := task.PriorityMedium
	if req.Priority != "" {
		p := task.Priority(req.Priority)
		if !validPriority(p) {
			writeError(w, http.StatusBadRequest, "invalid priority")
			return
		}
		priority = p
	}

	t := s.supervisor.Submit(r.Context(), req.Description, priority, req.DueDate)
	writeJSON(w, http.StatusCreated, t)
}

// handleListTasks implements `GET /tasks`.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.supervisor.List())
}

// handleGetTask implements `GET /tasks/:id`.
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.supervisor.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleGetTaskAgents implements `GET /tasks/:id/agents`: a map of
// subtaskId -> agent status, built from terminal reports where they
// exist and falling back to "pending" for subtasks not yet reported.
func (s *Server) handleGetTaskAgents(w http.ResponseWriter, r *http.Request) {
	t, err := s.supervisor.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	statuses := make(map[string]workflow.AgentStatus)
	if t.Decomposition != nil {
		for _, sub := range t.Decomposition.Subtasks {
			statuses[sub.SubtaskID] = workflow.StatusPending
		}
	}
	for id, report := range t.Reports {
		statuses[id] = report.Status
	}
	writeJSON(w, http.StatusOK, statuses)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// handleUpdateStatus implements `PUT /tasks/:id/status`.
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status := task.Status(req.Status)
	if !validStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.supervisor.UpdateStatus(id, status); err != nil {
		writeTaskError(w, err)
		return
	}
	t, _ := s.supervisor.Get(id)
	writeJSON(w, http.StatusOK, t)
}

type updatePriorityRequest struct {
	Priority string `json:"priority"`
}

// handleUpdatePriority implements `PUT /tasks/:id/priority`.
func (s *Server) handleUpdatePriority(w http.ResponseWriter, r *http.Request) {
	var req updatePriorityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	priority := task.Priority(req.Priority)
	if !validPriority(priority) {
		writeError(w, http.StatusBadRequest, "invalid priority")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.supervisor.UpdatePriority(id, priority); err != nil {
		writeTaskError(w, err)
		return
	}
	t, _ := s.supervisor.Get(id)
	writeJSON(w, http.StatusOK, t)
}

// handleDeleteTask implements `DELETE /tasks/:id`.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.supervisor.Delete(id); err != nil {
		writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

// handleSystemStats implements `GET /system/stats`: collection counts
// over every known task.
func (s *Server) handleSystemStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, collectStats(s.supervisor))
}

// handleHealthz is the expansion's liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeTaskError(w http.ResponseWriter, err error) {
	var taskErr *task.Error
	if errors.As(err, &taskErr) {
		switch taskErr.Code {
		case "not_found":
			writeError(w, http.StatusNotFound, taskErr.Message)
			return
		case "already_terminal":
			writeError(w, http.StatusConflict, taskErr.Message)
			return
		}
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func validPriority(p task.Priority) bool {
	switch p {
	case task.PriorityLow, task.PriorityMedium, task.PriorityHigh:
		return true
	}
	return false
}

func validStatus(s task.Status) bool {
	switch s {
	case task.StatusPending, task.StatusDecomposing, task.StatusInProgress, task.StatusEvaluating,
		task.StatusCompleted, task.StatusCompletedWithErrors, task.StatusError:
		return true
	}
	return false
}
