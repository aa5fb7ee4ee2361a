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
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kadirpekel/hector/pkg/logger"
	"github.com/kadirpekel/hector/pkg/task"
)

// Server is the orchestrator's HTTP entrypoint: a chi router wired to a
// single Supervisor and its Broadcaster-backed event feed.
type Server struct {
	router      chi.Router
	supervisor  *task.Supervisor
	broadcaster EventBroadcaster
}

// New builds a Server that serves sup through the routes spec.md §6
// names, plus the expansion's /metrics and /healthz.
func New(sup *task.Supervisor, broadcaster EventBroadcaster) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		supervisor:  sup,
		broadcaster: broadcaster,
	}

	s.router.Use(loggingMiddleware)

	s.router.Route("/tasks", func(r chi.Router) {
		r.Post("/", s.handleCreateTask)
		r.Get("/", s.handleListTasks)
		r.Get("/{id}", s.handleGetTask)
		r.Get("/{id}/agents", s.handleGetTaskAgents)
		r.Put("/{id}/status", s.handleUpdateStatus)
		r.Put("/{id}/priority", s.handleUpdatePriority)
		r.Delete("/{id}", s.handleDeleteTask)
	})

	s.router.Get("/system/stats", s.handleSystemStats)
	s.router.Get("/events", s.handleEvents)
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", promhttp.Handler())

	return s
}

// ServeHTTP implements http.Handler, so Server can be handed directly
// to http.Server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// responseWriter wraps http.ResponseWriter to capture the status code
// for logging, and to forward Flush so SSE handlers keep working
// underneath the middleware chain.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		logger.GetLogger().Debug("http request",
			"method", r.Method, "path", r.URL.Path,
			"status", wrapped.statusCode, "duration_ms", time.Since(start).Milliseconds())
	})
}
