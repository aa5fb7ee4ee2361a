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

// Package metrics exposes the orchestrator's Prometheus instrumentation.
// It has no dependency on pkg/task (only on workflow's event types); the Supervisor feeds it
// workflow.Event values from the same onEvent hook it already uses to
// broadcast task-level events, keeping the engine itself instrumentation-free.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kadirpekel/hector/workflow"
)

var (
	AgentsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orchestrator_agents_dispatched_total",
		Help: "Agents handed to the workflow engine for execution.",
	})

	AgentsTerminal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_agents_terminal_total",
		Help: "Agents reaching a terminal status, by status.",
	}, []string{"status"})

	CohortDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "orchestrator_cohort_duration_seconds",
		Help:    "Time from an agent becoming ready to its terminal state, a proxy for parallel-group cohort latency.",
		Buckets: prometheus.DefBuckets,
	})
)

// Recorder tracks per-agent ready timestamps so CohortDuration can be
// observed when the matching terminal event arrives.
type Recorder struct {
	mu      sync.Mutex
	readyAt map[string]time.Time
}

// NewRecorder creates a Recorder ready to observe workflow.Events.
func NewRecorder() *Recorder {
	return &Recorder{readyAt: make(map[string]time.Time)}
}

// Default is the process-wide Recorder the Supervisor feeds from its
// engine onEvent hook; the orchestrator runs one engine per process, so
// a single shared Recorder is sufficient.
var Default = NewRecorder()

// Observe records the Prometheus side effects of one workflow.Event.
// Safe to call as the engine's OnEvent directly, or chained after
// another OnEvent (e.g. the Supervisor's own broadcast).
func (r *Recorder) Observe(e workflow.Event) {
	switch e.Kind {
	case workflow.EventReadyToExecute:
		r.mu.Lock()
		r.readyAt[e.SubtaskID] = e.Timestamp
		r.mu.Unlock()
	case workflow.EventInProgress:
		AgentsDispatched.Inc()
	case workflow.EventTerminal:
		status := string(e.Status)
		AgentsTerminal.WithLabelValues(status).Inc()

		r.mu.Lock()
		started, ok := r.readyAt[e.SubtaskID]
		if ok {
			delete(r.readyAt, e.SubtaskID)
		}
		r.mu.Unlock()
		if ok {
			CohortDuration.Observe(e.Timestamp.Sub(started).Seconds())
		}
	}
}
