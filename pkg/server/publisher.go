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
	"encoding/json"
	"sync"

	"github.com/kadirpekel/hector/pkg/logger"
	"github.com/kadirpekel/hector/pkg/task"
	"github.com/kadirpekel/hector/workflow"
)

// agentStatuses is the running taskId -> subtaskId -> status view the
// Publisher keeps, so it can emit the full "agents" snapshot spec.md
// §6 requires ("object mapping taskId -> mapping agentId -> agent
// status on any agent change") without re-querying the Supervisor.
type agentStatuses struct {
	mu   sync.Mutex
	byID map[string]map[string]workflow.AgentStatus
}

func newAgentStatuses() *agentStatuses {
	return &agentStatuses{byID: make(map[string]map[string]workflow.AgentStatus)}
}

func (a *agentStatuses) record(taskID string, e *workflow.Event) map[string]map[string]workflow.AgentStatus {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.byID[taskID]; !ok {
		a.byID[taskID] = make(map[string]workflow.AgentStatus)
	}
	a.byID[taskID][e.SubtaskID] = e.Status

	snapshot := make(map[string]map[string]workflow.AgentStatus, len(a.byID))
	for tid, statuses := range a.byID {
		inner := make(map[string]workflow.AgentStatus, len(statuses))
		for sid, st := range statuses {
			inner[sid] = st
		}
		snapshot[tid] = inner
	}
	return snapshot
}

// Publisher bridges the Supervisor's internal task.Event feed to the
// SSE surface's three named events, per spec.md §6.
type Publisher struct {
	sup         *task.Supervisor
	broadcaster EventBroadcaster
	agents      *agentStatuses

	unsubscribe func()
	done        chan struct{}
}

// StartPublisher subscribes to sup and runs until Stop is called.
func StartPublisher(sup *task.Supervisor, broadcaster EventBroadcaster) *Publisher {
	events, unsubscribe := sup.Subscribe()
	p := &Publisher{
		sup:         sup,
		broadcaster: broadcaster,
		agents:      newAgentStatuses(),
		unsubscribe: unsubscribe,
		done:        make(chan struct{}),
	}
	go p.run(events)
	return p
}

// Stop unsubscribes from the Supervisor, ending the publishing loop.
func (p *Publisher) Stop() {
	p.unsubscribe()
	<-p.done
}

func (p *Publisher) run(events <-chan task.Event) {
	defer close(p.done)
	for e := range events {
		p.publishTasks()

		if e.Agent != nil {
			p.publishAgents(e.TaskID, e.Agent)
		}
		if e.Status.IsTerminal() {
			p.publishStats()
		}
	}
}

func (p *Publisher) publishTasks() {
	data, err := json.Marshal(p.sup.List())
	if err != nil {
		logger.GetLogger().Error("failed to encode tasks event", "error", err)
		return
	}
	p.broadcaster.Publish(Message{Event: "tasks", Data: data})
}

func (p *Publisher) publishAgents(taskID string, e *workflow.Event) {
	snapshot := p.agents.record(taskID, e)
	data, err := json.Marshal(snapshot)
	if err != nil {
		logger.GetLogger().Error("failed to encode agents event", "error", err)
		return
	}
	p.broadcaster.Publish(Message{Event: "agents", Data: data})
}

func (p *Publisher) publishStats() {
	data, err := json.Marshal(collectStats(p.sup))
	if err != nil {
		logger.GetLogger().Error("failed to encode stats event", "error", err)
		return
	}
	p.broadcaster.Publish(Message{Event: "stats", Data: data})
}
