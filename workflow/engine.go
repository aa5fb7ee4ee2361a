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

package workflow

import (
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Engine drives a set of agents to terminal states honoring dependency
// order and parallel-group batching (spec.md §4.2). It is fatal-free:
// Run always returns a complete report map, synthesizing error/stalled
// reports rather than propagating a Go error.
type Engine struct {
	runner Runner
}

// New creates an Engine that dispatches ready agents to runner.
func New(runner Runner) *Engine {
	return &Engine{runner: runner}
}

// Run drives agents to completion, emitting one event per state change
// via onEvent (which may be nil).
func (e *Engine) Run(agents []AgentConfig, onEvent OnEvent) Result {
	if onEvent == nil {
		onEvent = func(Event) {}
	}

	statuses := make(map[string]AgentStatus, len(agents))
	reports := make(map[string]AgentReport, len(agents))

	for _, a := range agents {
		statuses[a.SubtaskID] = StatusPending
		onEvent(Event{SubtaskID: a.SubtaskID, Status: StatusPending, Kind: EventPending, Timestamp: now()})
	}

	completed := make(map[string]bool, len(agents))

	for !allTerminal(statuses) {
		ready := readySet(agents, statuses, completed)

		if len(ready) == 0 {
			e.handleNoProgress(agents, statuses, reports, completed, onEvent)
			break
		}

		groups := groupByParallelGroup(ready)
		for _, groupName := range sortedGroupNames(groups) {
			e.runGroup(groups[groupName], statuses, reports, completed, onEvent)
		}
	}

	return Result{Reports: reports, Outcome: outcomeFor(reports)}
}

// readySet computes { a | a.status = pending AND deps(a) subset completed }.
func readySet(agents []AgentConfig, statuses map[string]AgentStatus, completed map[string]bool) []AgentConfig {
	var ready []AgentConfig
	for _, a := range agents {
		if statuses[a.SubtaskID] != StatusPending {
			continue
		}
		if dependenciesSatisfied(a, completed) {
			ready = append(ready, a)
		}
	}
	return ready
}

func dependenciesSatisfied(a AgentConfig, completed map[string]bool) bool {
	for _, dep := range a.Dependencies {
		if !completed[dep] {
			return false
		}
	}
	return true
}

func allTerminal(statuses map[string]AgentStatus) bool {
	for _, s := range statuses {
		if !s.IsTerminal() {
			return false
		}
	}
	return true
}

// handleNoProgress implements the error-cascade / stall branch of
// spec.md §4.2 step 2 when the ready set is empty but not every agent
// is terminal.
func (e *Engine) handleNoProgress(agents []AgentConfig, statuses map[string]AgentStatus, reports map[string]AgentReport, completed map[string]bool, onEvent OnEvent) {
	nonTerminal := nonTerminalAgents(agents, statuses)

	if allHaveErroredDependency(nonTerminal, reports) {
		for _, a := range nonTerminal {
			markAndEmit(a.SubtaskID, StatusBlockedErr, "blocked: a dependency reported an error", statuses, reports, completed, onEvent)
		}
		return
	}

	for _, a := range nonTerminal {
		markAndEmit(a.SubtaskID, StatusStalled, "stalled: unsatisfiable dependency (cycle or unknown id)", statuses, reports, completed, onEvent)
	}
}

func nonTerminalAgents(agents []AgentConfig, statuses map[string]AgentStatus) []AgentConfig {
	var out []AgentConfig
	for _, a := range agents {
		if !statuses[a.SubtaskID].IsTerminal() {
			out = append(out, a)
		}
	}
	return out
}

func allHaveErroredDependency(agents []AgentConfig, reports map[string]AgentReport) bool {
	if len(agents) == 0 {
		return false
	}
	for _, a := range agents {
		if !hasErroredDependency(a, reports) {
			return false
		}
	}
	return true
}

func hasErroredDependency(a AgentConfig, reports map[string]AgentReport) bool {
	for _, dep := range a.Dependencies {
		if r, ok := reports[dep]; ok && r.Status == StatusError {
			return true
		}
	}
	return false
}

func markAndEmit(subtaskID string, status AgentStatus, reason string, statuses map[string]AgentStatus, reports map[string]AgentReport, completed map[string]bool, onEvent OnEvent) {
	statuses[subtaskID] = status
	completed[subtaskID] = true
	report := AgentReport{SubtaskID: subtaskID, Status: status, Error: reason, EndTime: now()}
	reports[subtaskID] = report
	onEvent(Event{SubtaskID: subtaskID, Status: status, Kind: EventTerminal, Timestamp: now(), Report: &report})
}

func groupByParallelGroup(ready []AgentConfig) map[string][]AgentConfig {
	groups := make(map[string][]AgentConfig)
	for _, a := range ready {
		groups[a.ParallelGroup] = append(groups[a.ParallelGroup], a)
	}
	return groups
}

// sortedGroupNames gives a stable (lexicographic), not necessarily
// dependency-optimal, group dispatch order, matching spec.md §4.2's
// "arbitrary but stable order" requirement.
func sortedGroupNames(groups map[string][]AgentConfig) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// runGroup launches every agent in one parallel group concurrently and
// awaits the whole cohort before returning, per spec.md §4.2 step 3-4.
func (e *Engine) runGroup(group []AgentConfig, statuses map[string]AgentStatus, reports map[string]AgentReport, completed map[string]bool, onEvent OnEvent) {
	var g errgroup.Group
	results := make([]AgentReport, len(group))

	for i, a := range group {
		i, a := i, a
		statuses[a.SubtaskID] = StatusReady
		onEvent(Event{SubtaskID: a.SubtaskID, Status: StatusReady, Kind: EventReadyToExecute, Timestamp: now()})

		depResults := dependencyResults(a, reports)

		// The in-progress transition is computed here, before the
		// goroutine launches, rather than inside it: statuses is shared
		// across every agent in the cohort and every other map here is
		// only ever touched after g.Wait, so a write from inside the
		// goroutine would race concurrently with its cohort-mates.
		statuses[a.SubtaskID] = StatusInProgress
		onEvent(Event{SubtaskID: a.SubtaskID, Status: StatusInProgress, Kind: EventInProgress, Timestamp: now()})

		g.Go(func() error {
			results[i] = e.runOne(a, depResults)
			return nil
		})
	}
	_ = g.Wait()

	for i, a := range group {
		report := results[i]
		statuses[a.SubtaskID] = report.Status
		completed[a.SubtaskID] = true
		reports[a.SubtaskID] = report
		onEvent(Event{SubtaskID: a.SubtaskID, Status: report.Status, Kind: EventTerminal, Timestamp: now(), Report: &report})
	}
}

// dependencyResults materializes { depId: report(depId).result } for an
// agent's already-completed dependencies, per spec.md §4.2 step 4.
func dependencyResults(a AgentConfig, reports map[string]AgentReport) map[string]any {
	out := make(map[string]any, len(a.Dependencies))
	for _, dep := range a.Dependencies {
		if r, ok := reports[dep]; ok {
			out[dep] = r.Result
		}
	}
	return out
}

// runOne invokes the Runner for one agent, synthesizing an error report
// rather than propagating a panic (spec.md §4.2 step 5: "on any agent
// exception, synthesize an error report rather than propagating").
func (e *Engine) runOne(a AgentConfig, depResults map[string]any) (report AgentReport) {
	defer func() {
		if r := recover(); r != nil {
			report = AgentReport{
				SubtaskID:    a.SubtaskID,
				TaskAssigned: a.TaskAssigned,
				Status:       StatusError,
				EndTime:      now(),
				Error:        "agent runtime panicked",
			}
		}
	}()

	return e.runner.Run(RunContext{Agent: a, Results: depResults})
}

func outcomeFor(reports map[string]AgentReport) Outcome {
	for _, r := range reports {
		if r.Status == StatusError || r.Status == StatusBlockedErr || r.Status == StatusStalled {
			return OutcomeCompletedWithErrors
		}
	}
	return OutcomeCompletedSuccessfully
}

func now() time.Time { return time.Now() }
