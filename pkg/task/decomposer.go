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
	"encoding/json"
	"fmt"

	"github.com/kadirpekel/hector/pkg/llms"
	"github.com/kadirpekel/hector/pkg/mcp"
)

// Decomposer turns a task description into a Decomposition. The
// Supervisor calls it once per task, during the `decomposing` status.
type Decomposer interface {
	Decompose(ctx context.Context, taskID, description string) (Decomposition, error)
}

// LLMDecomposer is the production Decomposer: a single structured-JSON
// prompt to an llms.LLMProvider, grounded on the same
// prompt-then-mcp.ParseResponse pattern the evaluator uses.
type LLMDecomposer struct {
	provider llms.LLMProvider
}

// NewLLMDecomposer creates a Decomposer backed by provider.
func NewLLMDecomposer(provider llms.LLMProvider) *LLMDecomposer {
	return &LLMDecomposer{provider: provider}
}

const decompositionPromptTemplate = `Break the following task into a directed acyclic graph of subtasks.
Respond ONLY with a JSON object of the form:
{"subtasks":[{"subtask_id":"...","subtask_name":"...","dependencies":["..."],"parallel_group":"...","complexity":1,"description":"..."}]}

Rules:
- subtask_id values must be unique within the response.
- dependencies must only reference subtask_id values present in this same response.
- the dependency graph must be acyclic.
- parallel_group groups subtasks that may run concurrently once their dependencies are satisfied; subtasks with no real concurrency constraint may share a group.
- complexity is an integer from 1 (trivial) to 5 (very complex).

Task (id=%s): %s`

type rawSubtask struct {
	SubtaskID     string `json:"subtask_id"`
	SubtaskName   string `json:"subtask_name"`
	Dependencies  []string `json:"dependencies"`
	ParallelGroup string `json:"parallel_group"`
	Complexity    int    `json:"complexity"`
	Description   string `json:"description"`
}

type rawDecomposition struct {
	Subtasks []rawSubtask `json:"subtasks"`
}

// Decompose prompts the LLM for a subtask DAG and validates it before
// returning. Validation failures are returned as errors wrapping
// ErrInvalidDecomposition; the Supervisor transitions the task to
// `error` status on any such failure (spec.md §4.1 step 2).
func (d *LLMDecomposer) Decompose(ctx context.Context, taskID, description string) (Decomposition, error) {
	prompt := fmt.Sprintf(decompositionPromptTemplate, taskID, description)

	resp, err := d.provider.Generate(ctx, []llms.Message{{Role: "user", Content: prompt}}, nil)
	if err != nil {
		return Decomposition{}, fmt.Errorf("decomposer: generate: %w", err)
	}

	parsed, isJSON := mcp.ParseResponse(resp.Text)
	if !isJSON {
		return Decomposition{}, fmt.Errorf("%w: decomposer response was not valid JSON", ErrInvalidDecomposition)
	}

	raw, err := json.Marshal(parsed)
	if err != nil {
		return Decomposition{}, fmt.Errorf("decomposer: re-marshal parsed response: %w", err)
	}

	var decoded rawDecomposition
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Decomposition{}, fmt.Errorf("%w: decode subtasks: %v", ErrInvalidDecomposition, err)
	}

	subtasks := make([]Subtask, len(decoded.Subtasks))
	for i, s := range decoded.Subtasks {
		subtasks[i] = Subtask{
			SubtaskID:     s.SubtaskID,
			SubtaskName:   s.SubtaskName,
			Dependencies:  s.Dependencies,
			ParallelGroup: s.ParallelGroup,
			Complexity:    s.Complexity,
			Description:   s.Description,
		}
	}

	decomposition := Decomposition{MainTaskID: taskID, Subtasks: subtasks}
	if err := ValidateDecomposition(decomposition); err != nil {
		return Decomposition{}, err
	}
	return decomposition, nil
}

// ValidateDecomposition checks the three invariants spec.md §3 places
// on a Decomposition: subtask ids are unique, every dependency
// references a subtask id present in the same decomposition, and the
// dependency graph is acyclic.
func ValidateDecomposition(d Decomposition) error {
	if len(d.Subtasks) == 0 {
		return fmt.Errorf("%w: decomposition has no subtasks", ErrInvalidDecomposition)
	}

	seen := make(map[string]bool, len(d.Subtasks))
	for _, s := range d.Subtasks {
		if s.SubtaskID == "" {
			return fmt.Errorf("%w: subtask has empty id", ErrInvalidDecomposition)
		}
		if seen[s.SubtaskID] {
			return fmt.Errorf("%w: duplicate subtask id %q", ErrInvalidDecomposition, s.SubtaskID)
		}
		seen[s.SubtaskID] = true
	}

	for _, s := range d.Subtasks {
		for _, dep := range s.Dependencies {
			if !seen[dep] {
				return fmt.Errorf("%w: subtask %q depends on unknown id %q", ErrInvalidDecomposition, s.SubtaskID, dep)
			}
		}
	}

	if cycle := findCycle(d.Subtasks); cycle != "" {
		return fmt.Errorf("%w: dependency cycle detected at %q", ErrInvalidDecomposition, cycle)
	}
	return nil
}

// findCycle runs a three-color DFS over the dependency graph, returning
// the id where a cycle was detected, or "" if the graph is acyclic.
func findCycle(subtasks []Subtask) string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	byID := make(map[string]Subtask, len(subtasks))
	for _, s := range subtasks {
		byID[s.SubtaskID] = s
	}

	color := make(map[string]int, len(subtasks))
	var visit func(id string) string
	visit = func(id string) string {
		color[id] = gray
		for _, dep := range byID[id].Dependencies {
			switch color[dep] {
			case gray:
				return dep
			case white:
				if found := visit(dep); found != "" {
					return found
				}
			}
		}
		color[id] = black
		return ""
	}

	for _, s := range subtasks {
		if color[s.SubtaskID] == white {
			if found := visit(s.SubtaskID); found != "" {
				return found
			}
		}
	}
	return ""
}
