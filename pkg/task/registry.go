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

import "strings"

// AgentType is one of the fixed agent roles the Supervisor assigns to a
// Subtask by keyword match against its name (spec.md §4.1, Agent
// Registry). The mapping is static; it is not learned or configurable.
type AgentType string

const (
	AgentResearcher AgentType = "RESEARCHER"
	AgentPlanner    AgentType = "PLANNER"
	AgentEvaluator  AgentType = "EVALUATOR"
	AgentExecutor   AgentType = "EXECUTOR"
	AgentGeneral    AgentType = "GENERAL"
)

// agentTypeKeywords is checked in declaration order; the first type
// whose keyword set matches the subtask name wins. GENERAL is the
// fallback when nothing matches.
var agentTypeKeywords = []struct {
	agentType AgentType
	keywords  []string
}{
	{AgentResearcher, []string{"research", "find", "gather"}},
	{AgentPlanner, []string{"plan", "schedule", "organize", "break down"}},
	{AgentEvaluator, []string{"evaluate", "assess", "review"}},
	{AgentExecutor, []string{"execute", "perform", "implement"}},
}

// AgentDefinition pairs an AgentType with the system instruction and
// tool whitelist the Engine hands to its Runner for every subtask
// classified that way.
type AgentDefinition struct {
	SystemInstruction string
	ToolWhitelist     []string
}

var agentDefinitions = map[AgentType]AgentDefinition{
	AgentResearcher: {
		SystemInstruction: "You are a research agent. Gather and summarize information relevant to the assigned subtask using the tools available to you. Cite what you find; do not speculate beyond it.",
		ToolWhitelist:     []string{"web_search", "retrieve_documents"},
	},
	AgentPlanner: {
		SystemInstruction: "You are a planning agent. Break the assigned subtask into a concrete, ordered plan and surface any dependency or sequencing the rest of the system should know about.",
		ToolWhitelist:     []string{"retrieve_documents", "summarize"},
	},
	AgentEvaluator: {
		SystemInstruction: "You are an evaluation agent. Critically assess the work described in the assigned subtask against the stated goal and report concrete gaps.",
		ToolWhitelist:     []string{"retrieve_documents", "summarize"},
	},
	AgentExecutor: {
		SystemInstruction: "You are an execution agent. Carry out the assigned subtask directly using the tools available to you and report what you did.",
		ToolWhitelist:     []string{"web_search", "retrieve_documents"},
	},
	AgentGeneral: {
		SystemInstruction: "You are a general-purpose agent. Complete the assigned subtask as well as you can with the tools available to you.",
		ToolWhitelist:     []string{"web_search", "retrieve_documents", "summarize"},
	},
}

// ClassifyAgentType maps a subtask name to a fixed AgentType by keyword
// match, per spec.md §4.1. Matching is case-insensitive substring
// search; GENERAL is returned when no keyword matches.
func ClassifyAgentType(subtaskName string) AgentType {
	lower := strings.ToLower(subtaskName)
	for _, entry := range agentTypeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.agentType
			}
		}
	}
	return AgentGeneral
}

// Definition returns the system instruction and tool whitelist for t.
func Definition(t AgentType) AgentDefinition {
	if def, ok := agentDefinitions[t]; ok {
		return def
	}
	return agentDefinitions[AgentGeneral]
}
