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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyAgentType(t *testing.T) {
	cases := map[string]AgentType{
		"Research the competitive landscape": AgentResearcher,
		"find relevant vendor docs":           AgentResearcher,
		"Gather customer feedback":            AgentResearcher,
		"Plan the rollout":                    AgentPlanner,
		"schedule the maintenance window":     AgentPlanner,
		"organize the backlog":                AgentPlanner,
		"break down the migration":            AgentPlanner,
		"Evaluate the proposal":               AgentEvaluator,
		"assess risk exposure":                AgentEvaluator,
		"review the draft":                    AgentEvaluator,
		"Execute the deploy":                  AgentExecutor,
		"perform the cutover":                 AgentExecutor,
		"implement the fix":                   AgentExecutor,
		"write a poem about autumn":            AgentGeneral,
	}

	for name, want := range cases {
		require.Equal(t, want, ClassifyAgentType(name), "subtask: %q", name)
	}
}

func TestClassifyAgentType_FirstMatchWins(t *testing.T) {
	// "research a plan" contains both a RESEARCHER and PLANNER keyword;
	// the registry is checked in declaration order, RESEARCHER first.
	require.Equal(t, AgentResearcher, ClassifyAgentType("research a plan for next quarter"))
}

func TestDefinition_FallsBackToGeneral(t *testing.T) {
	def := Definition(AgentType("UNKNOWN"))
	require.Equal(t, agentDefinitions[AgentGeneral], def)
}
