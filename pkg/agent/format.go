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

package agent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kadirpekel/hector/pkg/memory"
)

// formatDependencyContext renders a subtask's dependency results as a
// single context message, keyed deterministically for reproducible
// prompts across identical runs.
func formatDependencyContext(results map[string]any) string {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString("Results from dependency subtasks:\n")
	for _, id := range ids {
		b.WriteString(fmt.Sprintf("- %s: %s\n", id, stringifyToolResult(results[id])))
	}
	return b.String()
}

// formatRecalledEpisodes renders previously recorded episodes for this
// agent as a single context message.
func formatRecalledEpisodes(episodes []memory.Episode) string {
	var b strings.Builder
	b.WriteString("Relevant prior work from your own history:\n")
	for _, ep := range episodes {
		b.WriteString(fmt.Sprintf("- (%s) %s\n", ep.Role, ep.Content))
	}
	return b.String()
}

// stringifyToolResult renders a tool call's result (a map, per
// tool.CallableTool.Call) or any other value as readable text for
// inclusion in the conversation.
func stringifyToolResult(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(raw)
	}
}
