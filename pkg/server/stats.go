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

import "github.com/kadirpekel/hector/pkg/task"

// Stats is the `GET /system/stats` response body: collection counts
// over every known task (spec.md §6).
type Stats struct {
	TotalTasks      int `json:"totalTasks"`
	Pending         int `json:"pending"`
	InProgress      int `json:"inProgress"`
	Completed       int `json:"completed"`
	CompletedErrors int `json:"completedWithErrors"`
	Errored         int `json:"errored"`
}

func collectStats(sup *task.Supervisor) Stats {
	var stats Stats
	for _, t := range sup.List() {
		stats.TotalTasks++
		switch t.Status {
		case task.StatusPending, task.StatusDecomposing:
			stats.Pending++
		case task.StatusInProgress, task.StatusEvaluating:
			stats.InProgress++
		case task.StatusCompleted:
			stats.Completed++
		case task.StatusCompletedWithErrors:
			stats.CompletedErrors++
		case task.StatusError:
			stats.Errored++
		}
	}
	return stats
}
