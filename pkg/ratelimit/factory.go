// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ratelimit

// LimitSpec is the plain-value description of one limit rule, used by
// orchestrator configuration to build a RateLimiter without depending
// on this package's internal types.
type LimitSpec struct {
	Type   string // "token" or "count"
	Window string // "minute", "hour", "day", "week", "month"
	Limit  int64
}

// New builds an in-memory RateLimiter from plain limit specs. The
// orchestrator only ever runs a single process per deployment (no
// shared SQL-backed quota store), so MemoryStore is the sole backend.
func New(enabled bool, specs []LimitSpec) (RateLimiter, error) {
	if !enabled {
		return nil, nil
	}

	limits := make([]LimitRule, len(specs))
	for i, s := range specs {
		limits[i] = LimitRule{
			Type:   ParseLimitType(s.Type),
			Window: ParseTimeWindow(s.Window),
			Limit:  s.Limit,
		}
	}

	return NewRateLimiter(&Config{Enabled: enabled, Limits: limits}, NewMemoryStore())
}
