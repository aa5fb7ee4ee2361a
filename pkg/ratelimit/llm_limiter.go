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

import (
	"context"

	"github.com/kadirpekel/hector/pkg/llms"
)

// LimitedProvider wraps an llms.LLMProvider with a proactive per-agent
// request/token budget, checked before every call. This is the client-side
// complement to the evaluator's reactive 429 backoff (spec.md §5 names LLM
// rate-limit backoff as the system's only adaptive component; this adds the
// other half, refusing to even place a call once an agent's own budget for
// the window is spent).
type LimitedProvider struct {
	llms.LLMProvider
	limiter RateLimiter
	scope   Scope
}

// NewLimitedProvider wraps provider with limiter. A nil limiter makes
// GenerateForAgent a transparent passthrough to the wrapped provider.
func NewLimitedProvider(provider llms.LLMProvider, limiter RateLimiter) *LimitedProvider {
	return &LimitedProvider{LLMProvider: provider, limiter: limiter, scope: ScopeSession}
}

// GenerateForAgent checks agentID's budget before delegating to the wrapped
// provider's Generate. Named distinctly from the embedded Generate so
// *LimitedProvider still satisfies llms.LLMProvider for callers that don't
// need per-agent budgeting.
func (p *LimitedProvider) GenerateForAgent(ctx context.Context, agentID string, messages []llms.Message, tools []llms.ToolDefinition) (llms.Response, error) {
	if p.limiter == nil {
		return p.LLMProvider.Generate(ctx, messages, tools)
	}

	estimated := estimateRequestTokens(messages)
	result, err := p.limiter.CheckAndRecord(ctx, p.scope, agentID, estimated, 1)
	if err != nil {
		return llms.Response{}, err
	}
	if !result.Allowed {
		return llms.Response{}, NewRateLimitError(result)
	}

	return p.LLMProvider.Generate(ctx, messages, tools)
}

func estimateRequestTokens(messages []llms.Message) int64 {
	var total int64
	for _, m := range messages {
		total += int64(len(m.Content)) / 4
	}
	return total
}
