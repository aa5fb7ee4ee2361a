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

// Package mcp implements the orchestrator's Model Context Protocol
// context manager: a bounded, ordered window of conversation messages
// that an agent's tool-call loop reads from and appends to, with
// token-budgeted eviction so long-running agents never grow an
// unbounded request to the LLM.
package mcp

import (
	"fmt"
	"math"
	"sync"

	"github.com/kadirpekel/hector/pkg/llms"
)

const (
	// DefaultMaxMessages bounds the ring by message count regardless of
	// token usage.
	DefaultMaxMessages = 30

	// DefaultMaxTokens bounds the ring by estimated token usage.
	DefaultMaxTokens = 8000
)

// Context is a single agent's bounded, ordered conversation window.
// Safe for concurrent use: an agent's tool calls execute concurrently
// within one loop iteration and may all want to inspect the context
// while it is being appended to.
type Context struct {
	mu          sync.Mutex
	messages    []llms.Message
	maxMessages int
	maxTokens   int
}

// New creates a Context seeded with a system message (always preserved
// across evictions) and the given bounds. A zero value for either bound
// falls back to the package default.
func New(systemPrompt string, maxMessages, maxTokens int) *Context {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	c := &Context{maxMessages: maxMessages, maxTokens: maxTokens}
	if systemPrompt != "" {
		c.messages = append(c.messages, llms.Message{Role: "system", Content: systemPrompt})
	}
	return c
}

// EstimateTokens approximates token usage for a string as
// ceil(len(s)/4), the same crude-but-cheap heuristic the teacher uses
// where a real tokenizer isn't worth the dependency.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	return int(math.Ceil(float64(len(s)) / 4.0))
}

// messageTokens estimates the token cost of one message, including its
// role, content, and any tool call payload.
func messageTokens(m llms.Message) int {
	n := EstimateTokens(m.Content)
	for _, tc := range m.ToolCalls {
		n += EstimateTokens(tc.RawArgs) + EstimateTokens(tc.Name)
	}
	return n
}

// Append adds a message to the end of the context, then evicts the
// oldest non-system message(s) until both bounds are satisfied.
func (c *Context) Append(m llms.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, m)
	c.evictLocked()
}

// evictLocked must be called with c.mu held. It removes the oldest
// non-system message repeatedly until the window satisfies both the
// message-count and token-estimate bounds, matching the spec's
// "evict oldest non-system message" rule exactly (system messages are
// never evicted, even if that leaves the window over budget).
func (c *Context) evictLocked() {
	for c.overBudgetLocked() {
		idx := c.firstNonSystemLocked()
		if idx < 0 {
			return // nothing left to evict
		}
		c.messages = append(c.messages[:idx], c.messages[idx+1:]...)
	}
}

func (c *Context) overBudgetLocked() bool {
	if len(c.messages) > c.maxMessages {
		return true
	}
	return c.totalTokensLocked() > c.maxTokens
}

func (c *Context) totalTokensLocked() int {
	total := 0
	for _, m := range c.messages {
		total += messageTokens(m)
	}
	return total
}

func (c *Context) firstNonSystemLocked() int {
	for i, m := range c.messages {
		if m.Role != "system" {
			return i
		}
	}
	return -1
}

// Messages returns a snapshot of the current window, safe to hand
// directly to an LLMProvider.Generate call.
func (c *Context) Messages() []llms.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]llms.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// TokenCount returns the current estimated token usage of the window.
func (c *Context) TokenCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalTokensLocked()
}

// Len returns the current message count.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Stats reports the context's current occupancy, used in agent reports
// and debug endpoints.
type Stats struct {
	MessageCount int
	TokenCount   int
	MaxMessages  int
	MaxTokens    int
}

// Stats returns a snapshot of the context's occupancy.
func (c *Context) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		MessageCount: len(c.messages),
		TokenCount:   c.totalTokensLocked(),
		MaxMessages:  c.maxMessages,
		MaxTokens:    c.maxTokens,
	}
}

// ErrEmptyContext is returned by operations that require at least one message.
var ErrEmptyContext = fmt.Errorf("mcp: context has no messages")
