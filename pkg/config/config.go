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

// Package config loads the orchestrator's YAML configuration: server
// port, LLM provider selection, vector store and embedder selection,
// MCP bounds, rate limiting, and event-broadcaster backend. Mirrors the
// teacher's env-expansion approach (pkg/config/env.go) but drops its
// multi-provider (file/Zookeeper/Consul), database-pool, and RAG/auth
// surfaces — this orchestrator is a single-process service with no
// distributed-config or multi-tenant-auth requirement.
package config

import (
	"github.com/kadirpekel/hector/pkg/embedders"
	"github.com/kadirpekel/hector/pkg/llms"
	"github.com/kadirpekel/hector/pkg/ratelimit"
	"github.com/kadirpekel/hector/pkg/vector"
)

// ServerConfig configures the External HTTP/Event Surface.
type ServerConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`

	// Broadcaster selects the task-event fan-out backend: "channel"
	// (default, in-process) or "nats" (multi-subscriber, out-of-process).
	Broadcaster string `yaml:"broadcaster,omitempty"`
	NATSURL     string `yaml:"nats_url,omitempty"`
}

// LoggingConfig configures pkg/logger.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // simple, verbose
}

// MCPConfig bounds the per-agent Model Context Protocol window.
type MCPConfig struct {
	MaxMessages int `yaml:"max_messages,omitempty"`
	MaxTokens   int `yaml:"max_tokens,omitempty"`
}

// MemoryConfig configures Agent Memory's short-term TTL; long-term
// storage always rides the configured VectorStore + Embedder.
type MemoryConfig struct {
	ShortTermTTLSeconds int `yaml:"short_term_ttl_seconds,omitempty"`
}

// ToolsConfig configures the built-in tool set every agent shares.
type ToolsConfig struct {
	WebSearchEndpoint string `yaml:"web_search_endpoint,omitempty"`
}

// RateLimitConfig configures the Agent Runtime's proactive per-agent
// LLM budget (pkg/ratelimit), distinct from the Evaluator's reactive
// 429 backoff, which is unconditional and not configurable.
type RateLimitConfig struct {
	Enabled bool                  `yaml:"enabled,omitempty"`
	Limits  []ratelimit.LimitSpec `yaml:"limits,omitempty"`
}

// Config is the orchestrator's full runtime configuration, decoded from
// YAML after environment-variable expansion.
type Config struct {
	Server  ServerConfig  `yaml:"server,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`

	// Decomposition is the LLM used to turn a task description into a
	// Decomposition; Execution is the LLM every agent's tool-call loop
	// generates against. They may point at the same or different
	// providers/models.
	Decomposition llms.Config `yaml:"decomposition,omitempty"`
	Execution     llms.Config `yaml:"execution,omitempty"`

	Embedder    embedders.Config      `yaml:"embedder,omitempty"`
	VectorStore vector.ProviderConfig `yaml:"vector_store,omitempty"`

	MCP       MCPConfig       `yaml:"mcp,omitempty"`
	Memory    MemoryConfig    `yaml:"memory,omitempty"`
	Tools     ToolsConfig     `yaml:"tools,omitempty"`
	RateLimit RateLimitConfig `yaml:"rate_limit,omitempty"`
}

// SetDefaults fills in the zero-config values used by `orchestrator
// serve` when no config file is given: stub LLM/embedder providers and
// an embedded chromem-go vector store, so the orchestrator runs without
// any external services or API keys.
func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Broadcaster == "" {
		c.Server.Broadcaster = "channel"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "simple"
	}
	if c.Decomposition.Type == "" {
		c.Decomposition.Type = "stub"
	}
	if c.Execution.Type == "" {
		c.Execution.Type = "stub"
	}
	if c.Embedder.Type == "" {
		c.Embedder.Type = "stub"
	}
	c.VectorStore.SetDefaults()
	if c.MCP.MaxMessages == 0 {
		c.MCP.MaxMessages = 30
	}
	if c.MCP.MaxTokens == 0 {
		c.MCP.MaxTokens = 8000
	}
	if c.Memory.ShortTermTTLSeconds == 0 {
		c.Memory.ShortTermTTLSeconds = 900
	}
}

// Validate checks the decoded configuration for obviously invalid
// values before anything is constructed from it.
func (c *Config) Validate() error {
	if err := c.VectorStore.Validate(); err != nil {
		return err
	}
	if c.Server.Broadcaster != "channel" && c.Server.Broadcaster != "nats" {
		return invalidValueError("server.broadcaster", c.Server.Broadcaster, []string{"channel", "nats"})
	}
	if c.Server.Broadcaster == "nats" && c.NATSURLMissing() {
		return invalidValueError("server.nats_url", "", nil)
	}
	return nil
}

// NATSURLMissing reports whether a NATS broadcaster was selected
// without a connection URL.
func (c *Config) NATSURLMissing() bool {
	return c.Server.NATSURL == ""
}
