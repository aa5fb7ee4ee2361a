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

// Package memory implements the orchestrator's Agent Memory: a
// short-term, TTL-expiring per-agent key/value store plus a long-term
// episodic store backed by the Vector Store Gateway's agent_memory
// collection.
package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kadirpekel/hector/pkg/embedders"
	"github.com/kadirpekel/hector/pkg/vector"
)

// Episode is a single remembered turn of an agent's work, stored in the
// long-term vector index.
type Episode struct {
	AgentID string
	TaskID  string
	Role    string // "user", "assistant", "tool", "error"
	Content string
}

// LongTerm is the embed-then-upsert-then-query episodic store, adapted
// from the teacher's VectorMemoryStrategy to this orchestrator's agent
// and task identifiers in place of session IDs.
type LongTerm struct {
	gateway  *vector.Gateway
	embedder embedders.EmbedderProvider
}

// NewLongTerm creates a long-term memory store over the gateway's
// agent_memory collection.
func NewLongTerm(gateway *vector.Gateway, embedder embedders.EmbedderProvider) (*LongTerm, error) {
	if gateway == nil {
		return nil, fmt.Errorf("memory: vector gateway is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("memory: embedder is required")
	}
	return &LongTerm{gateway: gateway, embedder: embedder}, nil
}

// Remember embeds and stores a batch of episodes for an agent.
func (l *LongTerm) Remember(ctx context.Context, episodes []Episode) error {
	if len(episodes) == 0 {
		return nil
	}

	ids := make([]string, 0, len(episodes))
	embeddings := make([][]float32, 0, len(episodes))
	metadatas := make([]map[string]any, 0, len(episodes))
	documents := make([]string, 0, len(episodes))

	for i, ep := range episodes {
		if ep.Content == "" {
			continue
		}
		vec, err := l.embedder.Embed(ctx, ep.Content)
		if err != nil {
			return fmt.Errorf("memory: embed episode %d: %w", i, err)
		}
		ids = append(ids, uuid.New().String())
		embeddings = append(embeddings, vec)
		metadatas = append(metadatas, map[string]any{
			"agent_id": ep.AgentID,
			"task_id":  ep.TaskID,
			"role":     ep.Role,
		})
		documents = append(documents, ep.Content)
	}

	return l.gateway.Add(ctx, vector.CollectionAgentMemory, ids, embeddings, metadatas, documents)
}

// TopK returns the k most semantically relevant episodes an agent has
// previously recorded, narrowed by agent ID.
func (l *LongTerm) TopK(ctx context.Context, agentID, query string, k int) ([]Episode, error) {
	if query == "" {
		return nil, nil
	}

	queryVec, err := l.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("memory: embed query: %w", err)
	}

	results, err := l.gateway.Query(ctx, vector.CollectionAgentMemory, queryVec, k, map[string]any{"agent_id": agentID})
	if err != nil {
		return nil, fmt.Errorf("memory: query recall: %w", err)
	}

	episodes := make([]Episode, 0, len(results))
	for _, r := range results {
		role, _ := r.Metadata["role"].(string)
		taskID, _ := r.Metadata["task_id"].(string)
		episodes = append(episodes, Episode{
			AgentID: agentID,
			TaskID:  taskID,
			Role:    role,
			Content: r.Content,
		})
	}
	return episodes, nil
}
