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

// Package vector implements the orchestrator's Vector Store Gateway: a
// backend-agnostic store for task embeddings, agent execution traces, the
// knowledge base, and per-agent episodic memory.
package vector

import (
	"context"
	"fmt"
)

// Named collections provisioned by the gateway.
const (
	CollectionTasks        = "tasks"
	CollectionAgentExecs   = "agent_executions"
	CollectionKnowledge    = "knowledge_base"
	CollectionAgentMemory  = "agent_memory"
)

// Result is a single scored match returned from a similarity query.
// Score is reported as similarity (1 - distance), higher is better.
type Result struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]any
	Score    float32
}

// Provider is the low-level interface each vector backend implements.
// The Gateway builds its batch-oriented API on top of this.
type Provider interface {
	Name() string
	Upsert(ctx context.Context, collection, id string, vector []float32, metadata map[string]any) error
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]Result, error)
	SearchWithFilter(ctx context.Context, collection string, vector []float32, topK int, filter map[string]any) ([]Result, error)
	Delete(ctx context.Context, collection, id string) error
	DeleteByFilter(ctx context.Context, collection string, filter map[string]any) error
	CreateCollection(ctx context.Context, collection string, vectorDimension int) error
	DeleteCollection(ctx context.Context, collection string) error
	Count(ctx context.Context, collection string) (int, error)
	Close() error
}

// NilProvider is a no-op Provider used when no vector store is configured.
type NilProvider struct{}

func (NilProvider) Name() string { return "nil" }
func (NilProvider) Upsert(context.Context, string, string, []float32, map[string]any) error {
	return fmt.Errorf("vector: no provider configured")
}
func (NilProvider) Search(context.Context, string, []float32, int) ([]Result, error) {
	return nil, fmt.Errorf("vector: no provider configured")
}
func (NilProvider) SearchWithFilter(context.Context, string, []float32, int, map[string]any) ([]Result, error) {
	return nil, fmt.Errorf("vector: no provider configured")
}
func (NilProvider) Delete(context.Context, string, string) error               { return nil }
func (NilProvider) DeleteByFilter(context.Context, string, map[string]any) error { return nil }
func (NilProvider) CreateCollection(context.Context, string, int) error        { return nil }
func (NilProvider) DeleteCollection(context.Context, string) error             { return nil }
func (NilProvider) Count(context.Context, string) (int, error)                 { return 0, nil }
func (NilProvider) Close() error                                               { return nil }

var _ Provider = NilProvider{}
