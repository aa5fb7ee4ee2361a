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

package vector

import (
	"context"
	"fmt"
)

// Gateway is the batch-oriented facade the rest of the orchestrator talks
// to. It adapts the per-item Provider interface to the list-oriented
// Add/Query contract used by task decomposition, agent memory, and
// knowledge-base lookups.
type Gateway struct {
	provider Provider
}

// NewGateway wraps a Provider in the Gateway's batch API.
func NewGateway(p Provider) *Gateway {
	if p == nil {
		p = NilProvider{}
	}
	return &Gateway{provider: p}
}

// Backend returns the name of the underlying provider ("chromem", "qdrant", "pinecone", ...).
func (g *Gateway) Backend() string {
	return g.provider.Name()
}

// GetOrCreateCollection ensures the named collection exists, sized for
// vectors of the given dimension. Backends that create collections
// implicitly on first write treat this as a best-effort hint.
func (g *Gateway) GetOrCreateCollection(ctx context.Context, name string, dimension int) error {
	return g.provider.CreateCollection(ctx, name, dimension)
}

// Add upserts a batch of (id, embedding, metadata, document) tuples into
// a collection. The four slices must be the same length; document text
// is folded into each item's metadata under the "content" key so search
// results can recover it regardless of backend.
func (g *Gateway) Add(ctx context.Context, collection string, ids []string, embeddings [][]float32, metadatas []map[string]any, documents []string) error {
	if len(ids) != len(embeddings) {
		return fmt.Errorf("vector: ids/embeddings length mismatch (%d vs %d)", len(ids), len(embeddings))
	}
	for i, id := range ids {
		meta := map[string]any{}
		if i < len(metadatas) && metadatas[i] != nil {
			for k, v := range metadatas[i] {
				meta[k] = v
			}
		}
		if i < len(documents) && documents[i] != "" {
			meta["content"] = documents[i]
		}
		if err := g.provider.Upsert(ctx, collection, id, embeddings[i], meta); err != nil {
			return fmt.Errorf("vector: add %q to %q: %w", id, collection, err)
		}
	}
	return nil
}

// Query runs a similarity search, optionally narrowed by an equality filter
// (applied to item metadata by the backend). Results are ordered by
// descending similarity.
func (g *Gateway) Query(ctx context.Context, collection string, embedding []float32, nResults int, where map[string]any) ([]Result, error) {
	if len(where) == 0 {
		return g.provider.Search(ctx, collection, embedding, nResults)
	}
	return g.provider.SearchWithFilter(ctx, collection, embedding, nResults, where)
}

// Count returns the number of items stored in a collection.
func (g *Gateway) Count(ctx context.Context, collection string) (int, error) {
	return g.provider.Count(ctx, collection)
}

// Delete removes a single item from a collection by ID.
func (g *Gateway) Delete(ctx context.Context, collection, id string) error {
	return g.provider.Delete(ctx, collection, id)
}

// Close releases backend resources (connections, file handles).
func (g *Gateway) Close() error {
	return g.provider.Close()
}

// ProvisionCollections creates the four gateway-managed collections,
// sized for the given embedding dimension. Called once at startup.
func (g *Gateway) ProvisionCollections(ctx context.Context, dimension int) error {
	for _, name := range []string{CollectionTasks, CollectionAgentExecs, CollectionKnowledge, CollectionAgentMemory} {
		if err := g.GetOrCreateCollection(ctx, name, dimension); err != nil {
			return fmt.Errorf("vector: provision %q: %w", name, err)
		}
	}
	return nil
}
