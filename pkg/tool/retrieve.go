package tool

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kadirpekel/hector/pkg/embedders"
	"github.com/kadirpekel/hector/pkg/vector"
)

// RetrieveTool performs a semantic lookup against the knowledge_base
// collection of the Vector Store Gateway, letting agents ground their
// work in previously indexed documents.
type RetrieveTool struct {
	gateway  *vector.Gateway
	embedder embedders.EmbedderProvider
}

// NewRetrieveTool creates a document-retrieval tool.
func NewRetrieveTool(gateway *vector.Gateway, embedder embedders.EmbedderProvider) *RetrieveTool {
	return &RetrieveTool{gateway: gateway, embedder: embedder}
}

func (t *RetrieveTool) Name() string { return "retrieve_documents" }
func (t *RetrieveTool) Description() string {
	return "Retrieve relevant documents from the knowledge base for a query."
}

func (t *RetrieveTool) Schema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]any{
			"query":     map[string]any{"type": "string", "description": "Natural-language query"},
			"top_k":     map[string]any{"type": "integer", "description": "Number of results to return"},
		},
		Required: []string{"query"},
	}
}

func (t *RetrieveTool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("retrieve_documents: %w: missing required argument %q", ErrInvalidArgs, "query")
	}

	topK := 5
	if v, ok := args["top_k"].(float64); ok && v > 0 {
		topK = int(v)
	}

	embedding, err := t.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieve_documents: embed query: %w", err)
	}

	results, err := t.gateway.Query(ctx, vector.CollectionKnowledge, embedding, topK, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve_documents: query gateway: %w", err)
	}

	docs := make([]map[string]any, 0, len(results))
	for _, r := range results {
		docs = append(docs, map[string]any{
			"id":      r.ID,
			"content": r.Content,
			"score":   r.Score,
		})
	}

	return map[string]any{"documents": docs}, nil
}

var _ CallableTool = (*RetrieveTool)(nil)
