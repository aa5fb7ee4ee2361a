package tool

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kadirpekel/hector/pkg/llms"
)

// SummarizeTool condenses a block of text via the configured LLM
// provider. Grounded on the teacher's LLMEvaluator.scoreWithLLM pattern
// of using a provider for a single-shot, narrowly-prompted completion.
type SummarizeTool struct {
	provider llms.LLMProvider
}

// NewSummarizeTool creates a summarization tool backed by provider.
func NewSummarizeTool(provider llms.LLMProvider) *SummarizeTool {
	return &SummarizeTool{provider: provider}
}

func (t *SummarizeTool) Name() string { return "summarize" }
func (t *SummarizeTool) Description() string {
	return "Summarize a block of text into a few sentences."
}

func (t *SummarizeTool) Schema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]any{
			"text":       map[string]any{"type": "string", "description": "Text to summarize"},
			"max_points": map[string]any{"type": "integer", "description": "Maximum number of bullet points"},
		},
		Required: []string{"text"},
	}
}

func (t *SummarizeTool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	text, _ := args["text"].(string)
	if text == "" {
		return nil, fmt.Errorf("summarize: %w: missing required argument %q", ErrInvalidArgs, "text")
	}

	maxPoints := 3
	if v, ok := args["max_points"].(float64); ok && v > 0 {
		maxPoints = int(v)
	}

	prompt := fmt.Sprintf("Summarize the following text in at most %d bullet points:\n\n%s", maxPoints, text)
	resp, err := t.provider.Generate(ctx, []llms.Message{{Role: "user", Content: prompt}}, nil)
	if err != nil {
		return nil, fmt.Errorf("summarize: generation failed: %w", err)
	}

	return map[string]any{"summary": resp.Text}, nil
}

var _ CallableTool = (*SummarizeTool)(nil)
