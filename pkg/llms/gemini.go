package llms

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider implements LLMProvider against Google's genai SDK.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
}

// GeminiConfig configures a GeminiProvider.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
}

// NewGeminiProvider creates a provider bound to the given model.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llms: gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llms: create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: cfg.Model, temperature: cfg.Temperature}, nil
}

func (p *GeminiProvider) ModelName() string { return p.model }
func (p *GeminiProvider) Close() error      { return nil }

// Generate sends the conversation to Gemini's GenerateContent endpoint.
func (p *GeminiProvider) Generate(ctx context.Context, messages []Message, tools []ToolDefinition) (Response, error) {
	var system string
	contents := make([]*genai.Content, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case "system":
			system += m.Content + "\n"
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(p.temperature)}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(strings.TrimSpace(system), genai.RoleUser)
	}
	if len(tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, t := range tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  convertSchema(t.Parameters),
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return Response{}, fmt.Errorf("llms: gemini generate: %w", err)
	}
	if len(result.Candidates) == 0 {
		return Response{}, fmt.Errorf("llms: gemini returned no candidates")
	}

	var resp Response
	cand := result.Candidates[0]
	for _, part := range cand.Content.Parts {
		if part.Text != "" {
			resp.Text += part.Text
		}
		if part.FunctionCall != nil {
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{
				ID:        part.FunctionCall.Name,
				Name:      part.FunctionCall.Name,
				Arguments: part.FunctionCall.Args,
			})
		}
	}
	if result.UsageMetadata != nil {
		resp.Tokens = int(result.UsageMetadata.TotalTokenCount)
	}
	resp.FinishReason = string(cand.FinishReason)

	return resp, nil
}

// convertSchema turns our JSON-schema-as-map parameters into genai's
// typed Schema. Only the subset the orchestrator's tools actually use
// (object/string/number/boolean/array) is handled.
func convertSchema(params map[string]any) *genai.Schema {
	if params == nil {
		return &genai.Schema{Type: genai.TypeObject}
	}

	schema := &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}
	props, _ := params["properties"].(map[string]any)
	for name, raw := range props {
		propMap, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		schema.Properties[name] = &genai.Schema{
			Type:        genaiType(propMap["type"]),
			Description: fmt.Sprint(propMap["description"]),
		}
	}
	if req, ok := params["required"].([]string); ok {
		schema.Required = req
	}
	return schema
}

func genaiType(t any) genai.Type {
	switch fmt.Sprint(t) {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeObject
	}
}

var _ LLMProvider = (*GeminiProvider)(nil)
