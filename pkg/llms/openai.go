package llms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIProvider implements LLMProvider against the Chat Completions API
// via the official SDK.
type OpenAIProvider struct {
	client      openai.Client
	model       string
	temperature float64
}

// OpenAIConfig configures an OpenAIProvider.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	BaseURL     string
}

// NewOpenAIProvider creates a provider bound to the given model.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llms: openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4o
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIProvider{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

func (p *OpenAIProvider) ModelName() string { return p.model }
func (p *OpenAIProvider) Close() error      { return nil }

// Generate sends the conversation to the Chat Completions endpoint.
func (p *OpenAIProvider) Generate(ctx context.Context, messages []Message, tools []ToolDefinition) (Response, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		case "tool":
			msgs = append(msgs, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       p.model,
		Messages:    msgs,
		Temperature: openai.Float(p.temperature),
	}
	for _, t := range tools {
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  t.Parameters,
			},
		})
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if isOpenAIRateLimit(err) {
			return Response{}, &RateLimitError{Err: err}
		}
		return Response{}, fmt.Errorf("llms: openai generate: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Response{}, fmt.Errorf("llms: openai returned no choices")
	}

	choice := completion.Choices[0]
	resp := Response{
		Text:         choice.Message.Content,
		FinishReason: choice.FinishReason,
		Tokens:       int(completion.Usage.TotalTokens),
	}
	for _, tc := range choice.Message.ToolCalls {
		args := map[string]any{}
		_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
			RawArgs:   tc.Function.Arguments,
		})
	}

	return resp, nil
}

func isOpenAIRateLimit(err error) bool {
	var apiErr *openai.Error
	if ae, ok := err.(*openai.Error); ok {
		apiErr = ae
		return apiErr.StatusCode == 429
	}
	return false
}

var _ LLMProvider = (*OpenAIProvider)(nil)
