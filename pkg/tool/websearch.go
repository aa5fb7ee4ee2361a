package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kadirpekel/hector/pkg/httpclient"
)

// WebSearchTool performs a web search via DuckDuckGo's Instant Answer
// API. No search-engine SDK exists anywhere in the example pack, so
// this talks HTTP directly, through the teacher's retrying httpclient.Client
// rather than a bare http.Client, so a flaky search endpoint gets the same
// backoff/retry treatment the teacher gives its LLM provider calls.
type WebSearchTool struct {
	httpClient *httpclient.Client
	endpoint   string
}

// NewWebSearchTool creates a web search tool. An empty endpoint
// defaults to the public DuckDuckGo API.
func NewWebSearchTool(endpoint string) *WebSearchTool {
	if endpoint == "" {
		endpoint = "https://api.duckduckgo.com/"
	}
	return &WebSearchTool{
		httpClient: httpclient.New(httpclient.WithMaxRetries(3)),
		endpoint:   endpoint,
	}
}

func (t *WebSearchTool) Name() string        { return "web_search" }
func (t *WebSearchTool) Description() string { return "Search the web for a short factual query and return a summary." }

func (t *WebSearchTool) Schema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]any{
			"query": map[string]any{"type": "string", "description": "Search query"},
		},
		Required: []string{"query"},
	}
}

type ddgResponse struct {
	AbstractText  string `json:"AbstractText"`
	Heading       string `json:"Heading"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

func (t *WebSearchTool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("web_search: %w: missing required argument %q", ErrInvalidArgs, "query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("web_search: build request: %w", err)
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	req.URL.RawQuery = q.Encode()

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web_search: request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("web_search: decode response: %w", err)
	}

	summary := parsed.AbstractText
	if summary == "" && len(parsed.RelatedTopics) > 0 {
		summary = parsed.RelatedTopics[0].Text
	}
	if summary == "" {
		summary = "no results found"
	}

	return map[string]any{
		"query":   query,
		"heading": parsed.Heading,
		"summary": summary,
	}, nil
}

// ErrInvalidArgs is wrapped by tools when a required argument is missing
// or of the wrong type.
var ErrInvalidArgs = fmt.Errorf("invalid arguments")

var _ CallableTool = (*WebSearchTool)(nil)
