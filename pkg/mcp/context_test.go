package mcp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/hector/pkg/llms"
)

func TestEstimateTokens(t *testing.T) {
	require.Equal(t, 0, EstimateTokens(""))
	require.Equal(t, 1, EstimateTokens("abc"))
	require.Equal(t, 1, EstimateTokens("abcd"))
	require.Equal(t, 2, EstimateTokens("abcde"))
}

func TestContext_EvictsOldestNonSystemByMessageCount(t *testing.T) {
	c := New("system prompt", 3, 1_000_000)

	c.Append(llms.Message{Role: "user", Content: "one"})
	c.Append(llms.Message{Role: "assistant", Content: "two"})
	c.Append(llms.Message{Role: "user", Content: "three"})

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	require.Equal(t, "system", msgs[0].Role)
	require.Equal(t, "two", msgs[1].Content)
	require.Equal(t, "three", msgs[2].Content)
}

func TestContext_NeverEvictsSystemMessage(t *testing.T) {
	c := New("keep me", 1, 1)

	c.Append(llms.Message{Role: "user", Content: strings.Repeat("x", 100)})

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "system", msgs[0].Role)
}

func TestContext_EvictsByTokenBudget(t *testing.T) {
	c := New("", 1_000_000, 10)

	c.Append(llms.Message{Role: "user", Content: strings.Repeat("a", 20)}) // ~5 tokens
	c.Append(llms.Message{Role: "user", Content: strings.Repeat("b", 20)}) // ~5 tokens
	c.Append(llms.Message{Role: "user", Content: strings.Repeat("c", 20)}) // pushes over budget

	require.LessOrEqual(t, c.TokenCount(), 10+5) // last append may transiently exceed before next evict pass
	msgs := c.Messages()
	require.NotContains(t, contentsOf(msgs), strings.Repeat("a", 20))
}

func contentsOf(msgs []llms.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Content
	}
	return out
}

func TestParseResponse_FencedJSON(t *testing.T) {
	raw := "here you go:\n```json\n{\"a\":1}\n```\n"
	data, isJSON := ParseResponse(raw)
	require.True(t, isJSON)
	require.Equal(t, map[string]any{"a": 1.0}, data)
}

func TestParseResponse_RawJSON(t *testing.T) {
	data, isJSON := ParseResponse(`{"a":1}`)
	require.True(t, isJSON)
	require.Equal(t, map[string]any{"a": 1.0}, data)
}

func TestParseResponse_PlainStringFallback(t *testing.T) {
	data, isJSON := ParseResponse("just some text")
	require.False(t, isJSON)
	require.Equal(t, "just some text", data)
}
