package tool

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

type fakeTool struct {
	name string
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake" }
func (f *fakeTool) Schema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{Type: "object"}
}
func (f *fakeTool) Call(_ context.Context, args map[string]any) (map[string]any, error) {
	return map[string]any{"echo": args}, nil
}

func TestRegistry_RegisterAndCall(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeTool{name: "echo"}))

	result, err := r.Call(context.Background(), "echo", map[string]any{"x": 1})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"x": 1}, result["echo"])
}

func TestRegistry_DuplicateNameErrors(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeTool{name: "echo"}))
	require.Error(t, r.Register(&fakeTool{name: "echo"}))
}

func TestRegistry_CallUnknownTool(t *testing.T) {
	r := NewRegistry()
	_, err := r.Call(context.Background(), "missing", nil)
	require.ErrorIs(t, err, ErrNotFound)
}
