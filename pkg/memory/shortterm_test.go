package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShortTerm_SetGet(t *testing.T) {
	s := NewShortTerm(time.Minute)
	s.Set("agent-1", "plan", "explore then summarize")

	v, ok := s.Get("agent-1", "plan")
	require.True(t, ok)
	require.Equal(t, "explore then summarize", v)
}

func TestShortTerm_NamespacedByAgent(t *testing.T) {
	s := NewShortTerm(time.Minute)
	s.Set("agent-1", "plan", "a")
	s.Set("agent-2", "plan", "b")

	v1, _ := s.Get("agent-1", "plan")
	v2, _ := s.Get("agent-2", "plan")
	require.Equal(t, "a", v1)
	require.Equal(t, "b", v2)
}

func TestShortTerm_ExpiresAfterTTL(t *testing.T) {
	s := NewShortTerm(time.Millisecond)
	s.Set("agent-1", "ephemeral", "gone soon")

	time.Sleep(20 * time.Millisecond)
	_, ok := s.Get("agent-1", "ephemeral")
	require.False(t, ok)
}

func TestShortTerm_StringTypeMismatch(t *testing.T) {
	s := NewShortTerm(time.Minute)
	s.Set("agent-1", "count", 42)

	_, err := s.String("agent-1", "count")
	require.Error(t, err)
}
