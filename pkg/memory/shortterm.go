package memory

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultShortTermTTL is how long a short-term fact survives before
// eviction, absent an explicit TTL on Set.
const DefaultShortTermTTL = 15 * time.Minute

// ShortTerm is a TTL-expiring per-agent key/value scratchpad. Keys are
// namespaced by agent ID so agents never see each other's working
// state, matching the spec's "per-agent short-term store" wording while
// adding realistic expiry instead of an unbounded map.
type ShortTerm struct {
	cache *gocache.Cache
}

// NewShortTerm creates a short-term store with the given default TTL
// and a cleanup interval of half that TTL.
func NewShortTerm(defaultTTL time.Duration) *ShortTerm {
	if defaultTTL <= 0 {
		defaultTTL = DefaultShortTermTTL
	}
	return &ShortTerm{cache: gocache.New(defaultTTL, defaultTTL/2)}
}

func key(agentID, k string) string {
	return agentID + "::" + k
}

// Set stores a value for an agent with the store's default TTL.
func (s *ShortTerm) Set(agentID, k string, v any) {
	s.cache.SetDefault(key(agentID, k), v)
}

// SetWithTTL stores a value for an agent with an explicit TTL.
func (s *ShortTerm) SetWithTTL(agentID, k string, v any, ttl time.Duration) {
	s.cache.Set(key(agentID, k), v, ttl)
}

// Get retrieves a value previously set for an agent.
func (s *ShortTerm) Get(agentID, k string) (any, bool) {
	return s.cache.Get(key(agentID, k))
}

// Delete removes a value for an agent.
func (s *ShortTerm) Delete(agentID, k string) {
	s.cache.Delete(key(agentID, k))
}

// Clear drops every short-term fact (used between task runs in tests).
func (s *ShortTerm) Clear() {
	s.cache.Flush()
}

// String fetches a string value, returning an error if absent or of the
// wrong type; a small convenience since agent prompts are string-heavy.
func (s *ShortTerm) String(agentID, k string) (string, error) {
	v, ok := s.Get(agentID, k)
	if !ok {
		return "", fmt.Errorf("memory: no short-term value for key %q", k)
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("memory: short-term value for key %q is not a string", k)
	}
	return str, nil
}
