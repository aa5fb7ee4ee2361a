package embedders

import (
	"context"
	"hash/fnv"
)

// StubEmbedder produces deterministic, content-derived vectors without
// calling any external service. Used by tests and the zero-config CLI
// default so the vector store gateway has something consistent to
// index against.
type StubEmbedder struct {
	dimension int
}

// NewStubEmbedder creates a stub embedder producing vectors of dim floats.
func NewStubEmbedder(dim int) *StubEmbedder {
	if dim <= 0 {
		dim = 16
	}
	return &StubEmbedder{dimension: dim}
}

func (e *StubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)
	h := fnv.New32a()
	for i := 0; i < e.dimension; i++ {
		h.Write([]byte{byte(i)})
		h.Write([]byte(text))
		sum := h.Sum32()
		vec[i] = float32(sum%1000) / 1000.0
	}
	return vec, nil
}

func (e *StubEmbedder) Dimension() int    { return e.dimension }
func (e *StubEmbedder) ModelName() string { return "stub-embedder" }
func (e *StubEmbedder) Close() error      { return nil }

var _ EmbedderProvider = (*StubEmbedder)(nil)
