package mock

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/poiesic/retrievit/ai"
)

// Embedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields and tracks call
// concurrency so tests can assert scheduler limits.
type Embedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) (*ai.Embedding, error)

	// Dimension of the default deterministic vectors. Default 8.
	Dimension int

	// TokensPerCall reported by the default behavior. Default 5.
	TokensPerCall int

	// CostPerCall reported by the default behavior.
	CostPerCall float64

	mu            sync.Mutex
	callCount     int
	inFlight      int
	maxConcurrent int
}

// NewEmbedder creates a mock embedder with default deterministic behavior.
// Returns the concrete type to allow test assertions and behavior injection.
func NewEmbedder() *Embedder {
	return &Embedder{Dimension: 8, TokensPerCall: 5}
}

// EmbedText generates a deterministic embedding based on text hash, or
// delegates to EmbedTextFunc when set.
func (m *Embedder) EmbedText(ctx context.Context, text string) (*ai.Embedding, error) {
	m.enter()
	defer m.leave()

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return &ai.Embedding{
		Vector:    DeterministicVector(text, m.Dimension),
		Tokens:    m.TokensPerCall,
		Cost:      m.CostPerCall,
		Model:     "mock-embedding",
		APISource: "mock",
	}, nil
}

// CallCount returns the number of EmbedText calls made so far.
func (m *Embedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// MaxConcurrent returns the peak number of simultaneously in-flight calls
// observed, which tests use to verify scheduler concurrency caps.
func (m *Embedder) MaxConcurrent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxConcurrent
}

// Reset clears counters and injected behavior.
func (m *Embedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.inFlight = 0
	m.maxConcurrent = 0
	m.EmbedTextFunc = nil
}

func (m *Embedder) enter() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.inFlight++
	if m.inFlight > m.maxConcurrent {
		m.maxConcurrent = m.inFlight
	}
}

func (m *Embedder) leave() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
}

// DeterministicVector creates a deterministic unit-normalized embedding
// vector from text. It uses FNV hash so the same text always produces the
// same vector.
func DeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}

	var sumSquares float32
	for _, v := range vector {
		sumSquares += v * v
	}
	if sumSquares > 0 {
		norm := float32(1.0) / float32(sumSquares)
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
