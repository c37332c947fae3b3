package mock

import "github.com/poiesic/retrievit/ai"

// Provider is a test double for ai.AIProvider aggregating mock services.
type Provider struct {
	embedder   *Embedder
	summarizer *Summarizer
}

var _ ai.AIProvider = (*Provider)(nil)

// NewProvider creates a provider backed by default mock services.
// Returns the concrete type so tests can reach the mocks for assertions.
func NewProvider() *Provider {
	return &Provider{
		embedder:   NewEmbedder(),
		summarizer: NewSummarizer(),
	}
}

// Embedder returns the mock embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Summarizer returns the mock summarization service.
func (p *Provider) Summarizer() ai.Summarizer {
	return p.summarizer
}

// MockEmbedder returns the concrete mock for behavior injection and
// call assertions.
func (p *Provider) MockEmbedder() *Embedder {
	return p.embedder
}

// MockSummarizer returns the concrete mock for behavior injection and
// call assertions.
func (p *Provider) MockSummarizer() *Summarizer {
	return p.summarizer
}

// Close is a no-op.
func (p *Provider) Close() error {
	return nil
}
