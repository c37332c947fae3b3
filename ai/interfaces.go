package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text payload,
	// together with token usage and monetary cost accounting.
	// Failures are reported as *ProviderError where the provider allows
	// classification; see IsTransient.
	EmbedText(ctx context.Context, text string) (*Embedding, error)
}

// Summarizer produces a free-text summary of a ranked result set.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize renders the prompt over the supplied documents and returns
	// the model's free-text answer plus token and cost accounting.
	// Returns an empty summary (not an error) when the model produces no
	// choices.
	Summarize(ctx context.Context, prompt string, docs []string) (*Summary, error)
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// Summarizer instances, ensuring they share configuration appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Summarizer returns the result summarization service.
	// The returned Summarizer is safe for concurrent use.
	Summarizer() Summarizer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
