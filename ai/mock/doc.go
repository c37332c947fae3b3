// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Summarizer,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run
// without external AI service dependencies and enable controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewProvider()
//	embedding, err := provider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder := mock.NewEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) (*ai.Embedding, error) {
//	    return nil, ai.NewTransientError(429, errors.New("rate limited"))
//	}
//
//	// Concurrency and call-count assertions
//	count := embedder.CallCount()
//	peak := embedder.MaxConcurrent()
//
// # Default Behavior
//
//   - Embedder: Returns deterministic vectors based on text hash, with a
//     fixed token count per call
//   - Summarizer: Echoes a canned summary naming the document count
//   - Provider: Aggregates mock embedder and summarizer
package mock
