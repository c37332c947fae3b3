package openai

import (
	"context"
	"errors"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/poiesic/retrievit/ai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	client *openai.Client
	config *ai.Config
	logger *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = config.EmbeddingHost

	return &Embedder{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text payload and
// reports the provider's token usage and the derived cost.
func (e *Embedder) EmbedText(ctx context.Context, text string) (*ai.Embedding, error) {
	if text == "" {
		return nil, ai.NewTerminalError(0, ai.ErrEmptyInput)
	}

	e.logger.Debug("generating embedding", "length", len(text))

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.config.EmbeddingModel),
	})
	if err != nil {
		classified := classify(err)
		e.logger.Error("failed to generate embedding", "err", classified)
		return nil, classified
	}

	if len(resp.Data) == 0 {
		e.logger.Warn("embedder returned empty result")
		return nil, ai.NewTransientError(0, ai.ErrEmptyResponse)
	}

	tokens := resp.Usage.PromptTokens
	if tokens == 0 {
		tokens = resp.Usage.TotalTokens
	}

	return &ai.Embedding{
		Vector:    resp.Data[0].Embedding,
		Tokens:    tokens,
		Cost:      e.config.EmbeddingCost(tokens),
		Model:     e.config.EmbeddingModel,
		APISource: e.config.APISource,
	}, nil
}

// classify maps a go-openai error onto the ai failure taxonomy.
// API and transport errors carry an HTTP status; anything without one is
// treated as transient.
func classify(err error) *ai.ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return ai.ClassifyStatus(apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return ai.ClassifyStatus(reqErr.HTTPStatusCode, err)
	}

	return ai.NewTransientError(0, err)
}
