// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
)

// DefaultDimension is the embedding vector length used when a config does
// not override it. It matches text-embedding-3-small.
const DefaultDimension = 1536

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "https://api.openai.com/v1", or a local OpenAI-compatible server.
	EmbeddingHost string

	// SummaryHost is the base URL for the summarization service API.
	SummaryHost string

	// APIKey authenticates against the provider. Use "none" for local
	// OpenAI-compatible services that don't require authentication.
	APIKey string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "text-embedding-3-small", "embeddinggemma"
	EmbeddingModel string

	// SummaryModel is the model identifier to use for result summarization.
	// Example: "gpt-4o-mini", "qwen2.5:3b"
	SummaryModel string

	// APISource labels the provider in persisted embedding metadata.
	// Default: "openai"
	APISource string

	// Dimension is the expected embedding vector length.
	// Default: 1536
	Dimension int

	// EmbeddingPricePerMTok is the embedding price in USD per million
	// tokens, used for cost accounting. Zero disables cost tracking.
	EmbeddingPricePerMTok float64

	// SummaryPricePerMTok is the flat summarization price in USD per
	// million tokens (prompt and completion combined).
	SummaryPricePerMTok float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithSummaryHost sets the summarization service host URL.
func WithSummaryHost(host string) ConfigOption {
	return func(c *Config) {
		c.SummaryHost = host
	}
}

// WithHost sets both embedding and summarization hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.SummaryHost = host
	}
}

// WithAPIKey sets the provider API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithSummaryModel sets the summarization model identifier.
func WithSummaryModel(model string) ConfigOption {
	return func(c *Config) {
		c.SummaryModel = model
	}
}

// WithDimension sets the expected embedding vector length.
func WithDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.Dimension = dim
	}
}

// WithEmbeddingPrice sets the embedding price in USD per million tokens.
func WithEmbeddingPrice(usdPerMTok float64) ConfigOption {
	return func(c *Config) {
		c.EmbeddingPricePerMTok = usdPerMTok
	}
}

// WithSummaryPrice sets the summarization price in USD per million tokens.
func WithSummaryPrice(usdPerMTok float64) ConfigOption {
	return func(c *Config) {
		c.SummaryPricePerMTok = usdPerMTok
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services. By default, embedding and summarization use
// the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:  defaultHost,
		SummaryHost:    defaultHost,
		APIKey:         "none",
		EmbeddingModel: "embeddinggemma",
		SummaryModel:   "qwen2.5:3b",
		APISource:      "openai",
		Dimension:      DefaultDimension,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options. This is the recommended way to create a Config with
// custom settings.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("https://api.openai.com/v1"),
//	    ai.WithEmbeddingModel("text-embedding-3-small"),
//	    ai.WithEmbeddingPrice(0.02),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is
// required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
	}
	if c.SummaryHost != "" && !strings.HasSuffix(c.SummaryHost, "/v1") {
		c.SummaryHost = strings.TrimSuffix(c.SummaryHost, "/") + "/v1"
	}
	if c.APISource == "" {
		c.APISource = "openai"
	}
	if c.Dimension == 0 {
		c.Dimension = DefaultDimension
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.SummaryHost == "" {
		return errors.New("ai config: SummaryHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.SummaryModel == "" {
		return errors.New("ai config: SummaryModel is required")
	}
	if c.Dimension < 1 {
		return errors.New("ai config: Dimension must be positive")
	}
	if c.EmbeddingPricePerMTok < 0 || c.SummaryPricePerMTok < 0 {
		return errors.New("ai config: prices cannot be negative")
	}
	return nil
}

// EmbeddingCost computes the USD cost for the given token usage.
func (c *Config) EmbeddingCost(tokens int) float64 {
	return float64(tokens) / 1_000_000 * c.EmbeddingPricePerMTok
}

// SummaryCost computes the USD cost for the given token usage.
func (c *Config) SummaryCost(tokens int) float64 {
	return float64(tokens) / 1_000_000 * c.SummaryPricePerMTok
}
