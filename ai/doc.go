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


// Package ai provides abstractions for the AI services used in Retrievit.
//
// This package defines interfaces for text embedding and result
// summarization. It follows the dependency inversion principle, allowing
// the ingestion pipeline and search engine to depend on abstractions
// rather than concrete providers.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates a vector embedding plus usage accounting for text
//   - Summarizer: Produces a free-text summary of a result set
//   - AIProvider: Aggregates AI services for convenient initialization
//
// # Failure Taxonomy
//
// Provider failures are classified as transient or terminal via
// *ProviderError. Transient failures (HTTP 429, 5xx, timeouts) are
// eligible for retry by upstream callers; terminal failures (other 4xx,
// malformed input, auth) mark the item as failed immediately. Errors of
// unknown origin are treated as transient, since retrying them is safe
// and network-level faults rarely carry an HTTP status.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// interface types to enforce abstraction. Test utility constructors
// (mock.NewEmbedder, mock.NewSummarizer) return concrete types to enable
// behavior injection and call-count assertions.
package ai
