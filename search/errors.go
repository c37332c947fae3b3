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


package search

import "errors"

var (
	// ErrStoreRequired is returned when a document store is not provided.
	ErrStoreRequired = errors.New("document store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyQuery is returned for a request with no query text.
	ErrEmptyQuery = errors.New("query text cannot be empty")

	// ErrUnknownFusionMethod is returned for an unrecognized fusion policy.
	ErrUnknownFusionMethod = errors.New("unknown fusion method")

	// ErrInvalidWeights is returned when fusion weights do not sum to a
	// positive value.
	ErrInvalidWeights = errors.New("fusion weights must sum to a positive value")

	// ErrInvalidLimit is returned when TopK or Limit is below 1.
	ErrInvalidLimit = errors.New("top-k and limit must be at least 1")

	// ErrInvalidThreshold is returned when the dedup threshold is outside [0,1].
	ErrInvalidThreshold = errors.New("dedup threshold must be in [0,1]")
)
