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


package core

import (
	"fmt"
	"time"
)

// ValidateRecord validates a Record according to domain rules.
//
// Validation rules:
//   - Contents must not be empty
//   - Embedding and Meta must be present together, or both absent
//   - When dimension > 0 and an embedding is present, its length must match
//   - CreatedAt must not be in the future
//
// NOT validated (populated on insert):
//   - StoreID (0 is valid before persistence)
//   - ExternalID (callers may omit it; the store key is content-derived)
func ValidateRecord(record *Record, dimension int) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyContent)
	}

	hasVector := len(record.Embedding) > 0
	hasMeta := record.Meta != nil
	if hasVector != hasMeta {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrPartialEmbedding)
	}

	if hasVector && dimension > 0 && len(record.Embedding) != dimension {
		return fmt.Errorf("%w: %w: expected %d, got %d",
			ErrInvalidRecord, ErrDimensionMismatch, dimension, len(record.Embedding))
	}

	if !IsValidTimestamp(record.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidTimestamp)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
// The zero value is valid; it is stamped on insert.
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
