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


package docstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that the requested document was not found.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicateKey indicates a duplicate store identifier on insert.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrIndexKindMismatch indicates an index already exists with a
	// different kind.
	ErrIndexKindMismatch = errors.New("index exists with different kind")

	// ErrInvalidQuery indicates invalid query parameters.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrStoreClosed indicates that the store is closed.
	ErrStoreClosed = errors.New("store is closed")
)

// PreconditionCheck names the query precondition that failed.
type PreconditionCheck string

const (
	// CheckCollection means the collection (or database) does not exist.
	CheckCollection PreconditionCheck = "collection"

	// CheckDocuments means the collection exists but holds no documents.
	CheckDocuments PreconditionCheck = "documents"

	// CheckIndex means the named search index does not exist.
	CheckIndex PreconditionCheck = "index"
)

// PreconditionError reports a failed query precondition. It identifies
// which check failed so the caller can distinguish "not yet provisioned"
// from a transient outage. Never retried.
type PreconditionError struct {
	Check      PreconditionCheck
	Collection string
	Index      string
}

func (e *PreconditionError) Error() string {
	switch e.Check {
	case CheckCollection:
		return fmt.Sprintf("collection %q does not exist", e.Collection)
	case CheckDocuments:
		return fmt.Sprintf("collection %q contains no documents", e.Collection)
	case CheckIndex:
		return fmt.Sprintf("search index %q does not exist on collection %q", e.Index, e.Collection)
	}
	return fmt.Sprintf("precondition %q failed for collection %q", e.Check, e.Collection)
}

// IsPrecondition reports whether err is a PreconditionError, returning it
// when so.
func IsPrecondition(err error) (*PreconditionError, bool) {
	var perr *PreconditionError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}
