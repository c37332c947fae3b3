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


// Package docstore defines the document store boundary for Retrievit.
//
// The store exposes two read operations (LexicalSearch and VectorSearch),
// one write operation (BulkInsert with unordered semantics), and the
// precondition checks the query side runs before searching. Raw scores are
// method-specific: a Hit carries LexicalScore and VectorScore in separate
// fields because the two scales are not comparable and must never be
// conflated.
//
// Precondition failures are typed (*PreconditionError) and identify which
// check failed (collection missing, collection empty, or index missing) so
// callers can distinguish "not yet provisioned" from a transient outage.
//
// The docstore/badger sub-package provides a BadgerDB-backed
// implementation suitable for embedded and test use.
package docstore
