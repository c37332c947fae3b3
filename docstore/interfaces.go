package docstore

import (
	"context"

	"github.com/poiesic/retrievit/core"
)

// IndexKind distinguishes the two search index types a collection can carry.
type IndexKind string

const (
	// IndexLexical is a keyword-relevance index over text fields.
	IndexLexical IndexKind = "lexical"

	// IndexVector is a nearest-neighbor index over embedding vectors.
	IndexVector IndexKind = "vector"
)

// Hit is one ranked result from a store query. LexicalScore and VectorScore
// are raw, method-native scores on incomparable scales; exactly one of them
// is populated depending on which operation produced the hit.
type Hit struct {
	Record       *core.Record
	LexicalScore float64
	VectorScore  float64
}

// BulkOptions control bulk write behavior.
type BulkOptions struct {
	// Ordered stops at the first failing document when true. The default
	// (false) attempts every document and reports per-document failures,
	// so one malformed document never prevents the rest of the group from
	// being written.
	Ordered bool
}

// BulkError reports one document that a bulk write rejected.
type BulkError struct {
	ExternalID string
	Err        error
}

// BulkResult accounts for a bulk write. Inserted plus len(Failed) always
// equals the number of documents attempted.
type BulkResult struct {
	Inserted    int
	InsertedIDs []core.ID
	Failed      []BulkError
}

// Store is the document store boundary. Implementations must be
// thread-safe and support concurrent access.
type Store interface {
	// CreateCollection makes the collection exist. Idempotent.
	CreateCollection(ctx context.Context, collection string) error

	// EnsureIndex makes the named search index exist on the collection
	// with the given kind. Idempotent. Returns an error if the collection
	// does not exist or the index exists with a different kind.
	EnsureIndex(ctx context.Context, collection, index string, kind IndexKind) error

	// CheckSearchable verifies the preconditions for querying: the
	// collection exists, contains at least one document, and the named
	// index exists. Violations surface as *PreconditionError identifying
	// the failed check.
	CheckSearchable(ctx context.Context, collection, index string) error

	// Count returns the number of documents in the collection.
	// Returns *PreconditionError when the collection does not exist.
	Count(ctx context.Context, collection string) (int, error)

	// Get retrieves a single document by its store identifier.
	// Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, collection string, id core.ID) (*core.Record, error)

	// BulkInsert writes a group of documents. Store identifiers are
	// content-derived for records arriving with StoreID zero; CreatedAt is
	// stamped when unset. See BulkOptions for ordered/unordered semantics.
	BulkInsert(ctx context.Context, collection string, records []*core.Record, opts BulkOptions) (*BulkResult, error)

	// LexicalSearch ranks documents by keyword relevance of query against
	// the given fields and returns up to limit hits with LexicalScore set.
	// Documents with zero relevance are not returned.
	LexicalSearch(ctx context.Context, collection, index, query string, fields []string, limit int) ([]Hit, error)

	// VectorSearch ranks documents by similarity to queryVector,
	// considering up to numCandidates documents, and returns up to limit
	// hits with VectorScore set. numCandidates must be >= limit.
	VectorSearch(ctx context.Context, collection, index string, queryVector []float32, numCandidates, limit int) ([]Hit, error)

	// Close closes the store and releases resources.
	Close() error
}
