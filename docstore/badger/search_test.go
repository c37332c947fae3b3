package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/docstore"
)

func seedSearchable(t *testing.T, store *Store, records ...*core.Record) {
	t.Helper()
	ctx := context.Background()
	result, err := store.BulkInsert(ctx, "cases", records, docstore.BulkOptions{})
	require.NoError(t, err)
	require.Empty(t, result.Failed)
	require.NoError(t, store.EnsureIndex(ctx, "cases", "lexical_idx", docstore.IndexLexical))
	require.NoError(t, store.EnsureIndex(ctx, "cases", "vector_idx", docstore.IndexVector))
}

func TestLexicalSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedSearchable(t, store,
		testRecord("TC-1", "Login with valid credentials", "User enters name and password, clicks login"),
		testRecord("TC-2", "Password reset", "User requests a password reset email"),
		testRecord("TC-3", "Cart checkout", "User pays for items in the cart"),
	)

	t.Run("ranks by term overlap", func(t *testing.T) {
		hits, err := store.LexicalSearch(ctx, "cases", "lexical_idx", "login password", nil, 10)
		require.NoError(t, err)
		require.Len(t, hits, 2, "checkout document has zero relevance and is excluded")
		assert.Equal(t, "TC-1", hits[0].Record.ExternalID, "two login mentions plus password outranks one")
		assert.Greater(t, hits[0].LexicalScore, hits[1].LexicalScore)
		assert.Zero(t, hits[0].VectorScore, "lexical hits never carry a vector score")
	})

	t.Run("respects limit", func(t *testing.T) {
		hits, err := store.LexicalSearch(ctx, "cases", "lexical_idx", "user", nil, 1)
		require.NoError(t, err)
		assert.Len(t, hits, 1)
	})

	t.Run("field selection", func(t *testing.T) {
		hits, err := store.LexicalSearch(ctx, "cases", "lexical_idx", "checkout", []string{"title"}, 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "TC-3", hits[0].Record.ExternalID)
	})

	t.Run("empty query yields no hits", func(t *testing.T) {
		hits, err := store.LexicalSearch(ctx, "cases", "lexical_idx", "  ", nil, 10)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("missing index is a precondition error", func(t *testing.T) {
		_, err := store.LexicalSearch(ctx, "cases", "missing_idx", "login", nil, 10)
		perr, ok := docstore.IsPrecondition(err)
		require.True(t, ok)
		assert.Equal(t, docstore.CheckIndex, perr.Check)
	})

	t.Run("wrong index kind rejected", func(t *testing.T) {
		_, err := store.LexicalSearch(ctx, "cases", "vector_idx", "login", nil, 10)
		assert.ErrorIs(t, err, docstore.ErrIndexKindMismatch)
	})
}

func TestVectorSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedSearchable(t, store,
		embeddedRecord("TC-1", "a", "near", []float32{1, 0, 0}),
		embeddedRecord("TC-2", "b", "far", []float32{0, 1, 0}),
		embeddedRecord("TC-3", "c", "close", []float32{0.9, 0.1, 0}),
		testRecord("TC-4", "d", "no embedding yet"),
	)

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		hits, err := store.VectorSearch(ctx, "cases", "vector_idx", []float32{1, 0, 0}, 10, 3)
		require.NoError(t, err)
		require.Len(t, hits, 3, "record without embedding is skipped")
		assert.Equal(t, "TC-1", hits[0].Record.ExternalID)
		assert.Equal(t, "TC-3", hits[1].Record.ExternalID)
		assert.Equal(t, "TC-2", hits[2].Record.ExternalID)
		assert.InDelta(t, 1.0, hits[0].VectorScore, 1e-6)
		assert.Zero(t, hits[0].LexicalScore, "vector hits never carry a lexical score")
	})

	t.Run("numCandidates must cover limit", func(t *testing.T) {
		_, err := store.VectorSearch(ctx, "cases", "vector_idx", []float32{1, 0, 0}, 2, 5)
		assert.ErrorIs(t, err, docstore.ErrInvalidQuery)
	})

	t.Run("missing index is a precondition error", func(t *testing.T) {
		_, err := store.VectorSearch(ctx, "cases", "missing_idx", []float32{1, 0, 0}, 10, 3)
		perr, ok := docstore.IsPrecondition(err)
		require.True(t, ok)
		assert.Equal(t, docstore.CheckIndex, perr.Check)
	})
}

func TestSearch_DeterministicTieBreak(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Identical embeddings produce identical scores; order must fall back
	// to ascending StoreID.
	seedSearchable(t, store,
		embeddedRecord("TC-1", "a", "one", []float32{1, 0}),
		embeddedRecord("TC-2", "b", "two", []float32{1, 0}),
		embeddedRecord("TC-3", "c", "three", []float32{1, 0}),
	)

	first, err := store.VectorSearch(ctx, "cases", "vector_idx", []float32{1, 0}, 10, 3)
	require.NoError(t, err)
	second, err := store.VectorSearch(ctx, "cases", "vector_idx", []float32{1, 0}, 10, 3)
	require.NoError(t, err)

	require.Len(t, first, 3)
	for i := range first {
		assert.Equal(t, first[i].Record.StoreID, second[i].Record.StoreID)
	}
	assert.Less(t, first[0].Record.StoreID, first[1].Record.StoreID)
	assert.Less(t, first[1].Record.StoreID, first[2].Record.StoreID)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
