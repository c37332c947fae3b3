package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/docstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(externalID, title, contents string) *core.Record {
	return &core.Record{
		ExternalID: externalID,
		Title:      title,
		Contents:   contents,
	}
}

func embeddedRecord(externalID, title, contents string, vector []float32) *core.Record {
	r := testRecord(externalID, title, contents)
	r.Embedding = vector
	r.Meta = &core.EmbeddingMeta{Model: "mock-embedding", APISource: "mock", Tokens: 3}
	return r
}

func TestCheckSearchable_Discrimination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("missing collection", func(t *testing.T) {
		err := store.CheckSearchable(ctx, "cases", "lexical_idx")
		perr, ok := docstore.IsPrecondition(err)
		require.True(t, ok)
		assert.Equal(t, docstore.CheckCollection, perr.Check)
	})

	require.NoError(t, store.CreateCollection(ctx, "cases"))

	t.Run("empty collection", func(t *testing.T) {
		err := store.CheckSearchable(ctx, "cases", "lexical_idx")
		perr, ok := docstore.IsPrecondition(err)
		require.True(t, ok)
		assert.Equal(t, docstore.CheckDocuments, perr.Check)
	})

	_, err := store.BulkInsert(ctx, "cases", []*core.Record{
		testRecord("TC-1", "Login", "User logs in"),
	}, docstore.BulkOptions{})
	require.NoError(t, err)

	t.Run("missing index", func(t *testing.T) {
		err := store.CheckSearchable(ctx, "cases", "lexical_idx")
		perr, ok := docstore.IsPrecondition(err)
		require.True(t, ok)
		assert.Equal(t, docstore.CheckIndex, perr.Check)
		assert.Equal(t, "lexical_idx", perr.Index)
	})

	require.NoError(t, store.EnsureIndex(ctx, "cases", "lexical_idx", docstore.IndexLexical))

	t.Run("all preconditions met", func(t *testing.T) {
		assert.NoError(t, store.CheckSearchable(ctx, "cases", "lexical_idx"))
	})
}

func TestEnsureIndex(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("collection required", func(t *testing.T) {
		err := store.EnsureIndex(ctx, "missing", "idx", docstore.IndexLexical)
		perr, ok := docstore.IsPrecondition(err)
		require.True(t, ok)
		assert.Equal(t, docstore.CheckCollection, perr.Check)
	})

	require.NoError(t, store.CreateCollection(ctx, "cases"))
	require.NoError(t, store.EnsureIndex(ctx, "cases", "idx", docstore.IndexVector))

	t.Run("idempotent for same kind", func(t *testing.T) {
		assert.NoError(t, store.EnsureIndex(ctx, "cases", "idx", docstore.IndexVector))
	})

	t.Run("kind mismatch rejected", func(t *testing.T) {
		err := store.EnsureIndex(ctx, "cases", "idx", docstore.IndexLexical)
		assert.ErrorIs(t, err, docstore.ErrIndexKindMismatch)
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		err := store.EnsureIndex(ctx, "cases", "other", docstore.IndexKind("btree"))
		assert.ErrorIs(t, err, docstore.ErrInvalidQuery)
	})
}

func TestBulkInsert_Unordered_PartialFailure(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []*core.Record{
		testRecord("TC-1", "Login", "valid"),
		{ExternalID: "TC-2", Title: "broken"}, // empty contents fails validation
		testRecord("TC-3", "Logout", "also valid"),
	}

	result, err := store.BulkInsert(ctx, "cases", records, docstore.BulkOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Inserted)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "TC-2", result.Failed[0].ExternalID)
	assert.ErrorIs(t, result.Failed[0].Err, core.ErrEmptyContent)

	// The bad document did not prevent the rest of the group.
	count, err := store.Count(ctx, "cases")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestBulkInsert_Ordered_StopsAtFirstFailure(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []*core.Record{
		testRecord("TC-1", "a", "first"),
		{ExternalID: "TC-2"},
		testRecord("TC-3", "c", "third"),
	}

	result, err := store.BulkInsert(ctx, "cases", records, docstore.BulkOptions{Ordered: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Inserted)
	assert.Len(t, result.Failed, 1)

	count, err := store.Count(ctx, "cases")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "ordered write stops before TC-3")
}

func TestBulkInsert_DuplicateKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := testRecord("TC-1", "Login", "same contents")
	_, err := store.BulkInsert(ctx, "cases", []*core.Record{first}, docstore.BulkOptions{})
	require.NoError(t, err)

	dup := testRecord("TC-1", "Login", "same contents")
	result, err := store.BulkInsert(ctx, "cases", []*core.Record{dup}, docstore.BulkOptions{})
	require.NoError(t, err)

	assert.Zero(t, result.Inserted)
	require.Len(t, result.Failed, 1)
	assert.ErrorIs(t, result.Failed[0].Err, docstore.ErrDuplicateKey)
}

func TestBulkInsert_AccountingInvariant(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []*core.Record{
		testRecord("TC-1", "a", "one"),
		{ExternalID: "bad-1"},
		testRecord("TC-2", "b", "two"),
		{ExternalID: "bad-2"},
		testRecord("TC-3", "c", "three"),
	}

	result, err := store.BulkInsert(ctx, "cases", records, docstore.BulkOptions{})
	require.NoError(t, err)
	assert.Equal(t, len(records), result.Inserted+len(result.Failed), "no silent loss")
	assert.Len(t, result.InsertedIDs, result.Inserted)
}

func TestGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := embeddedRecord("TC-1", "Login", "User logs in", []float32{0.1, 0.2, 0.3})
	result, err := store.BulkInsert(ctx, "cases", []*core.Record{record}, docstore.BulkOptions{})
	require.NoError(t, err)
	require.Len(t, result.InsertedIDs, 1)

	got, err := store.Get(ctx, "cases", result.InsertedIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "TC-1", got.ExternalID)
	assert.Equal(t, record.Embedding, got.Embedding)
	require.NotNil(t, got.Meta)
	assert.Equal(t, "mock-embedding", got.Meta.Model)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt is stamped on insert")

	_, err = store.Get(ctx, "cases", core.ID(12345))
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestCount_MissingCollection(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Count(context.Background(), "nope")
	perr, ok := docstore.IsPrecondition(err)
	require.True(t, ok)
	assert.Equal(t, docstore.CheckCollection, perr.Check)
}
