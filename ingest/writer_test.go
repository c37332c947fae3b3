package ingest

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/ai/mock"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/docstore/badger"
)

func embeddedResults(records []*core.Record) []EmbeddingResult {
	results := make([]EmbeddingResult, len(records))
	for i, record := range records {
		results[i] = EmbeddingResult{
			Record: record,
			Embedding: &ai.Embedding{
				Vector:    mock.DeterministicVector(record.EmbeddingText(), 8),
				Tokens:    5,
				Model:     "mock-embedding",
				APISource: "mock",
			},
		}
	}
	return results
}

func TestWriter_PersistsEmbeddedRecords(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	writer, err := NewWriter(store, "docs", 0, slog.Default())
	require.NoError(t, err)

	records := makeRecords(5)
	report, err := writer.Write(context.Background(), embeddedResults(records))
	require.NoError(t, err)

	assert.Equal(t, 5, report.Inserted)
	assert.Len(t, report.InsertedIDs, 5)
	assert.Empty(t, report.Failed)

	count, err := store.Count(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	// Vector and provenance are stamped together.
	got, err := store.Get(context.Background(), "docs", report.InsertedIDs[0])
	require.NoError(t, err)
	assert.Len(t, got.Embedding, 8)
	require.NotNil(t, got.Meta)
	assert.Equal(t, "mock-embedding", got.Meta.Model)
	assert.Equal(t, 5, got.Meta.Tokens)
	assert.False(t, got.Meta.CreatedAt.IsZero())
}

func TestWriter_SkipsFailedResults(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	writer, err := NewWriter(store, "docs", 0, slog.Default())
	require.NoError(t, err)

	records := makeRecords(3)
	results := embeddedResults(records[:2])
	results = append(results, EmbeddingResult{
		Record: records[2],
		Err:    ai.NewTerminalError(400, errors.New("unembeddable")),
	})

	report, err := writer.Write(context.Background(), results)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
	assert.Empty(t, report.Failed)

	count, err := store.Count(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestWriter_AccountsPartialGroupFailure(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	writer, err := NewWriter(store, "docs", 0, slog.Default())
	require.NoError(t, err)

	records := makeRecords(4)
	records[2].Contents = "" // rejected by validation at insert time

	report, err := writer.Write(context.Background(), embeddedResults(records))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Inserted)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "DOC-2", report.Failed[0].ExternalID)

	// Accounting invariant: inserted + failed == embedded.
	assert.Equal(t, 4, report.Inserted+len(report.Failed))
}

func TestWriter_GroupSizeClamping(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	writer, err := NewWriter(store, "docs", 1000, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, maxWriteGroupSize, writer.groupSize)

	writer, err = NewWriter(store, "docs", -1, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, DefaultWriteGroupSize, writer.groupSize)
}

func TestWriter_SplitsIntoGroups(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	writer, err := NewWriter(store, "docs", 2, slog.Default())
	require.NoError(t, err)

	report, err := writer.Write(context.Background(), embeddedResults(makeRecords(5)))
	require.NoError(t, err)
	assert.Equal(t, 5, report.Inserted)
}

func TestWriter_RequiresStore(t *testing.T) {
	_, err := NewWriter(nil, "docs", 0, slog.Default())
	assert.ErrorIs(t, err, ErrStoreRequired)
}
