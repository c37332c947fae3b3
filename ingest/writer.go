package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/docstore"
)

const (
	// DefaultWriteGroupSize is the default number of records per bulk write.
	DefaultWriteGroupSize = 100

	maxWriteGroupSize = 200
)

// WriteReport accounts for the persistence of one scheduler batch.
// Inserted plus len(Failed) always equals the number of successfully
// embedded records handed to Write.
type WriteReport struct {
	Inserted    int
	InsertedIDs []core.ID
	Failed      []docstore.BulkError
}

// Writer stamps embeddings onto records and persists them with unordered
// bulk writes, so one rejected document never blocks its group.
type Writer struct {
	store      docstore.Store
	collection string
	groupSize  int
	logger     *slog.Logger
}

// NewWriter creates a writer for the given collection. A groupSize of zero
// or below selects the default; values above 200 are clamped.
func NewWriter(store docstore.Store, collection string, groupSize int, logger *slog.Logger) (*Writer, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	if groupSize <= 0 {
		groupSize = DefaultWriteGroupSize
	}
	if groupSize > maxWriteGroupSize {
		groupSize = maxWriteGroupSize
	}

	return &Writer{
		store:      store,
		collection: collection,
		groupSize:  groupSize,
		logger:     logger.With("component", "writer"),
	}, nil
}

// Write persists the successfully embedded results. The vector and its
// provenance metadata are stamped onto each record together before the
// write, so a persisted document always carries both or neither.
//
// Store-level failures are folded into the report as per-record failures
// rather than aborting the run; the only error returned is context
// cancellation.
func (w *Writer) Write(ctx context.Context, results []EmbeddingResult) (*WriteReport, error) {
	now := time.Now().UTC()

	records := make([]*core.Record, 0, len(results))
	for _, result := range results {
		if result.Err != nil || result.Embedding == nil {
			continue
		}
		record := result.Record
		record.Embedding = result.Embedding.Vector
		record.Meta = &core.EmbeddingMeta{
			Model:     result.Embedding.Model,
			APISource: result.Embedding.APISource,
			Tokens:    result.Embedding.Tokens,
			Cost:      result.Embedding.Cost,
			CreatedAt: now,
		}
		records = append(records, record)
	}

	report := &WriteReport{}
	for start := 0; start < len(records); start += w.groupSize {
		if err := ctx.Err(); err != nil {
			for _, record := range records[start:] {
				report.Failed = append(report.Failed, docstore.BulkError{ExternalID: record.ExternalID, Err: err})
			}
			return report, err
		}

		end := min(start+w.groupSize, len(records))
		group := records[start:end]

		result, err := w.store.BulkInsert(ctx, w.collection, group, docstore.BulkOptions{})
		if err != nil {
			w.logger.Error("bulk write failed", "collection", w.collection, "records", len(group), "err", err)
			for _, record := range group {
				report.Failed = append(report.Failed, docstore.BulkError{ExternalID: record.ExternalID, Err: err})
			}
			continue
		}

		report.Inserted += result.Inserted
		report.InsertedIDs = append(report.InsertedIDs, result.InsertedIDs...)
		report.Failed = append(report.Failed, result.Failed...)
	}

	return report, nil
}
