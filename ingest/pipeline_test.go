package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/ai/mock"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/docstore/badger"
	"github.com/poiesic/retrievit/jobs"
)

type pipelineFixture struct {
	embedder *mock.Embedder
	store    *badger.Store
	tracker  *jobs.Tracker
	pipeline *Pipeline
}

func newPipelineFixture(t *testing.T, opts ...PipelineOption) *pipelineFixture {
	t.Helper()

	embedder := mock.NewEmbedder()
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	scheduler, err := NewScheduler(embedder, slog.Default(),
		WithRetryPolicy(RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}))
	require.NoError(t, err)
	t.Cleanup(scheduler.Release)

	writer, err := NewWriter(store, "docs", 0, slog.Default())
	require.NoError(t, err)

	tracker := jobs.NewTracker()
	t.Cleanup(tracker.Close)

	opts = append([]PipelineOption{WithInterBatchDelay(time.Millisecond)}, opts...)
	pipeline, err := NewPipeline(scheduler, writer, tracker, opts...)
	require.NoError(t, err)

	return &pipelineFixture{
		embedder: embedder,
		store:    store,
		tracker:  tracker,
		pipeline: pipeline,
	}
}

func (f *pipelineFixture) startJob(t *testing.T, records []*core.Record) string {
	t.Helper()
	snap, err := f.tracker.Create(Targets(records))
	require.NoError(t, err)
	return snap.ID
}

func TestPipeline_IngestsAllRecords(t *testing.T) {
	f := newPipelineFixture(t)
	records := makeRecords(7)
	jobID := f.startJob(t, records)

	summary, err := f.pipeline.Run(context.Background(), jobID, records)
	require.NoError(t, err)

	assert.Equal(t, 7, summary.Processed)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, 7*f.embedder.TokensPerCall, summary.Tokens)
	assert.Positive(t, summary.Elapsed)

	snap, ok := f.tracker.Get(jobID)
	require.True(t, ok)
	assert.Equal(t, jobs.StatusCompleted, snap.Status)
	assert.Equal(t, 7, snap.Progress)
	for _, status := range snap.Records {
		assert.Equal(t, jobs.RecordPersisted, status.State)
	}

	count, err := f.store.Count(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestPipeline_CountConservation(t *testing.T) {
	f := newPipelineFixture(t, WithBatchSize(3))
	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) (*ai.Embedding, error) {
		// Every third document fails terminally.
		if strings.Contains(text, "document 2") || strings.Contains(text, "document 5") {
			return nil, ai.NewTerminalError(422, errors.New("unembeddable"))
		}
		return &ai.Embedding{Vector: mock.DeterministicVector(text, 8), Tokens: 5}, nil
	}

	records := makeRecords(8)
	jobID := f.startJob(t, records)

	summary, err := f.pipeline.Run(context.Background(), jobID, records)
	require.NoError(t, err)

	assert.Equal(t, len(records), summary.Processed+summary.Failed)
	assert.Equal(t, 2, summary.Failed)

	snap, ok := f.tracker.Get(jobID)
	require.True(t, ok)
	assert.Equal(t, jobs.StatusCompleted, snap.Status)

	var failed int
	for _, status := range snap.Records {
		if status.State == jobs.RecordFailed {
			failed++
			assert.NotEmpty(t, status.Error)
		}
	}
	assert.Equal(t, 2, failed)
}

func TestPipeline_CompletesEvenWhenEverythingFails(t *testing.T) {
	f := newPipelineFixture(t)
	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) (*ai.Embedding, error) {
		return nil, ai.NewTerminalError(400, errors.New("always fails"))
	}

	records := makeRecords(4)
	jobID := f.startJob(t, records)

	summary, err := f.pipeline.Run(context.Background(), jobID, records)
	require.NoError(t, err)

	assert.Zero(t, summary.Processed)
	assert.Equal(t, 4, summary.Failed)

	snap, ok := f.tracker.Get(jobID)
	require.True(t, ok)
	assert.Equal(t, jobs.StatusCompleted, snap.Status)
}

func TestPipeline_ProgressReportedPerBatch(t *testing.T) {
	f := newPipelineFixture(t, WithBatchSize(2))
	records := makeRecords(5)
	jobID := f.startJob(t, records)

	_, err := f.pipeline.Run(context.Background(), jobID, records)
	require.NoError(t, err)

	snap, ok := f.tracker.Get(jobID)
	require.True(t, ok)
	assert.Equal(t, 5, snap.Progress)
	assert.Equal(t, "DOC-4", snap.Current)
}

func TestPipeline_CancellationFailsRemaining(t *testing.T) {
	f := newPipelineFixture(t, WithBatchSize(2))

	ctx, cancel := context.WithCancel(context.Background())
	f.embedder.EmbedTextFunc = func(embedCtx context.Context, text string) (*ai.Embedding, error) {
		// Cancel partway through the first batch.
		if strings.Contains(text, "document 1") {
			cancel()
		}
		return &ai.Embedding{Vector: mock.DeterministicVector(text, 8), Tokens: 5}, nil
	}

	records := makeRecords(6)
	jobID := f.startJob(t, records)

	summary, err := f.pipeline.Run(ctx, jobID, records)
	require.NoError(t, err)

	snap, ok := f.tracker.Get(jobID)
	require.True(t, ok)
	assert.Equal(t, jobs.StatusCompleted, snap.Status)
	assert.Equal(t, len(records), snap.Progress)
	assert.Equal(t, len(records), summary.Processed+summary.Failed)

	// Records past the cancellation point were never embedded.
	var cancelled int
	for _, status := range snap.Records {
		if status.State == jobs.RecordFailed && status.Error == context.Canceled.Error() {
			cancelled++
		}
	}
	assert.GreaterOrEqual(t, cancelled, 4)
}

func TestPipeline_EmptyInput(t *testing.T) {
	f := newPipelineFixture(t)
	_, err := f.pipeline.Run(context.Background(), "irrelevant", nil)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestNewPipeline_Validation(t *testing.T) {
	embedder := mock.NewEmbedder()
	scheduler, err := NewScheduler(embedder, slog.Default())
	require.NoError(t, err)
	defer scheduler.Release()

	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	writer, err := NewWriter(store, "docs", 0, slog.Default())
	require.NoError(t, err)

	tracker := jobs.NewTracker()
	defer tracker.Close()

	_, err = NewPipeline(nil, writer, tracker)
	assert.ErrorIs(t, err, ErrSchedulerRequired)
	_, err = NewPipeline(scheduler, nil, tracker)
	assert.ErrorIs(t, err, ErrWriterRequired)
	_, err = NewPipeline(scheduler, writer, nil)
	assert.ErrorIs(t, err, ErrTrackerRequired)
}
