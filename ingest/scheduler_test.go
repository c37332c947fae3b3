package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/ai/mock"
	"github.com/poiesic/retrievit/core"
)

func makeRecords(n int) []*core.Record {
	records := make([]*core.Record, n)
	for i := range records {
		records[i] = &core.Record{
			ExternalID: fmt.Sprintf("DOC-%d", i),
			Title:      fmt.Sprintf("Document %d", i),
			Contents:   fmt.Sprintf("contents of document %d", i),
		}
	}
	return records
}

func TestScheduler_EmbedsAllRecords(t *testing.T) {
	embedder := mock.NewEmbedder()
	scheduler, err := NewScheduler(embedder, slog.Default())
	require.NoError(t, err)
	defer scheduler.Release()

	records := makeRecords(10)
	results, totals, retries := scheduler.Run(context.Background(), records)

	require.Len(t, results, 10)
	for _, result := range results {
		require.NoError(t, result.Err)
		require.NotNil(t, result.Embedding)
		assert.Len(t, result.Embedding.Vector, embedder.Dimension)
	}
	assert.Equal(t, 10*embedder.TokensPerCall, totals.Tokens)
	assert.Zero(t, retries)
	assert.Equal(t, 10, embedder.CallCount())
}

func TestScheduler_TerminalFailureDoesNotAbortBatch(t *testing.T) {
	embedder := mock.NewEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) (*ai.Embedding, error) {
		if text == "Document 3\n\ncontents of document 3" {
			return nil, ai.NewTerminalError(400, errors.New("unembeddable"))
		}
		return &ai.Embedding{Vector: mock.DeterministicVector(text, 8), Tokens: 5}, nil
	}

	scheduler, err := NewScheduler(embedder, slog.Default())
	require.NoError(t, err)
	defer scheduler.Release()

	results, totals, _ := scheduler.Run(context.Background(), makeRecords(6))
	require.Len(t, results, 6)

	var failed, succeeded int
	for _, result := range results {
		if result.Err != nil {
			failed++
			assert.Equal(t, "DOC-3", result.Record.ExternalID)
		} else {
			succeeded++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5*5, totals.Tokens)
}

func TestScheduler_RetriesTransientAndCountsThem(t *testing.T) {
	var mu sync.Mutex
	attemptsByText := map[string]int{}

	embedder := mock.NewEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) (*ai.Embedding, error) {
		mu.Lock()
		attemptsByText[text]++
		n := attemptsByText[text]
		mu.Unlock()
		if n == 1 {
			return nil, ai.NewTransientError(503, errors.New("overloaded"))
		}
		return &ai.Embedding{Vector: mock.DeterministicVector(text, 8), Tokens: 5}, nil
	}

	scheduler, err := NewScheduler(embedder, slog.Default(),
		WithRetryPolicy(RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}))
	require.NoError(t, err)
	defer scheduler.Release()

	results, _, retries := scheduler.Run(context.Background(), makeRecords(4))
	require.Len(t, results, 4)
	for _, result := range results {
		assert.NoError(t, result.Err)
	}
	assert.Equal(t, 4, retries)
}

func TestScheduler_ConcurrencyNeverExceedsPoolSize(t *testing.T) {
	embedder := mock.NewEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) (*ai.Embedding, error) {
		time.Sleep(5 * time.Millisecond)
		return &ai.Embedding{Vector: mock.DeterministicVector(text, 8), Tokens: 5}, nil
	}

	scheduler, err := NewScheduler(embedder, slog.Default(), WithWorkers(3))
	require.NoError(t, err)
	defer scheduler.Release()

	results, _, _ := scheduler.Run(context.Background(), makeRecords(20))
	require.Len(t, results, 20)
	assert.LessOrEqual(t, embedder.MaxConcurrent(), 3)
}

func TestScheduler_WorkerClamping(t *testing.T) {
	embedder := mock.NewEmbedder()

	low, err := NewScheduler(embedder, slog.Default(), WithWorkers(1))
	require.NoError(t, err)
	defer low.Release()
	assert.Equal(t, minWorkers, low.pool.Cap())

	high, err := NewScheduler(embedder, slog.Default(), WithWorkers(500))
	require.NoError(t, err)
	defer high.Release()
	assert.Equal(t, maxWorkers, high.pool.Cap())
}

func TestScheduler_RequiresEmbedder(t *testing.T) {
	_, err := NewScheduler(nil, slog.Default())
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}
