package ingest

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/core"
)

const (
	// DefaultWorkers is the default embedding worker pool size.
	DefaultWorkers = 50

	minWorkers = 3
	maxWorkers = 100
)

// EmbeddingResult pairs one input record with the outcome of its embedding
// call. Either Embedding or Err is set, never both.
type EmbeddingResult struct {
	Record    *core.Record
	Embedding *ai.Embedding
	Err       error
}

// Totals accumulates provider usage across the successful calls of a run.
type Totals struct {
	Tokens int
	Cost   float64
}

// Scheduler fans embedding calls out over a bounded worker pool. Transient
// provider failures are retried with exponential backoff; a terminal failure
// marks that one item failed and never aborts the rest of the batch.
type Scheduler struct {
	embedder ai.Embedder
	pool     *ants.Pool
	limiter  *rate.Limiter
	policy   RetryPolicy
	logger   *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*schedulerConfig)

type schedulerConfig struct {
	workers int
	limiter *rate.Limiter
	policy  RetryPolicy
}

// WithWorkers sets the worker pool size, clamped to [3, 100].
func WithWorkers(n int) SchedulerOption {
	return func(c *schedulerConfig) {
		c.workers = n
	}
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(policy RetryPolicy) SchedulerOption {
	return func(c *schedulerConfig) {
		c.policy = policy
	}
}

// WithRateLimit guards provider call admission with a token bucket of the
// given sustained rate and burst.
func WithRateLimit(limit rate.Limit, burst int) SchedulerOption {
	return func(c *schedulerConfig) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// NewScheduler creates a scheduler over the given embedder.
func NewScheduler(embedder ai.Embedder, logger *slog.Logger, opts ...SchedulerOption) (*Scheduler, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := schedulerConfig{
		workers: DefaultWorkers,
		policy:  DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.workers < minWorkers {
		cfg.workers = minWorkers
	}
	if cfg.workers > maxWorkers {
		cfg.workers = maxWorkers
	}

	pool, err := ants.NewPool(cfg.workers)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		embedder: embedder,
		pool:     pool,
		limiter:  cfg.limiter,
		policy:   cfg.policy,
		logger:   logger.With("component", "scheduler"),
	}, nil
}

// Run embeds every record and returns one result per input, in completion
// order. The returned retry count is the number of transient retries the
// run needed; a zero count marks the batch as clean.
func (s *Scheduler) Run(ctx context.Context, records []*core.Record) ([]EmbeddingResult, Totals, int) {
	var (
		mu      sync.Mutex
		totals  Totals
		retries atomic.Int64
		wg      sync.WaitGroup
	)
	results := make([]EmbeddingResult, 0, len(records))

	for _, record := range records {
		record := record
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			result := s.embedOne(ctx, record, &retries)

			mu.Lock()
			if result.Err == nil {
				totals.Tokens += result.Embedding.Tokens
				totals.Cost += result.Embedding.Cost
			}
			results = append(results, result)
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			results = append(results, EmbeddingResult{Record: record, Err: err})
			mu.Unlock()
		}
	}

	wg.Wait()
	return results, totals, int(retries.Load())
}

func (s *Scheduler) embedOne(ctx context.Context, record *core.Record, retries *atomic.Int64) EmbeddingResult {
	var (
		embedding *ai.Embedding
		attempts  int
	)
	err := RetryWithBackoff(ctx, s.policy, func(ctx context.Context) error {
		attempts++
		if s.limiter != nil {
			if waitErr := s.limiter.Wait(ctx); waitErr != nil {
				return waitErr
			}
		}
		var callErr error
		embedding, callErr = s.embedder.EmbedText(ctx, record.EmbeddingText())
		return callErr
	})
	if attempts > 1 {
		retries.Add(int64(attempts - 1))
	}

	if err != nil {
		s.logger.Warn("embedding failed", "externalId", record.ExternalID, "attempts", attempts, "err", err)
		return EmbeddingResult{Record: record, Err: err}
	}
	return EmbeddingResult{Record: record, Embedding: embedding}
}

// Release releases the worker pool. The scheduler must not be used after.
func (s *Scheduler) Release() {
	s.pool.Release()
}
