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


// Package retrievit provides hybrid document retrieval backed by an
// embedded document store. Records are ingested by computing and persisting
// vector embeddings at scale; queries fan out over lexical and vector
// retrieval and fuse the rankings into one result list.
package retrievit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/ai/openai"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/docstore"
	"github.com/poiesic/retrievit/docstore/badger"
	"github.com/poiesic/retrievit/ingest"
	"github.com/poiesic/retrievit/jobs"
	"github.com/poiesic/retrievit/search"
)

const (
	// DefaultCollection is the document collection used unless overridden.
	DefaultCollection = "documents"

	// LexicalIndex and VectorIndex are the index names Provision creates.
	LexicalIndex = "lexical"
	VectorIndex  = "vector"

	// maxConcurrentIngestJobs bounds the async ingestion workers; the job
	// tracker's own active cap provides the backpressure error.
	maxConcurrentIngestJobs = 8
)

// ErrAIConfigRequired is returned when Open is called without an AI
// configuration and no provider override.
var ErrAIConfigRequired = errors.New("AI configuration required")

// Service is the top-level facade. It owns the store backend, the AI
// provider, the ingestion pipeline, the job tracker and the searcher, and
// releases them together on Close.
type Service struct {
	backend    *badger.Backend
	store      docstore.Store
	provider   ai.AIProvider
	tracker    *jobs.Tracker
	scheduler  *ingest.Scheduler
	pipeline   *ingest.Pipeline
	searcher   *search.Searcher
	jobPool    *ants.Pool
	collection string
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

type serviceConfig struct {
	collection string
	inMemory   bool
	workers    int
	batchSize  int
	provider   ai.AIProvider
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*serviceConfig)

// WithCollection sets the document collection name.
func WithCollection(name string) Option {
	return func(c *serviceConfig) {
		if name != "" {
			c.collection = name
		}
	}
}

// WithInMemory keeps the store entirely in memory. Intended for tests.
func WithInMemory() Option {
	return func(c *serviceConfig) {
		c.inMemory = true
	}
}

// WithWorkers sets the embedding worker pool size.
func WithWorkers(n int) Option {
	return func(c *serviceConfig) {
		c.workers = n
	}
}

// WithBatchSize sets the ingestion batch size.
func WithBatchSize(n int) Option {
	return func(c *serviceConfig) {
		c.batchSize = n
	}
}

// WithProvider overrides the AI provider, bypassing the OpenAI-compatible
// client built from the AI configuration. Intended for tests.
func WithProvider(provider ai.AIProvider) Option {
	return func(c *serviceConfig) {
		c.provider = provider
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Open creates a Service over the store at path. aiConfig may be nil only
// when WithProvider supplies the AI services.
func Open(path string, aiConfig *ai.Config, opts ...Option) (*Service, error) {
	cfg := serviceConfig{
		collection: DefaultCollection,
		workers:    ingest.DefaultWorkers,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	provider := cfg.provider
	if provider == nil {
		if aiConfig == nil {
			return nil, ErrAIConfigRequired
		}
		var err error
		provider, err = openai.NewProvider(aiConfig)
		if err != nil {
			return nil, err
		}
	}

	backend, err := badger.OpenBackend(path, cfg.inMemory)
	if err != nil {
		return nil, err
	}

	store, err := badger.New(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	tracker := jobs.NewTracker(jobs.WithLogger(cfg.logger))

	scheduler, err := ingest.NewScheduler(provider.Embedder(), cfg.logger,
		ingest.WithWorkers(cfg.workers))
	if err != nil {
		tracker.Close()
		store.Close()
		return nil, err
	}

	writer, err := ingest.NewWriter(store, cfg.collection, 0, cfg.logger)
	if err != nil {
		scheduler.Release()
		tracker.Close()
		store.Close()
		return nil, err
	}

	pipelineOpts := []ingest.PipelineOption{ingest.WithLogger(cfg.logger)}
	if cfg.batchSize > 0 {
		pipelineOpts = append(pipelineOpts, ingest.WithBatchSize(cfg.batchSize))
	}
	pipeline, err := ingest.NewPipeline(scheduler, writer, tracker, pipelineOpts...)
	if err != nil {
		scheduler.Release()
		tracker.Close()
		store.Close()
		return nil, err
	}

	searcher, err := search.NewSearcher(store, provider, cfg.collection,
		search.WithLogger(cfg.logger),
		search.WithIndexes(LexicalIndex, VectorIndex))
	if err != nil {
		scheduler.Release()
		tracker.Close()
		store.Close()
		return nil, err
	}

	jobPool, err := ants.NewPool(maxConcurrentIngestJobs)
	if err != nil {
		scheduler.Release()
		tracker.Close()
		store.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		backend:    backend,
		store:      store,
		provider:   provider,
		tracker:    tracker,
		scheduler:  scheduler,
		pipeline:   pipeline,
		searcher:   searcher,
		jobPool:    jobPool,
		collection: cfg.collection,
		logger:     cfg.logger,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Store exposes the underlying document store for provisioning and
// inspection.
func (s *Service) Store() docstore.Store {
	return s.store
}

// Collection returns the document collection name.
func (s *Service) Collection() string {
	return s.collection
}

// Provision makes the collection and both search indexes exist. Idempotent.
func (s *Service) Provision(ctx context.Context) error {
	if err := s.store.CreateCollection(ctx, s.collection); err != nil {
		return err
	}
	if err := s.store.EnsureIndex(ctx, s.collection, LexicalIndex, docstore.IndexLexical); err != nil {
		return err
	}
	return s.store.EnsureIndex(ctx, s.collection, VectorIndex, docstore.IndexVector)
}

// Ingest accepts records for asynchronous embedding and persistence and
// returns the tracking job id. The job outlives the call; poll Job for
// progress. Returns jobs.ErrTooManyJobs when the active-job cap is reached.
func (s *Service) Ingest(records []*core.Record) (string, error) {
	if len(records) == 0 {
		return "", ingest.ErrNoRecords
	}

	snap, err := s.tracker.Create(ingest.Targets(records))
	if err != nil {
		return "", err
	}

	err = s.jobPool.Submit(func() {
		if _, runErr := s.pipeline.Run(s.ctx, snap.ID, records); runErr != nil {
			s.logger.Error("ingestion job failed", "job", snap.ID, "err", runErr)
		}
	})
	if err != nil {
		// The job was created but will never run; complete it so it does
		// not linger as active until the retention sweep.
		s.tracker.Complete(snap.ID)
		return "", err
	}

	return snap.ID, nil
}

// IngestSync embeds and persists records inline and returns the run summary.
func (s *Service) IngestSync(ctx context.Context, records []*core.Record) (*ingest.Summary, error) {
	if len(records) == 0 {
		return nil, ingest.ErrNoRecords
	}

	snap, err := s.tracker.Create(ingest.Targets(records))
	if err != nil {
		return nil, err
	}
	return s.pipeline.Run(ctx, snap.ID, records)
}

// Search answers one hybrid query against the collection.
func (s *Service) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	return s.searcher.Search(ctx, req)
}

// SearchWithMonitor answers one hybrid query, reporting stages to monitor.
func (s *Service) SearchWithMonitor(ctx context.Context, req search.Request, monitor search.Monitor) (*search.Response, error) {
	return s.searcher.SearchWithMonitor(ctx, req, monitor)
}

// Job returns a snapshot of the identified ingestion job. The second value
// is false when the job never existed or was evicted by the retention sweep.
func (s *Service) Job(id string) (jobs.Snapshot, bool) {
	return s.tracker.Get(id)
}

// Jobs returns snapshots of all in-progress ingestion jobs.
func (s *Service) Jobs() []jobs.Snapshot {
	return s.tracker.ListActive()
}

// Close cancels running ingestion jobs and releases all owned resources.
func (s *Service) Close() error {
	s.cancel()

	// Give in-flight jobs a moment to observe cancellation and finish
	// their bookkeeping before the pool is torn down.
	releaseErr := s.jobPool.ReleaseTimeout(10 * time.Second)
	if errors.Is(releaseErr, ants.ErrTimeout) {
		s.logger.Warn("ingestion jobs still running at close")
		releaseErr = nil
	}

	s.scheduler.Release()
	s.tracker.Close()

	return errors.Join(
		releaseErr,
		s.provider.Close(),
		s.store.Close(),
	)
}
