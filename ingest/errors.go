package ingest

import "errors"

var (
	// ErrStoreRequired is returned when a writer is created without a store.
	ErrStoreRequired = errors.New("document store required")

	// ErrEmbedderRequired is returned when a scheduler is created without an embedder.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrTrackerRequired is returned when a pipeline is created without a job tracker.
	ErrTrackerRequired = errors.New("job tracker required")

	// ErrSchedulerRequired is returned when a pipeline is created without a scheduler.
	ErrSchedulerRequired = errors.New("scheduler required")

	// ErrWriterRequired is returned when a pipeline is created without a writer.
	ErrWriterRequired = errors.New("writer required")

	// ErrNoRecords is returned when a run is started with an empty record slice.
	ErrNoRecords = errors.New("no records to ingest")
)
