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

package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/jobs"
)

const (
	// DefaultBatchSize is the number of records processed per pipeline batch.
	DefaultBatchSize = 100

	// DefaultInterBatchDelay is the initial pause between batches. It halves
	// after each clean batch, down to the floor.
	DefaultInterBatchDelay = 500 * time.Millisecond

	minInterBatchDelay = 50 * time.Millisecond
)

// Summary reports one completed ingestion run. Processed plus Failed always
// equals the number of input records.
type Summary struct {
	JobID     string
	Processed int
	Failed    int
	Tokens    int
	Cost      float64
	Elapsed   time.Duration
}

// Pipeline orchestrates ingestion: batches are processed strictly
// sequentially, each batch running the scheduler and then the writer, with
// one coalesced job update per phase. The job always ends completed, even
// when every item failed; per-record states carry the outcome detail.
type Pipeline struct {
	scheduler *Scheduler
	writer    *Writer
	tracker   *jobs.Tracker
	batchSize int
	delay     time.Duration
	logger    *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithBatchSize sets the records per batch. Values below 1 select the default.
func WithBatchSize(n int) PipelineOption {
	return func(p *Pipeline) {
		if n >= 1 {
			p.batchSize = n
		}
	}
}

// WithInterBatchDelay sets the initial pause between batches.
func WithInterBatchDelay(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d >= 0 {
			p.delay = d
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(scheduler *Scheduler, writer *Writer, tracker *jobs.Tracker, opts ...PipelineOption) (*Pipeline, error) {
	if scheduler == nil {
		return nil, ErrSchedulerRequired
	}
	if writer == nil {
		return nil, ErrWriterRequired
	}
	if tracker == nil {
		return nil, ErrTrackerRequired
	}

	p := &Pipeline{
		scheduler: scheduler,
		writer:    writer,
		tracker:   tracker,
		batchSize: DefaultBatchSize,
		delay:     DefaultInterBatchDelay,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Targets extracts the external ids of records, in input order, for job
// creation. Job record statuses are positional over the same slice.
func Targets(records []*core.Record) []string {
	targets := make([]string, len(records))
	for i, record := range records {
		targets[i] = record.ExternalID
	}
	return targets
}

// Run processes records against an existing job. The job's record statuses
// must be positional over the records slice, as produced by Targets.
//
// Cancellation mid-run marks all remaining records failed and completes the
// job; partial progress from earlier batches is kept.
func (p *Pipeline) Run(ctx context.Context, jobID string, records []*core.Record) (*Summary, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	start := time.Now()
	summary := &Summary{JobID: jobID}
	delay := p.delay

	p.logger.Info("ingestion started", "job", jobID, "records", len(records))

	for offset := 0; offset < len(records); offset += p.batchSize {
		if err := ctx.Err(); err != nil {
			p.failRemaining(jobID, records, offset, err, summary)
			break
		}

		end := min(offset+p.batchSize, len(records))
		batch := records[offset:end]

		p.tracker.Update(jobID, func(job *jobs.Job) {
			for i := range batch {
				job.Records[offset+i].State = jobs.RecordEmbedding
			}
			job.Current = batch[len(batch)-1].ExternalID
		})

		results, totals, retries := p.scheduler.Run(ctx, batch)
		summary.Tokens += totals.Tokens
		summary.Cost += totals.Cost

		report, writeErr := p.writer.Write(ctx, results)

		failed := make(map[string]string, len(batch))
		for _, result := range results {
			if result.Err != nil {
				failed[result.Record.ExternalID] = result.Err.Error()
			}
		}
		for _, f := range report.Failed {
			failed[f.ExternalID] = f.Err.Error()
		}

		p.tracker.Update(jobID, func(job *jobs.Job) {
			for i, record := range batch {
				status := &job.Records[offset+i]
				if msg, ok := failed[record.ExternalID]; ok {
					status.State = jobs.RecordFailed
					status.Error = msg
				} else {
					status.State = jobs.RecordPersisted
				}
			}
			job.Progress += len(batch)
		})

		summary.Processed += report.Inserted
		summary.Failed += len(batch) - report.Inserted

		p.logger.Debug("batch complete",
			"job", jobID, "batch", offset/p.batchSize,
			"inserted", report.Inserted, "failed", len(batch)-report.Inserted,
			"retries", retries)

		if writeErr != nil {
			// Context cancellation surfaced by the writer; remaining
			// batches are marked failed on the next loop check.
			continue
		}

		if end < len(records) {
			if retries == 0 {
				delay /= 2
				if delay < minInterBatchDelay {
					delay = minInterBatchDelay
				}
			}
			if !sleepContext(ctx, delay) {
				continue
			}
		}
	}

	p.tracker.Complete(jobID)
	summary.Elapsed = time.Since(start)

	p.logger.Info("ingestion complete",
		"job", jobID, "processed", summary.Processed, "failed", summary.Failed,
		"tokens", summary.Tokens, "elapsed", summary.Elapsed)

	return summary, nil
}

// failRemaining marks every record from offset onward as failed with the
// cancellation error and counts them into the summary.
func (p *Pipeline) failRemaining(jobID string, records []*core.Record, offset int, cause error, summary *Summary) {
	remaining := len(records) - offset
	p.tracker.Update(jobID, func(job *jobs.Job) {
		for i := offset; i < len(records); i++ {
			job.Records[i].State = jobs.RecordFailed
			job.Records[i].Error = cause.Error()
		}
		job.Progress += remaining
	})
	summary.Failed += remaining
	p.logger.Warn("ingestion cancelled", "job", jobID, "remaining", remaining, "err", cause)
}

// sleepContext pauses for d, returning false if ctx ended first.
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
