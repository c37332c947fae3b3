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


package jobs

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrTooManyJobs is returned by Create when the active-job cap is
	// reached. Callers should retry after existing jobs finish.
	ErrTooManyJobs = errors.New("too many active jobs")

	// ErrNoTargets is returned by Create for an empty target list.
	ErrNoTargets = errors.New("job requires at least one target")
)

const (
	defaultRetention  = time.Hour
	defaultSweepEvery = 10 * time.Minute
	defaultMaxActive  = 8
)

// Tracker is a concurrency-safe registry of ingestion jobs.
type Tracker struct {
	mu     sync.Mutex
	jobs   map[string]*Job
	done   chan struct{}
	wg     sync.WaitGroup
	logger *slog.Logger

	retention  time.Duration
	sweepEvery time.Duration
	maxActive  int
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithRetention sets how long a job stays reachable after it started.
// Default is one hour.
func WithRetention(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.retention = d
		}
	}
}

// WithSweepInterval sets how often the eviction sweep runs.
// Default is ten minutes.
func WithSweepInterval(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.sweepEvery = d
		}
	}
}

// WithMaxActive caps the number of simultaneously in-progress jobs.
// Default is 8.
func WithMaxActive(n int) TrackerOption {
	return func(t *Tracker) {
		if n > 0 {
			t.maxActive = n
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTracker creates a tracker and starts its background eviction sweep.
// Call Close to stop the sweep.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		jobs:       make(map[string]*Job),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "jobs"),
		retention:  defaultRetention,
		sweepEvery: defaultSweepEvery,
		maxActive:  defaultMaxActive,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.wg.Add(1)
	go t.sweepLoop()

	return t
}

// Create registers a new in-progress job for the given target record ids
// and returns its snapshot. Returns ErrTooManyJobs when the active cap is
// reached.
func (t *Tracker) Create(targets []string) (Snapshot, error) {
	if len(targets) == 0 {
		return Snapshot{}, ErrNoTargets
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	active := 0
	for _, job := range t.jobs {
		if job.Status == StatusInProgress {
			active++
		}
	}
	if active >= t.maxActive {
		return Snapshot{}, ErrTooManyJobs
	}

	records := make([]RecordStatus, len(targets))
	for i, target := range targets {
		records[i] = RecordStatus{ExternalID: target, State: RecordPending}
	}

	job := &Job{
		ID:        uuid.NewString(),
		Targets:   append([]string(nil), targets...),
		Status:    StatusInProgress,
		Total:     len(targets),
		Records:   records,
		StartedAt: time.Now().UTC(),
	}
	t.jobs[job.ID] = job

	t.logger.Info("job created", "jobID", job.ID, "targets", len(targets))
	return job.snapshot(), nil
}

// Get returns a snapshot of the job, or false if the id is unknown
// (including jobs already evicted by the sweep).
func (t *Tracker) Get(id string) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return Snapshot{}, false
	}
	return job.snapshot(), true
}

// ListActive returns snapshots of all in-progress jobs.
func (t *Tracker) ListActive() []Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshots := make([]Snapshot, 0, len(t.jobs))
	for _, job := range t.jobs {
		if job.Status == StatusInProgress {
			snapshots = append(snapshots, job.snapshot())
		}
	}
	return snapshots
}

// Update applies fn to the job under the tracker lock. This is the single
// coalescing mutation path: the pipeline batches its per-record state
// changes into one Update per batch. Unknown ids are ignored (the job may
// have been evicted mid-run).
func (t *Tracker) Update(id string, fn func(*Job)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return
	}
	fn(job)
}

// Complete marks the job completed and stamps its end time.
func (t *Tracker) Complete(id string) {
	t.Update(id, func(job *Job) {
		job.Status = StatusCompleted
		job.EndedAt = time.Now().UTC()
	})
}

// Close stops the background sweep. Tracked jobs remain readable.
func (t *Tracker) Close() {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	t.wg.Wait()
}

func (t *Tracker) sweepLoop() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.sweep(time.Now())
		}
	}
}

// sweep evicts jobs older than the retention window regardless of status.
func (t *Tracker) sweep(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := now.Add(-t.retention)
	for id, job := range t.jobs {
		if job.StartedAt.Before(cutoff) {
			delete(t.jobs, id)
			t.logger.Debug("job evicted", "jobID", id, "status", job.Status)
		}
	}
}
