package jobs

import "time"

// Status is the lifecycle state of a job. There is no failed terminal
// state at the job level: a job completes even if every item failed, and
// per-item failures are visible in the record status list.
type Status string

const (
	// StatusInProgress means records remain to be processed.
	StatusInProgress Status = "in-progress"

	// StatusCompleted means every record was attempted, success or failure.
	StatusCompleted Status = "completed"
)

// RecordState is the per-record processing state within a job.
type RecordState string

const (
	// RecordPending means the record has not entered a batch yet.
	RecordPending RecordState = "pending"

	// RecordEmbedding means the record's batch is currently being processed.
	RecordEmbedding RecordState = "embedding"

	// RecordPersisted means the record was embedded and written to the store.
	RecordPersisted RecordState = "persisted"

	// RecordFailed means the record failed terminally; Error explains why.
	RecordFailed RecordState = "failed"
)

// RecordStatus tracks one target record through a job.
type RecordStatus struct {
	ExternalID string
	State      RecordState
	Error      string
}

// Job tracks one ingestion run. Owned exclusively by the Tracker; mutate
// only through Tracker.Update.
type Job struct {
	ID        string
	Targets   []string
	Status    Status
	Progress  int // Records attempted so far (success or failure)
	Total     int
	Records   []RecordStatus
	Current   string // External id of the most recently entered record
	StartedAt time.Time
	EndedAt   time.Time
}

// Snapshot is a deep copy of a Job handed to external callers.
type Snapshot struct {
	Job
}

// Done reports whether the job reached its terminal state.
func (j *Job) Done() bool {
	return j.Status == StatusCompleted
}

// snapshot deep-copies the job.
func (j *Job) snapshot() Snapshot {
	dup := *j
	dup.Targets = append([]string(nil), j.Targets...)
	dup.Records = append([]RecordStatus(nil), j.Records...)
	return Snapshot{Job: dup}
}
