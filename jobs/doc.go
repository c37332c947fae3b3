// Package jobs provides a process-wide registry of long-running ingestion
// jobs.
//
// The Tracker owns every Job exclusively; the ingestion pipeline holds only
// a job id and reports into the tracker through coalescing Update calls.
// External callers poll progress via Get and ListActive, which return deep
// snapshot copies so no caller can mutate tracked state.
//
// Jobs older than the retention window are evicted by a periodic background
// sweep regardless of status. Eviction is silent: the job id simply stops
// resolving.
package jobs
