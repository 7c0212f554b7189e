// Package model defines the data structures shared across the producer,
// worker and autoscaler: jobs, verdicts, queue payloads and progress
// telemetry.
package model

import "time"

// JobStatus is the lifecycle state of a Job.
type JobStatus string

// Job status transitions form queued -> processing -> {completed, cancelled}.
// Once completed a job is terminal.
const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// Job is one ingestion batch: a user-submitted address list and the
// progress of its verification.
type Job struct {
	ID             string
	Filename       string
	TotalCount     int
	ProcessedCount int
	Status         JobStatus
	CreatedAt      time.Time
}

// Chunks returns how many fixed-size payloads a job's address list was
// partitioned into, given the chunk size the producer used.
func (j Job) Chunks(chunkSize int) int {
	if j.TotalCount == 0 || chunkSize <= 0 {
		return 0
	}
	return (j.TotalCount + chunkSize - 1) / chunkSize
}
