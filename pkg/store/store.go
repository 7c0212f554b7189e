// Package store implements the upload/verdict persistence layer: the
// uploads/email_results schema, accessed through hand-written SQL
// rather than an ORM.
package store

import (
	"context"

	"mailscout/internal/model"
)

// Store is the persistence contract shared by the job producer and
// the worker runtime.
type Store interface {
	// CreateJob inserts a new Job row under the caller-supplied id with
	// status queued and the given total_count.
	CreateJob(ctx context.Context, id, filename string, totalCount int) error

	// GetJob fetches a Job by id. ok is false if no such job exists.
	GetJob(ctx context.Context, id string) (model.Job, bool, error)

	// MarkProcessing transitions a queued job to processing. A no-op if
	// the job is already processing or terminal.
	MarkProcessing(ctx context.Context, jobID string) error

	// MarkCompleted transitions a job to completed if its processed
	// count has reached its total.
	MarkCompleted(ctx context.Context, jobID string) error

	// ExistingEmails returns the set of emails (as submitted) already
	// persisted for jobID, for idempotent re-delivery filtering.
	ExistingEmails(ctx context.Context, jobID string) (map[string]struct{}, error)

	// InsertVerdicts persists records not already present for their
	// (job_id, email) pair and advances the job's processed_count by
	// the number actually inserted, atomically. Returns the count
	// inserted.
	InsertVerdicts(ctx context.Context, jobID string, records []model.VerdictRecord) (int, error)

	// CountResults returns how many VerdictRecords exist for jobID.
	CountResults(ctx context.Context, jobID string) (int, error)

	Close() error
}
