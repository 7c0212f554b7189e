// Package queue implements the broker contract the worker runtime (C3)
// and job producer (C4) share: a blocking payload queue plus an
// advisory per-job progress keyspace.
package queue

import (
	"context"
	"time"

	"mailscout/internal/model"
)

// Broker is the external-collaborator contract for the Redis-backed
// queue. Payloads move tail-push/head-pop (FIFO); progress cells are
// last-writer-wins and carry no TTL.
type Broker interface {
	// Push enqueues payload onto the tail of queueKey.
	Push(ctx context.Context, queueKey string, payload model.Payload) error

	// Pop blocks up to timeout for a payload at the head of queueKey.
	// A nil payload with a nil error means the wait timed out.
	Pop(ctx context.Context, queueKey string, timeout time.Duration) (*model.Payload, error)

	// WriteProgress last-writer-wins updates progress:<jobID>.
	WriteProgress(ctx context.Context, jobID string, cell model.ProgressCell) error

	// ReadProgress returns the current progress cell for jobID, or
	// false if no worker has ever reported progress for it.
	ReadProgress(ctx context.Context, jobID string) (model.ProgressCell, bool, error)

	// QueueDepth returns the number of payloads currently queued at
	// queueKey. Used by the autoscaler to size the worker fleet.
	QueueDepth(ctx context.Context, queueKey string) (int64, error)

	Close() error
}
