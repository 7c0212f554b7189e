// Package producer implements the job producer (C4): normalizing and
// deduplicating an uploaded address list, committing the Job row, and
// chunking the result onto the broker queue.
package producer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mailscout/internal/model"
	"mailscout/pkg/queue"
	"mailscout/pkg/store"
)

// Producer exposes the two operations the ingress layer drives:
// Submit and Status.
type Producer struct {
	store     store.Store
	broker    queue.Broker
	queueKey  string
	chunkSize int
}

// New builds a Producer. A non-positive chunkSize falls back to 1000,
// the same default config.ProducerConfig applies.
func New(st store.Store, broker queue.Broker, queueKey string, chunkSize int) *Producer {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &Producer{store: st, broker: broker, queueKey: queueKey, chunkSize: chunkSize}
}

// SubmitResult is the response contract of Submit.
type SubmitResult struct {
	JobID  string
	Total  int
	Chunks int
}

// Submit normalizes addresses, deduplicates them preserving first-seen
// order, commits the Job row, then enqueues one Payload per chunk. The
// Job row is committed before any payload is pushed so a worker that
// pops a payload is guaranteed to find its Job.
func (p *Producer) Submit(ctx context.Context, filename string, addresses []string) (SubmitResult, error) {
	normalized := normalizeAndDedupe(addresses)
	jobID := uuid.NewString()

	if err := p.store.CreateJob(ctx, jobID, filename, len(normalized)); err != nil {
		return SubmitResult{}, fmt.Errorf("create job: %w", err)
	}

	// An empty address list has no payload to drive it through
	// processing -> completed, so it is marked completed immediately
	// rather than left queued forever.
	if len(normalized) == 0 {
		if err := p.store.MarkProcessing(ctx, jobID); err != nil {
			return SubmitResult{}, fmt.Errorf("mark processing: %w", err)
		}
		if err := p.store.MarkCompleted(ctx, jobID); err != nil {
			return SubmitResult{}, fmt.Errorf("mark completed: %w", err)
		}
		return SubmitResult{JobID: jobID, Total: 0, Chunks: 0}, nil
	}

	chunks := chunk(normalized, p.chunkSize)
	for _, c := range chunks {
		payload := model.Payload{JobID: jobID, Emails: c}
		if err := p.broker.Push(ctx, p.queueKey, payload); err != nil {
			return SubmitResult{}, fmt.Errorf("enqueue payload: %w", err)
		}
	}

	return SubmitResult{JobID: jobID, Total: len(normalized), Chunks: len(chunks)}, nil
}

// StatusResult is the response contract of Status.
type StatusResult struct {
	Status    model.JobStatus
	Processed int
	Total     int
	Chunks    int
}

// Status reports a job's current state as recorded by the database;
// it does not consult the broker's advisory progress keyspace.
func (p *Producer) Status(ctx context.Context, jobID string) (StatusResult, bool, error) {
	job, ok, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		return StatusResult{}, false, fmt.Errorf("get job: %w", err)
	}
	if !ok {
		return StatusResult{}, false, nil
	}
	return StatusResult{
		Status:    job.Status,
		Processed: job.ProcessedCount,
		Total:     job.TotalCount,
		Chunks:    job.Chunks(p.chunkSize),
	}, true, nil
}

func normalizeAndDedupe(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	result := make([]string, 0, len(addresses))
	for _, raw := range addresses {
		addr := strings.ToLower(strings.TrimSpace(raw))
		if !strings.Contains(addr, "@") {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		result = append(result, addr)
	}
	return result
}

func chunk(addresses []string, size int) [][]string {
	if len(addresses) == 0 {
		return nil
	}
	var chunks [][]string
	for i := 0; i < len(addresses); i += size {
		end := min(i+size, len(addresses))
		chunks = append(chunks, addresses[i:end])
	}
	return chunks
}
