// Package worker implements the worker runtime (C3): the long-lived
// consumer loop that pops payloads, fans out per-address verification
// under the concurrency governor, and bulk-persists results.
package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"mailscout/internal/model"
	"mailscout/pkg/governor"
	"mailscout/pkg/monitoring"
	"mailscout/pkg/queue"
	"mailscout/pkg/store"
	"mailscout/pkg/verifier"
)

const (
	popTimeout         = 5 * time.Second
	progressEvery      = 50
	maxPersistAttempts = 3
	persistBackoff     = 200 * time.Millisecond
	brokerErrorBackoff = 2 * time.Second
)

// Worker drives the pop -> verify -> persist -> progress loop against
// one queue and one job table.
type Worker struct {
	broker   queue.Broker
	store    store.Store
	kernel   verifier.Verifier
	gov      *governor.Governor
	queueKey string
}

// New builds a Worker. Per-payload fan-out concurrency is bounded by
// gov's own global semaphore, not by the Worker itself.
func New(broker queue.Broker, st store.Store, kernel verifier.Verifier, gov *governor.Governor, queueKey string) *Worker {
	return &Worker{
		broker:   broker,
		store:    st,
		kernel:   kernel,
		gov:      gov,
		queueKey: queueKey,
	}
}

// Run loops until ctx is cancelled. On cancellation it stops popping
// new payloads and returns once the in-flight payload (if any) has
// been handled or requeued.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		payload, err := w.broker.Pop(ctx, w.queueKey, popTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			if queue.IsMalformedPayload(err) {
				log.Printf("worker: discarding malformed payload: %v", err)
				continue
			}
			log.Printf("worker: broker pop error: %v, backing off %s", err, brokerErrorBackoff)
			select {
			case <-time.After(brokerErrorBackoff):
			case <-ctx.Done():
				return
			}
			continue
		}
		if payload == nil {
			continue
		}

		w.handlePayload(ctx, *payload)
	}
}

func (w *Worker) handlePayload(ctx context.Context, payload model.Payload) {
	start := time.Now()
	defer func() { monitoring.RecordChunkProcessing(time.Since(start)) }()

	job, ok, err := w.store.GetJob(ctx, payload.JobID)
	if err != nil {
		log.Printf("worker: get job %s: %v, requeueing", payload.JobID, err)
		w.requeue(ctx, payload)
		return
	}
	if !ok {
		log.Printf("worker: job %s not found, discarding payload", payload.JobID)
		return
	}
	if job.Status == model.JobQueued {
		if err := w.store.MarkProcessing(ctx, job.ID); err != nil {
			log.Printf("worker: mark processing %s: %v", job.ID, err)
		}
	}

	records := w.verifyAll(ctx, payload)

	if err := w.persist(ctx, payload.JobID, records); err != nil {
		log.Printf("worker: persist failed for job %s after retries: %v, requeueing", payload.JobID, err)
		w.requeue(ctx, payload)
	}
}

func (w *Worker) verifyAll(ctx context.Context, payload model.Payload) []model.VerdictRecord {
	records := make([]model.VerdictRecord, len(payload.Emails))
	var wg sync.WaitGroup
	var completed int
	var mu sync.Mutex

	for i, email := range payload.Emails {
		wg.Add(1)
		go func(i int, email string) {
			defer wg.Done()

			release, err := w.gov.AcquireGlobal(ctx)
			if err != nil {
				records[i] = model.VerdictRecord{Email: email, Status: model.VerdictInvalid}
				return
			}
			defer release()

			records[i] = w.kernel.Verify(ctx, email)
			records[i].JobID = payload.JobID

			mu.Lock()
			completed++
			n := completed
			mu.Unlock()

			if n%progressEvery == 0 || n == len(payload.Emails) {
				w.writeProgress(ctx, payload.JobID, n, len(payload.Emails))
			}
		}(i, email)
	}
	wg.Wait()
	return records
}

func (w *Worker) writeProgress(ctx context.Context, jobID string, processed, chunkSize int) {
	cell := model.ProgressCell{
		ProcessedInChunk: processed,
		ChunkSize:        chunkSize,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
	}
	if err := w.broker.WriteProgress(ctx, jobID, cell); err != nil {
		log.Printf("worker: progress write failed for job %s: %v", jobID, err)
	}
}

// persist bulk-inserts records inside the store's own transaction,
// retrying up to maxPersistAttempts times with linear backoff on
// failure before giving up and letting the caller requeue.
func (w *Worker) persist(ctx context.Context, jobID string, records []model.VerdictRecord) error {
	var lastErr error
	for attempt := 1; attempt <= maxPersistAttempts; attempt++ {
		inserted, err := w.store.InsertVerdicts(ctx, jobID, records)
		if err == nil {
			monitoring.RecordVerdictsPersisted(inserted)
			for _, r := range records {
				monitoring.RecordVerdictScore(string(r.Status), float64(r.Score))
			}
			if err := w.store.MarkCompleted(ctx, jobID); err != nil {
				log.Printf("worker: mark completed %s: %v", jobID, err)
			}
			return nil
		}
		lastErr = err
		if attempt < maxPersistAttempts {
			select {
			case <-time.After(persistBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

func (w *Worker) requeue(ctx context.Context, payload model.Payload) {
	monitoring.RecordPayloadRequeued()
	if err := w.broker.Push(context.WithoutCancel(ctx), w.queueKey, payload); err != nil {
		log.Printf("worker: requeue failed for job %s: %v", payload.JobID, err)
	}
}
