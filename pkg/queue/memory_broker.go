package queue

import (
	"context"
	"sync"
	"time"

	"mailscout/internal/model"
)

// MemoryBroker is an in-process Broker used by tests and by the
// producer/worker test suites; it reproduces FIFO and last-writer-wins
// progress semantics without a live Redis instance.
type MemoryBroker struct {
	mu        sync.Mutex
	queues    map[string][]model.Payload
	progress  map[string]model.ProgressCell
	popSignal chan struct{}
}

// NewMemoryBroker builds an empty MemoryBroker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		queues:    make(map[string][]model.Payload),
		progress:  make(map[string]model.ProgressCell),
		popSignal: make(chan struct{}, 1),
	}
}

func (b *MemoryBroker) Push(_ context.Context, queueKey string, payload model.Payload) error {
	b.mu.Lock()
	b.queues[queueKey] = append(b.queues[queueKey], payload)
	b.mu.Unlock()

	select {
	case b.popSignal <- struct{}{}:
	default:
	}
	return nil
}

func (b *MemoryBroker) Pop(ctx context.Context, queueKey string, timeout time.Duration) (*model.Payload, error) {
	deadline := time.Now().Add(timeout)
	for {
		if payload, ok := b.tryPop(queueKey); ok {
			return payload, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-b.popSignal:
		case <-time.After(remaining):
			return nil, nil
		}
	}
}

func (b *MemoryBroker) tryPop(queueKey string) (*model.Payload, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := b.queues[queueKey]
	if len(q) == 0 {
		return nil, false
	}
	payload := q[0]
	b.queues[queueKey] = q[1:]
	return &payload, true
}

func (b *MemoryBroker) WriteProgress(_ context.Context, jobID string, cell model.ProgressCell) error {
	b.mu.Lock()
	b.progress[jobID] = cell
	b.mu.Unlock()
	return nil
}

func (b *MemoryBroker) ReadProgress(_ context.Context, jobID string) (model.ProgressCell, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cell, ok := b.progress[jobID]
	return cell, ok, nil
}

func (b *MemoryBroker) QueueDepth(_ context.Context, queueKey string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.queues[queueKey])), nil
}

func (b *MemoryBroker) Close() error {
	return nil
}
