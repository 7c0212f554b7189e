package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mailscout/internal/model"
)

// RedisBroker implements Broker on top of a go-redis client. Payloads
// are JSON-encoded list elements; progress cells are Redis hashes at
// key "progress:<job_id>".
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker parses redisURL and verifies connectivity with a ping.
func NewRedisBroker(redisURL string) (*RedisBroker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisBroker{client: client}, nil
}

func (b *RedisBroker) Push(ctx context.Context, queueKey string, payload model.Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return b.client.RPush(ctx, queueKey, data).Err()
}

// Pop uses BLPOP so payloads are consumed head-first in the order
// Push appended them.
func (b *RedisBroker) Pop(ctx context.Context, queueKey string, timeout time.Duration) (*model.Payload, error) {
	result, err := b.client.BLPop(ctx, timeout, queueKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blpop: %w", err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("blpop: unexpected reply shape %v", result)
	}

	var payload model.Payload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedPayload, err)
	}
	return &payload, nil
}

// errMalformedPayload lets callers distinguish an undecodable payload
// (discard, do not requeue) from broker transport errors (retry).
var errMalformedPayload = errors.New("malformed payload")

// IsMalformedPayload reports whether err wraps a payload decode failure.
func IsMalformedPayload(err error) bool {
	return errors.Is(err, errMalformedPayload)
}

func progressKey(jobID string) string {
	return "progress:" + jobID
}

func (b *RedisBroker) WriteProgress(ctx context.Context, jobID string, cell model.ProgressCell) error {
	return b.client.HSet(ctx, progressKey(jobID), map[string]interface{}{
		"processed_in_chunk": cell.ProcessedInChunk,
		"chunk_size":         cell.ChunkSize,
		"timestamp":          cell.Timestamp,
	}).Err()
}

func (b *RedisBroker) ReadProgress(ctx context.Context, jobID string) (model.ProgressCell, bool, error) {
	values, err := b.client.HGetAll(ctx, progressKey(jobID)).Result()
	if err != nil {
		return model.ProgressCell{}, false, fmt.Errorf("hgetall: %w", err)
	}
	if len(values) == 0 {
		return model.ProgressCell{}, false, nil
	}

	var cell model.ProgressCell
	fmt.Sscanf(values["processed_in_chunk"], "%d", &cell.ProcessedInChunk)
	fmt.Sscanf(values["chunk_size"], "%d", &cell.ChunkSize)
	cell.Timestamp = values["timestamp"]
	return cell, true, nil
}

func (b *RedisBroker) QueueDepth(ctx context.Context, queueKey string) (int64, error) {
	n, err := b.client.LLen(ctx, queueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("llen: %w", err)
	}
	return n, nil
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}
