package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailscout/internal/model"
)

func TestMemoryBroker_PushPopIsFIFO(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()

	first := model.Payload{JobID: "job-1", Emails: []string{"a@example.com"}}
	second := model.Payload{JobID: "job-1", Emails: []string{"b@example.com"}}
	require.NoError(t, b.Push(ctx, "q", first))
	require.NoError(t, b.Push(ctx, "q", second))

	got1, err := b.Pop(ctx, "q", time.Second)
	require.NoError(t, err)
	require.NotNil(t, got1)
	assert.Equal(t, first, *got1)

	got2, err := b.Pop(ctx, "q", time.Second)
	require.NoError(t, err)
	require.NotNil(t, got2)
	assert.Equal(t, second, *got2)
}

func TestMemoryBroker_PopTimesOutOnEmptyQueue(t *testing.T) {
	b := NewMemoryBroker()
	start := time.Now()

	got, err := b.Pop(context.Background(), "q", 30*time.Millisecond)

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestMemoryBroker_PopWakesOnPush(t *testing.T) {
	b := NewMemoryBroker()
	payload := model.Payload{JobID: "job-1", Emails: []string{"a@example.com"}}

	done := make(chan *model.Payload, 1)
	go func() {
		got, _ := b.Pop(context.Background(), "q", 2*time.Second)
		done <- got
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, b.Push(context.Background(), "q", payload))

	select {
	case got := <-done:
		require.NotNil(t, got)
		assert.Equal(t, payload, *got)
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up after Push")
	}
}

func TestMemoryBroker_ProgressIsLastWriterWins(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()

	require.NoError(t, b.WriteProgress(ctx, "job-1", model.ProgressCell{ProcessedInChunk: 10, ChunkSize: 100, Timestamp: "t1"}))
	require.NoError(t, b.WriteProgress(ctx, "job-1", model.ProgressCell{ProcessedInChunk: 50, ChunkSize: 100, Timestamp: "t2"}))

	cell, ok, err := b.ReadProgress(ctx, "job-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 50, cell.ProcessedInChunk)
	assert.Equal(t, "t2", cell.Timestamp)
}

func TestMemoryBroker_ReadProgressMissingJob(t *testing.T) {
	b := NewMemoryBroker()
	_, ok, err := b.ReadProgress(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryBroker_QueueDepth(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()
	assert.Equal(t, int64(0), depthOf(t, b, "q"))

	require.NoError(t, b.Push(ctx, "q", model.Payload{JobID: "job-1"}))
	require.NoError(t, b.Push(ctx, "q", model.Payload{JobID: "job-1"}))
	assert.Equal(t, int64(2), depthOf(t, b, "q"))

	_, err := b.Pop(ctx, "q", time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), depthOf(t, b, "q"))
}

func depthOf(t *testing.T, b *MemoryBroker, queueKey string) int64 {
	t.Helper()
	n, err := b.QueueDepth(context.Background(), queueKey)
	require.NoError(t, err)
	return n
}
