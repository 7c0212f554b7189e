package producer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailscout/internal/model"
	"mailscout/pkg/queue"
	"mailscout/pkg/store"
)

func TestSubmit_NormalizesDeduplicatesAndChunks(t *testing.T) {
	st := store.NewMemoryStore()
	broker := queue.NewMemoryBroker()
	p := New(st, broker, "mailscout:jobs", 2)

	addresses := []string{
		" A@Example.com ",
		"a@example.com",
		"b@example.com",
		"not-an-email",
		"c@example.com",
	}

	result, err := p.Submit(context.Background(), "addresses.csv", addresses)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total, "dedupe + drop non-@ entries")
	assert.Equal(t, 2, result.Chunks)
	assert.NotEmpty(t, result.JobID)

	depth, err := broker.QueueDepth(context.Background(), "mailscout:jobs")
	require.NoError(t, err)
	assert.Equal(t, int64(2), depth)

	first, err := broker.Pop(context.Background(), "mailscout:jobs", 0)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, result.JobID, first.JobID)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, first.Emails)
}

func TestSubmit_EmptyListCompletesImmediately(t *testing.T) {
	st := store.NewMemoryStore()
	broker := queue.NewMemoryBroker()
	p := New(st, broker, "mailscout:jobs", 1000)

	result, err := p.Submit(context.Background(), "empty.csv", []string{"not-an-email", "   "})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.Chunks)

	status, ok, err := p.Status(context.Background(), result.JobID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.JobCompleted, status.Status)

	depth, err := broker.QueueDepth(context.Background(), "mailscout:jobs")
	require.NoError(t, err)
	assert.Zero(t, depth)
}

func TestSubmit_JobRowPrecedesPayloadPush(t *testing.T) {
	st := store.NewMemoryStore()
	broker := queue.NewMemoryBroker()
	p := New(st, broker, "mailscout:jobs", 1000)

	result, err := p.Submit(context.Background(), "addresses.csv", []string{"a@example.com"})
	require.NoError(t, err)

	payload, err := broker.Pop(context.Background(), "mailscout:jobs", 0)
	require.NoError(t, err)
	require.NotNil(t, payload)

	job, ok, err := st.GetJob(context.Background(), payload.JobID)
	require.NoError(t, err)
	require.True(t, ok, "job row must already exist for any payload a worker can pop")
	assert.Equal(t, result.JobID, job.ID)
}

func TestStatus_UnknownJob(t *testing.T) {
	st := store.NewMemoryStore()
	broker := queue.NewMemoryBroker()
	p := New(st, broker, "mailscout:jobs", 1000)

	_, ok, err := p.Status(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
}
