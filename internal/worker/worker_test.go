package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailscout/internal/model"
	"mailscout/pkg/governor"
	"mailscout/pkg/queue"
	"mailscout/pkg/store"
	"mailscout/pkg/verifier"
)

type stubProbe struct{}

func (stubProbe) ResolveMX(context.Context, string) []string             { return nil }
func (stubProbe) ProbeRCPT(context.Context, string, string, string) *bool { return nil }
func (stubProbe) IsCatchAll(context.Context, string, []string) bool      { return false }

func TestWorker_ProcessesPayloadAndCompletesJob(t *testing.T) {
	st := store.NewMemoryStore()
	broker := queue.NewMemoryBroker()
	ctx := context.Background()

	require.NoError(t, st.CreateJob(ctx, "job-1", "addresses.csv", 2))
	require.NoError(t, broker.Push(ctx, "mailscout:jobs", model.Payload{
		JobID:  "job-1",
		Emails: []string{"valid@example.com", "not-an-email"},
	}))

	gov := governor.New(governor.Config{GlobalConcurrency: 4})
	kernel := verifier.NewKernel(stubProbe{})
	w := New(broker, st, kernel, gov, "mailscout:jobs")

	payload, err := broker.Pop(ctx, "mailscout:jobs", time.Second)
	require.NoError(t, err)
	require.NotNil(t, payload)
	w.handlePayload(ctx, *payload)

	job, ok, err := st.GetJob(ctx, "job-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, job.ProcessedCount)
	assert.Equal(t, model.JobCompleted, job.Status)

	count, err := st.CountResults(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestWorker_MissingJobDiscardsPayload(t *testing.T) {
	st := store.NewMemoryStore()
	broker := queue.NewMemoryBroker()
	ctx := context.Background()

	gov := governor.New(governor.Config{GlobalConcurrency: 4})
	kernel := verifier.NewKernel(stubProbe{})
	w := New(broker, st, kernel, gov, "mailscout:jobs")

	w.handlePayload(ctx, model.Payload{JobID: "nonexistent", Emails: []string{"a@example.com"}})

	depth, err := broker.QueueDepth(ctx, "mailscout:jobs")
	require.NoError(t, err)
	assert.Zero(t, depth, "missing-job payload must not be requeued")
}

func TestWorker_RunStopsOnContextCancellation(t *testing.T) {
	st := store.NewMemoryStore()
	broker := queue.NewMemoryBroker()
	gov := governor.New(governor.Config{GlobalConcurrency: 4})
	kernel := verifier.NewKernel(stubProbe{})
	w := New(broker, st, kernel, gov, "mailscout:jobs")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestWorker_IdempotentRedeliveryLeavesProcessedCountUnchanged(t *testing.T) {
	st := store.NewMemoryStore()
	broker := queue.NewMemoryBroker()
	ctx := context.Background()
	require.NoError(t, st.CreateJob(ctx, "job-1", "addresses.csv", 1))

	gov := governor.New(governor.Config{GlobalConcurrency: 4})
	kernel := verifier.NewKernel(stubProbe{})
	w := New(broker, st, kernel, gov, "mailscout:jobs")

	payload := model.Payload{JobID: "job-1", Emails: []string{"valid@example.com"}}
	w.handlePayload(ctx, payload)
	w.handlePayload(ctx, payload)

	job, _, err := st.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 1, job.ProcessedCount)
}
