package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mailscout/internal/model"
)

// MemoryStore is an in-process Store used by producer/worker tests.
// It reproduces the unique (job_id, email) constraint and the atomic
// processed_count advance without a live Postgres instance.
type MemoryStore struct {
	mu       sync.Mutex
	jobs     map[string]model.Job
	verdicts map[string]map[string]model.VerdictRecord // jobID -> email -> record
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:     make(map[string]model.Job),
		verdicts: make(map[string]map[string]model.VerdictRecord),
	}
}

func (s *MemoryStore) CreateJob(_ context.Context, id, filename string, totalCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[id]; exists {
		return fmt.Errorf("job %s already exists", id)
	}
	s.jobs[id] = model.Job{
		ID:         id,
		Filename:   filename,
		TotalCount: totalCount,
		Status:     model.JobQueued,
		CreatedAt:  time.Now(),
	}
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (model.Job, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	return job, ok, nil
}

func (s *MemoryStore) MarkProcessing(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Status != model.JobQueued {
		return nil
	}
	job.Status = model.JobProcessing
	s.jobs[jobID] = job
	return nil
}

func (s *MemoryStore) MarkCompleted(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Status != model.JobProcessing || job.ProcessedCount < job.TotalCount {
		return nil
	}
	job.Status = model.JobCompleted
	s.jobs[jobID] = job
	return nil
}

func (s *MemoryStore) ExistingEmails(_ context.Context, jobID string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	for email := range s.verdicts[jobID] {
		seen[email] = struct{}{}
	}
	return seen, nil
}

func (s *MemoryStore) InsertVerdicts(_ context.Context, jobID string, records []model.VerdictRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byEmail, ok := s.verdicts[jobID]
	if !ok {
		byEmail = make(map[string]model.VerdictRecord)
		s.verdicts[jobID] = byEmail
	}

	inserted := 0
	for _, r := range records {
		if _, exists := byEmail[r.Email]; exists {
			continue
		}
		byEmail[r.Email] = r
		inserted++
	}

	if inserted > 0 {
		job, ok := s.jobs[jobID]
		if ok {
			job.ProcessedCount += inserted
			s.jobs[jobID] = job
		}
	}
	return inserted, nil
}

func (s *MemoryStore) CountResults(_ context.Context, jobID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.verdicts[jobID]), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
