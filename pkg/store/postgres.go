package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"mailscout/internal/model"
)

// PostgresStore implements Store against the uploads/email_results
// schema using database/sql and hand-written SQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool against databaseURL and
// verifies connectivity with a ping.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, id, filename string, totalCount int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (id, filename, total_count, processed_count, status, created_at)
		 VALUES ($1, $2, $3, 0, $4, now())`,
		id, filename, totalCount, model.JobQueued)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (model.Job, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, total_count, processed_count, status, created_at
		 FROM uploads WHERE id = $1`, id)

	var job model.Job
	var status string
	if err := row.Scan(&job.ID, &job.Filename, &job.TotalCount, &job.ProcessedCount, &status, &job.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return model.Job{}, false, nil
		}
		return model.Job{}, false, fmt.Errorf("get job: %w", err)
	}
	job.Status = model.JobStatus(status)
	return job, true, nil
}

func (s *PostgresStore) MarkProcessing(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE uploads SET status = $1 WHERE id = $2 AND status = $3`,
		model.JobProcessing, jobID, model.JobQueued)
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkCompleted(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE uploads SET status = $1
		 WHERE id = $2 AND status = $3 AND processed_count >= total_count`,
		model.JobCompleted, jobID, model.JobProcessing)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

func (s *PostgresStore) ExistingEmails(ctx context.Context, jobID string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email FROM email_results WHERE upload_id = $1`, jobID)
	if err != nil {
		return nil, fmt.Errorf("existing emails: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan existing email: %w", err)
		}
		seen[email] = struct{}{}
	}
	return seen, rows.Err()
}

// InsertVerdicts filters records to those not already persisted, then
// inserts the remainder and advances processed_count by exactly the
// number inserted, all inside one transaction. When that advance makes
// processed_count reach total_count, a processing job is marked
// completed in the same transaction. Re-delivery of an
// already-committed payload is therefore a no-op.
func (s *PostgresStore) InsertVerdicts(ctx context.Context, jobID string, records []model.VerdictRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	existing, err := existingEmailsTx(ctx, tx, jobID)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO email_results (upload_id, email, normalized, status, score, checks, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (upload_id, email) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		if _, skip := existing[r.Email]; skip {
			continue
		}
		checksJSON, err := json.Marshal(r.Checks)
		if err != nil {
			return 0, fmt.Errorf("marshal checks: %w", err)
		}
		res, err := stmt.ExecContext(ctx, jobID, r.Email, r.Normalized, string(r.Status), r.Score, checksJSON)
		if err != nil {
			return 0, fmt.Errorf("insert verdict: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}

	if inserted > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE uploads SET processed_count = processed_count + $1 WHERE id = $2`,
			inserted, jobID); err != nil {
			return 0, fmt.Errorf("advance processed_count: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE uploads SET status = $1
			 WHERE id = $2 AND status = $3 AND processed_count >= total_count`,
			model.JobCompleted, jobID, model.JobProcessing); err != nil {
			return 0, fmt.Errorf("mark completed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func existingEmailsTx(ctx context.Context, tx *sql.Tx, jobID string) (map[string]struct{}, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT email FROM email_results WHERE upload_id = $1`, jobID)
	if err != nil {
		return nil, fmt.Errorf("existing emails tx: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan existing email: %w", err)
		}
		seen[email] = struct{}{}
	}
	return seen, rows.Err()
}

func (s *PostgresStore) CountResults(ctx context.Context, jobID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM email_results WHERE upload_id = $1`, jobID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
