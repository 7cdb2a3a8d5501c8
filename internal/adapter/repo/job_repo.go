package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notifier/internal/domain"
	"notifier/internal/infra"
)

// JobRepositoryPG implements domain.JobRepository.
//
// A partial unique index on (seller_id) WHERE status IN
// ('pending','processing','paused') backs the one-active-job-per-seller
// rule; inserts racing past the application check surface as ErrConflict.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

// Create inserts a new job record with its item snapshot.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	items, err := json.Marshal(job.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	query := `
INSERT INTO jobs (id, seller_id, status, total, processed, success, errors, current_index, pace_seconds, items, last_error)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`
	_, err = r.pool.Exec(ctx, query,
		job.ID,
		job.SellerID,
		job.Status,
		job.Total,
		job.Processed,
		job.Success,
		job.Errors,
		job.CurrentIndex,
		job.PaceSeconds,
		items,
		nullableString(job.LastError),
	)
	if infra.IsUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

// GetByID fetches a job including its item payload.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `
SELECT id, seller_id, status, total, processed, success, errors, current_index, pace_seconds, items, COALESCE(last_error, ''), created_at, updated_at
FROM jobs
WHERE id = $1;
`
	return r.scanJob(r.pool.QueryRow(ctx, query, jobID))
}

// GetActiveBySeller returns the seller's pending/processing/paused job.
func (r *JobRepositoryPG) GetActiveBySeller(ctx context.Context, sellerID string) (*domain.Job, error) {
	query := `
SELECT id, seller_id, status, total, processed, success, errors, current_index, pace_seconds, items, COALESCE(last_error, ''), created_at, updated_at
FROM jobs
WHERE seller_id = $1 AND status IN ('pending', 'processing', 'paused')
ORDER BY created_at DESC
LIMIT 1;
`
	return r.scanJob(r.pool.QueryRow(ctx, query, sellerID))
}

// UpdateStatus changes the lifecycle state, optionally recording a failure reason.
func (r *JobRepositoryPG) UpdateStatus(ctx context.Context, jobID string, status domain.JobStatus, lastError *string) error {
	query := `
UPDATE jobs
SET status = $2,
    last_error = COALESCE($3, last_error),
    updated_at = NOW()
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query, jobID, status, lastError)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateProgress persists counters and the cursor after each item.
func (r *JobRepositoryPG) UpdateProgress(ctx context.Context, jobID string, processed, success, errCount, currentIndex int) error {
	query := `
UPDATE jobs
SET processed = $2,
    success = $3,
    errors = $4,
    current_index = $5,
    updated_at = NOW()
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query, jobID, processed, success, errCount, currentIndex)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListRecentBySeller returns summary rows, newest first, without payloads.
func (r *JobRepositoryPG) ListRecentBySeller(ctx context.Context, sellerID string, limit int) ([]domain.JobSummary, error) {
	query := `
SELECT id, status, total, processed, success, errors, current_index, COALESCE(last_error, ''), created_at, updated_at
FROM jobs
WHERE seller_id = $1
ORDER BY created_at DESC
LIMIT $2;
`
	rows, err := r.pool.Query(ctx, query, sellerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.JobSummary
	for rows.Next() {
		var s domain.JobSummary
		if err := rows.Scan(
			&s.ID,
			&s.Status,
			&s.Total,
			&s.Processed,
			&s.Success,
			&s.Errors,
			&s.CurrentIndex,
			&s.LastError,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ClaimStale re-touches orphaned processing jobs and returns their ids.
// The touch makes the claim exclusive across recovery workers.
func (r *JobRepositoryPG) ClaimStale(ctx context.Context, cutoff time.Time) ([]string, error) {
	query := `
WITH stale AS (
    SELECT id
    FROM jobs
    WHERE status = 'processing' AND updated_at < $1
    FOR UPDATE SKIP LOCKED
)
UPDATE jobs
SET updated_at = NOW()
WHERE id IN (SELECT id FROM stale)
RETURNING id;
`
	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *JobRepositoryPG) scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	var items []byte
	if err := row.Scan(
		&job.ID,
		&job.SellerID,
		&job.Status,
		&job.Total,
		&job.Processed,
		&job.Success,
		&job.Errors,
		&job.CurrentIndex,
		&job.PaceSeconds,
		&items,
		&job.LastError,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &job.Items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
	}
	return &job, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
