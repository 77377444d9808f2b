package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"hirewire/internal/domain"
)

func (db *DB) EnqueueRescore(ctx context.Context, requisitionID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO rescore_jobs (requisition_id) VALUES ($1) RETURNING id
	`, requisitionID).Scan(&id)
	return id, err
}

func (db *DB) GetRescoreJob(ctx context.Context, jobID uuid.UUID) (domain.RescoreJob, error) {
	var job domain.RescoreJob
	err := db.Pool.QueryRow(ctx, `
		SELECT id, requisition_id, status, attempts, total, completed, error_message,
		       queued_at, started_at, finished_at
		FROM rescore_jobs WHERE id = $1
	`, jobID).Scan(&job.ID, &job.RequisitionID, &job.Status, &job.Attempts, &job.Total,
		&job.Completed, &job.ErrorMessage, &job.QueuedAt, &job.StartedAt, &job.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.RescoreJob{}, domain.NewError(domain.CodeNotFound, "rescore job %s not found", jobID)
	}
	return job, err
}

// ClaimNextRescore selects the next queued job using SKIP LOCKED and marks
// it running, so concurrent workers never claim the same job twice.
func (db *DB) ClaimNextRescore(ctx context.Context) (job domain.RescoreJob, found bool, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return job, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
		SELECT id, requisition_id FROM rescore_jobs
		WHERE status = 'queued'
		ORDER BY queued_at
		FOR UPDATE SKIP LOCKED
		LIMIT 1
	`).Scan(&job.ID, &job.RequisitionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return job, false, nil
	}
	if err != nil {
		return job, false, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE rescore_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1
	`, job.ID); err != nil {
		return job, false, err
	}
	job.Status = domain.JobRunning
	return job, true, nil
}

func (db *DB) UpdateRescoreProgress(ctx context.Context, jobID uuid.UUID, total, completed int) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE rescore_jobs SET total=$2, completed=$3 WHERE id=$1`, jobID, total, completed)
	return err
}

func (db *DB) MarkRescoreCompleted(ctx context.Context, jobID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx,
		`UPDATE rescore_jobs SET status='completed', finished_at=now() WHERE id=$1`, jobID)
	return err
}

func (db *DB) MarkRescoreFailed(ctx context.Context, jobID uuid.UUID, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx,
		`UPDATE rescore_jobs SET status='failed', error_message=$2, finished_at=now() WHERE id=$1`, jobID, reason)
	return err
}
