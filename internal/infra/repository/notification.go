package repository

import (
	"context"
	"time"

	"commerce-core/internal/infra"
	"commerce-core/internal/infra/db"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

// NotificationRepository is the outbox for customer notices: jobs are
// enqueued in the reconciliation transaction and drained by the dispatcher.
type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(dbtx db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: dbtx}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, dbtx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := dbtx.Exec(ctx, `
		INSERT INTO notification_jobs (id, kind, topic, payload, run_at, attempts, status, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, 'PENDING', now())`,
		uuid.New(), kind, topic, payload, runAt)
	if err != nil {
		return infra.WrapRepoErr("failed to enqueue notification job", err)
	}
	return nil
}

const listPendingJobsSQL = `
SELECT id, kind, topic, payload, run_at, attempts, status, created_at
FROM notification_jobs
WHERE status = 'PENDING' AND run_at <= now()
ORDER BY run_at
LIMIT $1
FOR UPDATE SKIP LOCKED`

func (r *NotificationRepository) ListPending(ctx context.Context, dbtx db.DBTX, limit int32) ([]shared.NotificationJob, error) {
	rows, err := dbtx.Query(ctx, listPendingJobsSQL, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list pending notification jobs", err)
	}
	defer rows.Close()

	var jobs []shared.NotificationJob
	for rows.Next() {
		var j shared.NotificationJob
		if err := rows.Scan(&j.ID, &j.Kind, &j.Topic, &j.Payload, &j.RunAt, &j.Attempts, &j.Status, &j.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification job", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read notification jobs", err)
	}
	return jobs, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, dbtx db.DBTX, jobID uuid.UUID) error {
	_, err := dbtx.Exec(ctx, `
		UPDATE notification_jobs
		SET status = 'SENT', attempts = attempts + 1
		WHERE id = $1`, jobID)
	if err != nil {
		return infra.WrapRepoErr("failed to mark notification sent", err)
	}
	return nil
}

// MarkFailed re-schedules with a linear delay; a job is parked as DEAD after
// five attempts.
func (r *NotificationRepository) MarkFailed(ctx context.Context, dbtx db.DBTX, jobID uuid.UUID) error {
	_, err := dbtx.Exec(ctx, `
		UPDATE notification_jobs
		SET attempts = attempts + 1,
		    status = CASE WHEN attempts + 1 >= 5 THEN 'DEAD' ELSE 'PENDING' END,
		    run_at = now() + make_interval(secs => 30 * (attempts + 1))
		WHERE id = $1`, jobID)
	if err != nil {
		return infra.WrapRepoErr("failed to mark notification failed", err)
	}
	return nil
}
