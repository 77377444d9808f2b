package ports

import (
	"context"

	"github.com/google/uuid"

	"hirewire/internal/domain"
)

// RescoreJobRepository supports enqueueing and claiming batch rescore jobs.
type RescoreJobRepository interface {
	EnqueueRescore(ctx context.Context, requisitionID uuid.UUID) (jobID uuid.UUID, err error)
	GetRescoreJob(ctx context.Context, jobID uuid.UUID) (domain.RescoreJob, error)
	ClaimNextRescore(ctx context.Context) (job domain.RescoreJob, found bool, err error)
	UpdateRescoreProgress(ctx context.Context, jobID uuid.UUID, total, completed int) error
	MarkRescoreCompleted(ctx context.Context, jobID uuid.UUID) error
	MarkRescoreFailed(ctx context.Context, jobID uuid.UUID, reason string) error
}
