package ports

import (
	"context"

	"github.com/google/uuid"

	"hirewire/internal/domain"
)

// Pipeline applies validated transitions to applications and appends ledger
// events. All operations are atomic per application and serialized against
// concurrent operations on the same application.
type Pipeline interface {
	MoveToStage(ctx context.Context, actor string, applicationID, stageID uuid.UUID) (domain.Application, error)
	Reject(ctx context.Context, actor string, applicationID uuid.UUID, reason string) (domain.Application, error)
	Withdraw(ctx context.Context, actor string, applicationID uuid.UUID, reason string) (domain.Application, error)
	MarkHired(ctx context.Context, actor string, applicationID uuid.UUID) (domain.Application, error)
	ToggleStar(ctx context.Context, actor string, applicationID uuid.UUID) (domain.Application, error)
}

// Boards derives the kanban projection for a requisition.
type Boards interface {
	Snapshot(ctx context.Context, requisitionID uuid.UUID) (domain.Board, error)
}

// Scoring computes and stores candidate scores on demand.
type Scoring interface {
	Rescore(ctx context.Context, applicationID uuid.UUID) (domain.CandidateScore, error)
}

// Scorer is the outbound scoring primitive: a pure computation of an
// application against requisition criteria.
type Scorer interface {
	Compute(ctx context.Context, app domain.Application, criteria []domain.Criterion) (domain.CandidateScore, error)
}
