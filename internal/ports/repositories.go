package ports

import (
	"context"

	"github.com/google/uuid"

	"hirewire/internal/domain"
)

// ApplicationRepository stores applications and their event ledger.
//
// Update is the single mutation path: it compares app.Version against the
// stored row, writes the new row with Version+1, and appends the given
// events in the same transaction. A stale version yields a Conflict error
// and no write. No reader may ever observe the row updated without its
// events, or vice versa.
type ApplicationRepository interface {
	GetApplication(ctx context.Context, id uuid.UUID) (domain.Application, error)
	ListApplicationsByRequisition(ctx context.Context, requisitionID uuid.UUID) ([]domain.Application, error)
	UpdateApplication(ctx context.Context, app domain.Application, events []domain.ApplicationEvent) (domain.Application, error)
}

// StageRepository reads the stage catalog. Stages are configuration owned
// elsewhere; this core never writes them.
type StageRepository interface {
	GetStage(ctx context.Context, id uuid.UUID) (domain.Stage, error)
	ListStagesByPipeline(ctx context.Context, pipelineID uuid.UUID) ([]domain.Stage, error)
}

// RequisitionRepository reads requisitions.
type RequisitionRepository interface {
	GetRequisition(ctx context.Context, id uuid.UUID) (domain.Requisition, error)
}

// EventRepository reads the append-only application ledger. Appends happen
// only through ApplicationRepository.UpdateApplication.
type EventRepository interface {
	ListEvents(ctx context.Context, applicationID uuid.UUID) ([]domain.ApplicationEvent, error)
}

// ScoreRepository stores the latest candidate score per application.
// GetScore returns nil when no score has been computed yet.
type ScoreRepository interface {
	GetScore(ctx context.Context, applicationID uuid.UUID) (*domain.CandidateScore, error)
	PutScore(ctx context.Context, score domain.CandidateScore) error
}
