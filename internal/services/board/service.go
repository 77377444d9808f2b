// Package board derives the kanban projection of a requisition and
// reconciles speculative client moves against the authoritative pipeline.
package board

import (
	"context"

	"github.com/google/uuid"

	"hirewire/internal/domain"
	"hirewire/internal/ports"
)

type Service struct {
	reqs   ports.RequisitionRepository
	stages ports.StageRepository
	apps   ports.ApplicationRepository
}

func New(reqs ports.RequisitionRepository, stages ports.StageRepository, apps ports.ApplicationRepository) *Service {
	return &Service{reqs: reqs, stages: stages, apps: apps}
}

// Snapshot recomputes the board for one requisition from server truth.
func (s *Service) Snapshot(ctx context.Context, requisitionID uuid.UUID) (domain.Board, error) {
	req, err := s.reqs.GetRequisition(ctx, requisitionID)
	if err != nil {
		return domain.Board{}, err
	}
	stages, err := s.stages.ListStagesByPipeline(ctx, req.PipelineID)
	if err != nil {
		return domain.Board{}, err
	}
	apps, err := s.apps.ListApplicationsByRequisition(ctx, requisitionID)
	if err != nil {
		return domain.Board{}, err
	}
	return Project(req, stages, apps), nil
}
