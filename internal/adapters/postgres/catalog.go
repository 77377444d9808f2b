package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"hirewire/internal/domain"
)

// Stage and requisition reads. Both are configuration owned outside this
// core; only reads live here.

func (db *DB) GetStage(ctx context.Context, id uuid.UUID) (domain.Stage, error) {
	var stage domain.Stage
	var stageType string
	err := db.Pool.QueryRow(ctx, `
		SELECT id, pipeline_id, name, stage_order, stage_type
		FROM stages WHERE id = $1
	`, id).Scan(&stage.ID, &stage.PipelineID, &stage.Name, &stage.Order, &stageType)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Stage{}, domain.NewError(domain.CodeNotFound, "stage %s not found", id)
	}
	if err != nil {
		return domain.Stage{}, err
	}
	stage.StageType = domain.StageType(stageType)
	return stage, nil
}

func (db *DB) ListStagesByPipeline(ctx context.Context, pipelineID uuid.UUID) ([]domain.Stage, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, pipeline_id, name, stage_order, stage_type
		FROM stages WHERE pipeline_id = $1 ORDER BY stage_order
	`, pipelineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Stage
	for rows.Next() {
		var stage domain.Stage
		var stageType string
		if err := rows.Scan(&stage.ID, &stage.PipelineID, &stage.Name, &stage.Order, &stageType); err != nil {
			return nil, err
		}
		stage.StageType = domain.StageType(stageType)
		out = append(out, stage)
	}
	return out, rows.Err()
}

func (db *DB) GetRequisition(ctx context.Context, id uuid.UUID) (domain.Requisition, error) {
	var req domain.Requisition
	var criteria []byte
	err := db.Pool.QueryRow(ctx, `
		SELECT id, pipeline_id, title, headcount, filled, status, criteria, created_at
		FROM requisitions WHERE id = $1
	`, id).Scan(&req.ID, &req.PipelineID, &req.Title, &req.Headcount, &req.Filled,
		&req.Status, &criteria, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Requisition{}, domain.NewError(domain.CodeNotFound, "requisition %s not found", id)
	}
	if err != nil {
		return domain.Requisition{}, err
	}
	if len(criteria) > 0 {
		if err := json.Unmarshal(criteria, &req.Criteria); err != nil {
			return domain.Requisition{}, err
		}
	}
	return req, nil
}
