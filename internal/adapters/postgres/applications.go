package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"hirewire/internal/domain"
)

const applicationColumns = `
	id, requisition_id, pipeline_id, requisition_title, candidate_name,
	candidate_summary, candidate_skills, status, current_stage_id,
	is_starred, rejection_reason, rejected_at, hired_at, withdrawn_at,
	applied_at, updated_at, version`

func scanApplication(row pgx.Row) (domain.Application, error) {
	var app domain.Application
	var status string
	err := row.Scan(
		&app.ID, &app.RequisitionID, &app.PipelineID, &app.RequisitionTitle,
		&app.CandidateName, &app.CandidateSummary, &app.CandidateSkills,
		&status, &app.CurrentStageID, &app.IsStarred, &app.RejectionReason,
		&app.RejectedAt, &app.HiredAt, &app.WithdrawnAt, &app.AppliedAt,
		&app.UpdatedAt, &app.Version,
	)
	if err != nil {
		return domain.Application{}, err
	}
	app.Status = domain.Status(status)
	return app, nil
}

func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (domain.Application, error) {
	app, err := scanApplication(db.Pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Application{}, domain.NewError(domain.CodeNotFound, "application %s not found", id)
	}
	return app, err
}

func (db *DB) ListApplicationsByRequisition(ctx context.Context, requisitionID uuid.UUID) ([]domain.Application, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE requisition_id = $1 ORDER BY applied_at`, requisitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

// UpdateApplication writes the new application state and its ledger events
// atomically. The row is locked for the duration of the transaction, the
// version check rejects writes against stale reads, and a hire bumps the
// owning requisition's filled count in the same transaction.
func (db *DB) UpdateApplication(ctx context.Context, app domain.Application, events []domain.ApplicationEvent) (updated domain.Application, err error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Application{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var oldStatus string
	err = tx.QueryRow(ctx,
		`SELECT status FROM applications WHERE id = $1 FOR UPDATE`, app.ID).Scan(&oldStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Application{}, domain.NewError(domain.CodeNotFound, "application %s not found", app.ID)
	}
	if err != nil {
		return domain.Application{}, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE applications SET
			status = $2, current_stage_id = $3, is_starred = $4,
			rejection_reason = $5, rejected_at = $6, hired_at = $7,
			withdrawn_at = $8, updated_at = now(), version = version + 1
		WHERE id = $1 AND version = $9
	`, app.ID, string(app.Status), app.CurrentStageID, app.IsStarred,
		app.RejectionReason, app.RejectedAt, app.HiredAt, app.WithdrawnAt,
		app.Version)
	if err != nil {
		return domain.Application{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.Application{}, domain.NewError(domain.CodeConflict,
			"application %s changed concurrently", app.ID)
	}

	for _, ev := range events {
		if _, err = tx.Exec(ctx, `
			INSERT INTO application_events
				(id, application_id, event_type, actor, from_stage_id, to_stage_id, metadata, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, ev.ID, ev.ApplicationID, string(ev.Type), ev.Actor,
			ev.FromStageID, ev.ToStageID, metadataJSON(ev.Metadata), ev.OccurredAt); err != nil {
			return domain.Application{}, err
		}
	}

	if domain.Status(oldStatus) != domain.StatusHired && app.Status == domain.StatusHired {
		if _, err = tx.Exec(ctx,
			`UPDATE requisitions SET filled = filled + 1 WHERE id = $1`, app.RequisitionID); err != nil {
			return domain.Application{}, err
		}
	}

	updated, err = scanApplication(tx.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, app.ID))
	return updated, err
}
