package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"hirewire/internal/domain"
)

func (db *DB) GetScore(ctx context.Context, applicationID uuid.UUID) (*domain.CandidateScore, error) {
	var score domain.CandidateScore
	var breakdown []byte
	err := db.Pool.QueryRow(ctx, `
		SELECT id, application_id, overall, breakdown, computed_at
		FROM candidate_scores WHERE application_id = $1
	`, applicationID).Scan(&score.ID, &score.ApplicationID, &score.Overall, &breakdown, &score.ComputedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &score.Breakdown); err != nil {
			return nil, err
		}
	}
	return &score, nil
}

// PutScore replaces the application's score. One score per application:
// each rescore overwrites, no history is kept.
func (db *DB) PutScore(ctx context.Context, score domain.CandidateScore) error {
	breakdown, err := json.Marshal(score.Breakdown)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO candidate_scores (id, application_id, overall, breakdown, computed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (application_id) DO UPDATE SET
			id = EXCLUDED.id, overall = EXCLUDED.overall,
			breakdown = EXCLUDED.breakdown, computed_at = EXCLUDED.computed_at
	`, score.ID, score.ApplicationID, score.Overall, breakdown, score.ComputedAt)
	return err
}
