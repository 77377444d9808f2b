package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"hirewire/internal/domain"
)

func (db *DB) ListEvents(ctx context.Context, applicationID uuid.UUID) ([]domain.ApplicationEvent, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, application_id, event_type, actor, from_stage_id, to_stage_id, metadata, occurred_at
		FROM application_events
		WHERE application_id = $1
		ORDER BY occurred_at DESC
	`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.ApplicationEvent
	for rows.Next() {
		var ev domain.ApplicationEvent
		var kind string
		var meta []byte
		if err := rows.Scan(&ev.ID, &ev.ApplicationID, &kind, &ev.Actor,
			&ev.FromStageID, &ev.ToStageID, &meta, &ev.OccurredAt); err != nil {
			return nil, err
		}
		ev.Type = domain.EventType(kind)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &ev.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func metadataJSON(m map[string]string) []byte {
	if len(m) == 0 {
		return []byte(`{}`)
	}
	b, err := json.Marshal(m)
	if err != nil {
		return []byte(`{}`)
	}
	return b
}
