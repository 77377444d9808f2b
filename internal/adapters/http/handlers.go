package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"hirewire/internal/domain"
)

// MoveRequest is the body for POST /applications/{id}/move.
type MoveRequest struct {
	StageID string `json:"stage_id" validate:"required,uuid"`
}

// ReasonRequest is the body for reject and withdraw.
type ReasonRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ApplicationResponse is the application snapshot returned by mutations.
type ApplicationResponse struct {
	ID              string  `json:"id"`
	RequisitionID   string  `json:"requisition_id"`
	Status          string  `json:"status"`
	CurrentStageID  *string `json:"current_stage_id"`
	IsStarred       bool    `json:"is_starred"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

// EventResponse is one audit ledger entry.
type EventResponse struct {
	ID          string            `json:"id"`
	Type        string            `json:"event_type"`
	Actor       string            `json:"actor"`
	FromStageID *string           `json:"from_stage_id,omitempty"`
	ToStageID   *string           `json:"to_stage_id,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

func toApplicationResponse(app domain.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:              app.ID.String(),
		RequisitionID:   app.RequisitionID.String(),
		Status:          string(app.Status),
		IsStarred:       app.IsStarred,
		RejectionReason: app.RejectionReason,
	}
	if app.CurrentStageID != nil {
		s := app.CurrentStageID.String()
		resp.CurrentStageID = &s
	}
	return resp
}

// actor returns the authenticated actor supplied by the out-of-scope auth
// layer. Empty means no actor context; the services reject that.
func actor(r *http.Request) string {
	return r.Header.Get("X-Actor")
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.UUID{}, domain.NewError(domain.CodeNotFound, "invalid %s", name)
	}
	return id, nil
}

func (s *Server) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewError(domain.CodeUnknown, "invalid request body")
	}
	if err := s.validate.Struct(dst); err != nil {
		return domain.NewError(domain.CodeUnknown, "invalid request: %v", err)
	}
	return nil
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req MoveRequest
	if err := s.decode(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	stageID, _ := uuid.Parse(req.StageID)
	app, err := s.pipeline.MoveToStage(r.Context(), actor(r), appID, stageID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":     true,
		"application": toApplicationResponse(app),
	})
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req ReasonRequest
	if err := s.decode(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	app, err := s.pipeline.Reject(r.Context(), actor(r), appID, req.Reason)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":     true,
		"application": toApplicationResponse(app),
	})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req ReasonRequest
	if err := s.decode(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	app, err := s.pipeline.Withdraw(r.Context(), actor(r), appID, req.Reason)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":     true,
		"application": toApplicationResponse(app),
	})
}

func (s *Server) handleHire(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	app, err := s.pipeline.MarkHired(r.Context(), actor(r), appID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":     true,
		"application": toApplicationResponse(app),
	})
}

func (s *Server) handleStar(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	app, err := s.pipeline.ToggleStar(r.Context(), actor(r), appID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":     true,
		"application": toApplicationResponse(app),
	})
}

func (s *Server) handleRescore(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	score, err := s.scoring.Rescore(r.Context(), appID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":  true,
		"score_id": score.ID.String(),
		"overall":  score.Overall,
	})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	score, err := s.scores.GetScore(r.Context(), appID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if score == nil {
		s.errorResponse(w, domain.NewError(domain.CodeNotFound, "no score computed yet"))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"id":          score.ID.String(),
		"overall":     score.Overall,
		"breakdown":   score.Breakdown,
		"computed_at": score.ComputedAt,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	appID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	events, err := s.events.ListEvents(r.Context(), appID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	out := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		resp := EventResponse{
			ID:         ev.ID.String(),
			Type:       string(ev.Type),
			Actor:      ev.Actor,
			Metadata:   ev.Metadata,
			OccurredAt: ev.OccurredAt,
		}
		if ev.FromStageID != nil {
			v := ev.FromStageID.String()
			resp.FromStageID = &v
		}
		if ev.ToStageID != nil {
			v := ev.ToStageID.String()
			resp.ToStageID = &v
		}
		out = append(out, resp)
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"events": out})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	reqID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	snap, err := s.boards.Snapshot(r.Context(), reqID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	type column struct {
		StageID      string                `json:"stage_id"`
		Name         string                `json:"name"`
		Order        int                   `json:"order"`
		StageType    string                `json:"stage_type"`
		Count        int                   `json:"count"`
		Applications []ApplicationResponse `json:"applications"`
	}
	columns := make([]column, 0, len(snap.Columns))
	for _, col := range snap.Columns {
		apps := make([]ApplicationResponse, 0, len(col.Applications))
		for _, app := range col.Applications {
			apps = append(apps, toApplicationResponse(app))
		}
		columns = append(columns, column{
			StageID:      col.Stage.ID.String(),
			Name:         col.Stage.Name,
			Order:        col.Stage.Order,
			StageType:    string(col.Stage.StageType),
			Count:        col.Count,
			Applications: apps,
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"requisition_id": snap.RequisitionID.String(),
		"title":          snap.Requisition.Title,
		"closed":         snap.Requisition.Closed(),
		"columns":        columns,
	})
}

func (s *Server) handleEnqueueRescore(w http.ResponseWriter, r *http.Request) {
	reqID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	jobID, err := s.jobs.EnqueueRescore(r.Context(), reqID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, map[string]any{
		"success": true,
		"job_id":  jobID.String(),
	})
}

func (s *Server) handleRescoreJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathUUID(r, "jobID")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	job, err := s.jobs.GetRescoreJob(r.Context(), jobID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"job_id":    job.ID.String(),
		"status":    job.Status,
		"total":     job.Total,
		"completed": job.Completed,
	})
}
