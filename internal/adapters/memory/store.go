// Package memory is an in-memory implementation of the repository ports,
// used by unit tests and local development. Semantics mirror the postgres
// adapter: optimistic version checks, atomic row-plus-ledger writes, and
// headcount accounting on hire.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hirewire/internal/domain"
	"hirewire/internal/ports"
)

type Store struct {
	mu           sync.Mutex
	requisitions map[uuid.UUID]domain.Requisition
	stages       map[uuid.UUID]domain.Stage
	applications map[uuid.UUID]domain.Application
	events       map[uuid.UUID][]domain.ApplicationEvent
	scores       map[uuid.UUID]domain.CandidateScore
	jobs         map[uuid.UUID]domain.RescoreJob
	jobOrder     []uuid.UUID
}

var (
	_ ports.ApplicationRepository = (*Store)(nil)
	_ ports.StageRepository       = (*Store)(nil)
	_ ports.RequisitionRepository = (*Store)(nil)
	_ ports.EventRepository       = (*Store)(nil)
	_ ports.ScoreRepository       = (*Store)(nil)
	_ ports.RescoreJobRepository  = (*Store)(nil)
)

func New() *Store {
	return &Store{
		requisitions: make(map[uuid.UUID]domain.Requisition),
		stages:       make(map[uuid.UUID]domain.Stage),
		applications: make(map[uuid.UUID]domain.Application),
		events:       make(map[uuid.UUID][]domain.ApplicationEvent),
		scores:       make(map[uuid.UUID]domain.CandidateScore),
		jobs:         make(map[uuid.UUID]domain.RescoreJob),
	}
}

// Seed helpers for tests and local bootstrapping.

func (s *Store) PutRequisition(req domain.Requisition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requisitions[req.ID] = req
}

func (s *Store) PutStage(stage domain.Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages[stage.ID] = stage
}

func (s *Store) PutApplication(app domain.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[app.ID] = app
}

func (s *Store) GetRequisition(_ context.Context, id uuid.UUID) (domain.Requisition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requisitions[id]
	if !ok {
		return domain.Requisition{}, domain.NewError(domain.CodeNotFound, "requisition %s not found", id)
	}
	return req, nil
}

func (s *Store) GetStage(_ context.Context, id uuid.UUID) (domain.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stage, ok := s.stages[id]
	if !ok {
		return domain.Stage{}, domain.NewError(domain.CodeNotFound, "stage %s not found", id)
	}
	return stage, nil
}

func (s *Store) ListStagesByPipeline(_ context.Context, pipelineID uuid.UUID) ([]domain.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Stage
	for _, stage := range s.stages {
		if stage.PipelineID == pipelineID {
			out = append(out, stage)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *Store) GetApplication(_ context.Context, id uuid.UUID) (domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[id]
	if !ok {
		return domain.Application{}, domain.NewError(domain.CodeNotFound, "application %s not found", id)
	}
	return app, nil
}

func (s *Store) ListApplicationsByRequisition(_ context.Context, requisitionID uuid.UUID) ([]domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Application
	for _, app := range s.applications {
		if app.RequisitionID == requisitionID {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.Before(out[j].AppliedAt) })
	return out, nil
}

func (s *Store) UpdateApplication(_ context.Context, app domain.Application, events []domain.ApplicationEvent) (domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.applications[app.ID]
	if !ok {
		return domain.Application{}, domain.NewError(domain.CodeNotFound, "application %s not found", app.ID)
	}
	if stored.Version != app.Version {
		return domain.Application{}, domain.NewError(domain.CodeConflict,
			"application %s changed concurrently", app.ID)
	}
	app.Version++
	app.UpdatedAt = time.Now()
	s.applications[app.ID] = app
	s.events[app.ID] = append(s.events[app.ID], events...)
	if stored.Status != domain.StatusHired && app.Status == domain.StatusHired {
		if req, ok := s.requisitions[app.RequisitionID]; ok {
			req.Filled++
			s.requisitions[app.RequisitionID] = req
		}
	}
	return app, nil
}

func (s *Store) ListEvents(_ context.Context, applicationID uuid.UUID) ([]domain.ApplicationEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := append([]domain.ApplicationEvent(nil), s.events[applicationID]...)
	sort.Slice(events, func(i, j int) bool { return events[i].OccurredAt.After(events[j].OccurredAt) })
	return events, nil
}

func (s *Store) GetScore(_ context.Context, applicationID uuid.UUID) (*domain.CandidateScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	score, ok := s.scores[applicationID]
	if !ok {
		return nil, nil
	}
	return &score, nil
}

func (s *Store) PutScore(_ context.Context, score domain.CandidateScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[score.ApplicationID] = score
	return nil
}

func (s *Store) EnqueueRescore(_ context.Context, requisitionID uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := domain.RescoreJob{
		ID:            uuid.New(),
		RequisitionID: requisitionID,
		Status:        domain.JobQueued,
		QueuedAt:      time.Now(),
	}
	s.jobs[job.ID] = job
	s.jobOrder = append(s.jobOrder, job.ID)
	return job.ID, nil
}

func (s *Store) GetRescoreJob(_ context.Context, jobID uuid.UUID) (domain.RescoreJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return domain.RescoreJob{}, domain.NewError(domain.CodeNotFound, "rescore job %s not found", jobID)
	}
	return job, nil
}

func (s *Store) ClaimNextRescore(_ context.Context) (domain.RescoreJob, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.jobOrder {
		job := s.jobs[id]
		if job.Status != domain.JobQueued {
			continue
		}
		now := time.Now()
		job.Status = domain.JobRunning
		job.Attempts++
		job.StartedAt = &now
		s.jobs[id] = job
		return job, true, nil
	}
	return domain.RescoreJob{}, false, nil
}

func (s *Store) UpdateRescoreProgress(_ context.Context, jobID uuid.UUID, total, completed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return domain.NewError(domain.CodeNotFound, "rescore job %s not found", jobID)
	}
	job.Total = total
	job.Completed = completed
	s.jobs[jobID] = job
	return nil
}

func (s *Store) MarkRescoreCompleted(_ context.Context, jobID uuid.UUID) error {
	return s.finishJob(jobID, domain.JobCompleted, nil)
}

func (s *Store) MarkRescoreFailed(_ context.Context, jobID uuid.UUID, reason string) error {
	return s.finishJob(jobID, domain.JobFailed, &reason)
}

func (s *Store) finishJob(jobID uuid.UUID, status string, reason *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return domain.NewError(domain.CodeNotFound, "rescore job %s not found", jobID)
	}
	now := time.Now()
	job.Status = status
	job.FinishedAt = &now
	job.ErrorMessage = reason
	s.jobs[jobID] = job
	return nil
}
