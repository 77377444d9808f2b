// Package scoring triggers and records candidate scores against
// requisition criteria, independent of pipeline state.
package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"hirewire/internal/bus"
	"hirewire/internal/domain"
	"hirewire/internal/ports"
)

type Service struct {
	apps   ports.ApplicationRepository
	reqs   ports.RequisitionRepository
	scores ports.ScoreRepository
	scorer ports.Scorer
	bus    *bus.Bus
	group  singleflight.Group
	now    func() time.Time
}

func New(apps ports.ApplicationRepository, reqs ports.RequisitionRepository, scores ports.ScoreRepository, scorer ports.Scorer, b *bus.Bus) *Service {
	return &Service{apps: apps, reqs: reqs, scores: scores, scorer: scorer, bus: b, now: time.Now}
}

// Rescore computes a fresh score for the application and replaces any
// existing one. Concurrent rescores of the same application collapse into
// a single complete computation, so the stored score never reflects an
// interleaving of two runs. On failure any prior score is left untouched.
func (s *Service) Rescore(ctx context.Context, applicationID uuid.UUID) (domain.CandidateScore, error) {
	v, err, _ := s.group.Do(applicationID.String(), func() (any, error) {
		return s.rescore(ctx, applicationID)
	})
	if err != nil {
		return domain.CandidateScore{}, err
	}
	return v.(domain.CandidateScore), nil
}

func (s *Service) rescore(ctx context.Context, applicationID uuid.UUID) (domain.CandidateScore, error) {
	app, err := s.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return domain.CandidateScore{}, err
	}
	if app.Status.Terminal() {
		return domain.CandidateScore{}, domain.NewError(domain.CodeTerminalStatus,
			"application is %s and is no longer scored", app.Status)
	}
	req, err := s.reqs.GetRequisition(ctx, app.RequisitionID)
	if err != nil {
		return domain.CandidateScore{}, err
	}
	score, err := s.scorer.Compute(ctx, app, req.Criteria)
	if err != nil {
		return domain.CandidateScore{}, err
	}
	score.ID = uuid.New()
	score.ApplicationID = app.ID
	score.ComputedAt = s.now()
	if err := s.scores.PutScore(ctx, score); err != nil {
		return domain.CandidateScore{}, err
	}
	s.bus.Publish(bus.ApplicationTopic(app.ID))
	return score, nil
}
