// Package pipeline owns the authoritative status and stage of applications:
// it validates transitions, applies them atomically, and appends the audit
// ledger.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"hirewire/internal/bus"
	"hirewire/internal/domain"
	"hirewire/internal/ports"
)

type Service struct {
	apps   ports.ApplicationRepository
	stages ports.StageRepository
	bus    *bus.Bus
	now    func() time.Time
}

func New(apps ports.ApplicationRepository, stages ports.StageRepository, b *bus.Bus) *Service {
	return &Service{apps: apps, stages: stages, bus: b, now: time.Now}
}

// mutation computes the next application state. It returns the updated
// application, the ledger events for this mutation, and noop=true when the
// operation is an idempotent success requiring no write.
type mutation func(app domain.Application) (next domain.Application, events []domain.ApplicationEvent, noop bool, err error)

// apply runs a mutation with read-validate-write semantics. A Conflict
// (the row changed between read and write) is retried exactly once with a
// fresh read before surfacing.
func (s *Service) apply(ctx context.Context, applicationID uuid.UUID, fn mutation) (domain.Application, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		app, err := s.apps.GetApplication(ctx, applicationID)
		if err != nil {
			return domain.Application{}, err
		}
		next, events, noop, err := fn(app)
		if err != nil {
			return domain.Application{}, err
		}
		if noop {
			return app, nil
		}
		updated, err := s.apps.UpdateApplication(ctx, next, events)
		if err != nil {
			if domain.IsCode(err, domain.CodeConflict) {
				lastErr = err
				continue
			}
			return domain.Application{}, err
		}
		s.bus.Publish(bus.BoardTopic(updated.RequisitionID))
		s.bus.Publish(bus.ApplicationTopic(updated.ID))
		return updated, nil
	}
	return domain.Application{}, lastErr
}

// MoveToStage moves an application into a stage of its own pipeline,
// deriving the new status from the stage type. Moving to the current stage
// succeeds without appending an event.
func (s *Service) MoveToStage(ctx context.Context, actor string, applicationID, stageID uuid.UUID) (domain.Application, error) {
	if err := requireActor(actor); err != nil {
		return domain.Application{}, err
	}
	stage, err := s.stages.GetStage(ctx, stageID)
	if err != nil {
		return domain.Application{}, err
	}
	return s.apply(ctx, applicationID, func(app domain.Application) (domain.Application, []domain.ApplicationEvent, bool, error) {
		noop, err := Validate(app, stage)
		if err != nil {
			return app, nil, false, err
		}
		if noop {
			return app, nil, true, nil
		}
		now := s.now()
		from := app.CurrentStageID
		app.CurrentStageID = &stage.ID
		app.Status = domain.DeriveStatus(stage.StageType)
		switch app.Status {
		case domain.StatusHired:
			app.HiredAt = &now
		case domain.StatusRejected:
			app.RejectedAt = &now
		}
		ev := s.newEvent(app.ID, domain.EventStageChanged, actor)
		ev.FromStageID = from
		ev.ToStageID = &stage.ID
		ev.Metadata = map[string]string{"stage_name": stage.Name}
		return app, []domain.ApplicationEvent{ev}, false, nil
	})
}

// Reject closes an application from any non-terminal status. Rejecting an
// already rejected application is an idempotent success with no duplicate
// event.
func (s *Service) Reject(ctx context.Context, actor string, applicationID uuid.UUID, reason string) (domain.Application, error) {
	if err := requireActor(actor); err != nil {
		return domain.Application{}, err
	}
	return s.apply(ctx, applicationID, func(app domain.Application) (domain.Application, []domain.ApplicationEvent, bool, error) {
		if app.Status == domain.StatusRejected {
			return app, nil, true, nil
		}
		if app.Status.Terminal() {
			return app, nil, false, domain.NewError(domain.CodeTerminalStatus,
				"application is %s and cannot be rejected", app.Status)
		}
		now := s.now()
		from := app.CurrentStageID
		app.Status = domain.StatusRejected
		app.CurrentStageID = nil
		app.RejectionReason = &reason
		app.RejectedAt = &now
		ev := s.newEvent(app.ID, domain.EventRejected, actor)
		ev.FromStageID = from
		ev.Metadata = map[string]string{"reason": reason}
		return app, []domain.ApplicationEvent{ev}, false, nil
	})
}

// Withdraw is the candidate-initiated mirror of Reject. Unlike Reject it is
// not idempotent: any terminal status, including withdrawn, refuses it.
func (s *Service) Withdraw(ctx context.Context, actor string, applicationID uuid.UUID, reason string) (domain.Application, error) {
	if err := requireActor(actor); err != nil {
		return domain.Application{}, err
	}
	return s.apply(ctx, applicationID, func(app domain.Application) (domain.Application, []domain.ApplicationEvent, bool, error) {
		if app.Status.Terminal() {
			return app, nil, false, domain.NewError(domain.CodeTerminalStatus,
				"application is %s and cannot be withdrawn", app.Status)
		}
		now := s.now()
		from := app.CurrentStageID
		app.Status = domain.StatusWithdrawn
		app.CurrentStageID = nil
		app.WithdrawnAt = &now
		ev := s.newEvent(app.ID, domain.EventWithdrawn, actor)
		ev.FromStageID = from
		ev.Metadata = map[string]string{"reason": reason}
		return app, []domain.ApplicationEvent{ev}, false, nil
	})
}

// MarkHired is legal only from status offer.
func (s *Service) MarkHired(ctx context.Context, actor string, applicationID uuid.UUID) (domain.Application, error) {
	if err := requireActor(actor); err != nil {
		return domain.Application{}, err
	}
	return s.apply(ctx, applicationID, func(app domain.Application) (domain.Application, []domain.ApplicationEvent, bool, error) {
		if app.Status.Terminal() {
			return app, nil, false, domain.NewError(domain.CodeTerminalStatus,
				"application is %s and cannot be hired", app.Status)
		}
		if app.Status != domain.StatusOffer {
			return app, nil, false, domain.NewError(domain.CodeInvalidTransition,
				"only applications at offer can be hired, not %s", app.Status)
		}
		now := s.now()
		app.Status = domain.StatusHired
		app.HiredAt = &now
		ev := s.newEvent(app.ID, domain.EventHired, actor)
		ev.FromStageID = app.CurrentStageID
		return app, []domain.ApplicationEvent{ev}, false, nil
	})
}

// ToggleStar flips the starred flag. Orthogonal to status: legal on
// terminal applications too, and records a lightweight audit event rather
// than a stage event.
func (s *Service) ToggleStar(ctx context.Context, actor string, applicationID uuid.UUID) (domain.Application, error) {
	if err := requireActor(actor); err != nil {
		return domain.Application{}, err
	}
	return s.apply(ctx, applicationID, func(app domain.Application) (domain.Application, []domain.ApplicationEvent, bool, error) {
		app.IsStarred = !app.IsStarred
		kind := domain.EventStarred
		if !app.IsStarred {
			kind = domain.EventUnstarred
		}
		ev := s.newEvent(app.ID, kind, actor)
		return app, []domain.ApplicationEvent{ev}, false, nil
	})
}

func (s *Service) newEvent(applicationID uuid.UUID, kind domain.EventType, actor string) domain.ApplicationEvent {
	return domain.ApplicationEvent{
		ID:            uuid.New(),
		ApplicationID: applicationID,
		Type:          kind,
		Actor:         actor,
		OccurredAt:    s.now(),
	}
}

func requireActor(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return domain.NewError(domain.CodeUnauthorized, "no actor context")
	}
	return nil
}
