package pipeline

import (
	"hirewire/internal/domain"
)

// Validate decides whether app may move to target. Pure function over the
// supplied state; no side effects.
//
// Rule order matters: terminal status first, then pipeline membership, then
// the idempotent same-stage case. Backward moves are legal, so recruiters
// can correct mistakes; the ledger is what distinguishes them.
func Validate(app domain.Application, target domain.Stage) (noop bool, err error) {
	if app.Status.Terminal() {
		return false, domain.NewError(domain.CodeTerminalStatus,
			"application is %s and can no longer move", app.Status)
	}
	if target.PipelineID != app.PipelineID {
		return false, domain.NewError(domain.CodeStageNotInPipeline,
			"stage %q belongs to a different pipeline", target.Name)
	}
	if app.CurrentStageID != nil && *app.CurrentStageID == target.ID {
		return true, nil
	}
	return false, nil
}
