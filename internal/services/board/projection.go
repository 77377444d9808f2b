package board

import (
	"sort"

	"hirewire/internal/domain"
)

// Project derives the board view from authoritative state: every
// non-terminal application of the requisition partitioned exactly once
// across the pipeline's stages, columns ordered left to right.
//
// Applications in a terminal status or with no assigned stage do not appear
// on the board. The projection is never persisted.
func Project(req domain.Requisition, stages []domain.Stage, apps []domain.Application) domain.Board {
	ordered := make([]domain.Stage, len(stages))
	copy(ordered, stages)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	byStage := make(map[[16]byte][]domain.Application, len(ordered))
	for _, app := range apps {
		if app.Status.Terminal() || app.CurrentStageID == nil {
			continue
		}
		key := [16]byte(*app.CurrentStageID)
		byStage[key] = append(byStage[key], app)
	}

	columns := make([]domain.BoardColumn, 0, len(ordered))
	for _, stage := range ordered {
		cards := byStage[[16]byte(stage.ID)]
		sort.Slice(cards, func(i, j int) bool { return cards[i].AppliedAt.Before(cards[j].AppliedAt) })
		columns = append(columns, domain.BoardColumn{
			Stage:        stage,
			Applications: cards,
			Count:        len(cards),
		})
	}
	return domain.Board{RequisitionID: req.ID, Requisition: req, Columns: columns}
}
