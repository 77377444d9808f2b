package board

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirewire/internal/domain"
)

func TestProject(t *testing.T) {
	req := domain.Requisition{ID: uuid.New(), PipelineID: uuid.New()}
	screening := domain.Stage{ID: uuid.New(), PipelineID: req.PipelineID, Name: "Screening", Order: 1, StageType: domain.StageScreening}
	interview := domain.Stage{ID: uuid.New(), PipelineID: req.PipelineID, Name: "Interview", Order: 2, StageType: domain.StageInterview}
	// Deliberately passed out of order.
	stages := []domain.Stage{interview, screening}

	newApp := func(stageID *uuid.UUID, status domain.Status, appliedAt time.Time) domain.Application {
		return domain.Application{
			ID:             uuid.New(),
			RequisitionID:  req.ID,
			PipelineID:     req.PipelineID,
			Status:         status,
			CurrentStageID: stageID,
			AppliedAt:      appliedAt,
		}
	}

	base := time.Now()
	a := newApp(&screening.ID, domain.StatusScreening, base)
	b := newApp(&screening.ID, domain.StatusScreening, base.Add(-time.Hour))
	c := newApp(&interview.ID, domain.StatusInterview, base)
	rejected := newApp(nil, domain.StatusRejected, base)
	hired := newApp(&interview.ID, domain.StatusHired, base)

	boardView := Project(req, stages, []domain.Application{a, b, c, rejected, hired})

	require.Len(t, boardView.Columns, 2)
	assert.Equal(t, "Screening", boardView.Columns[0].Stage.Name)
	assert.Equal(t, "Interview", boardView.Columns[1].Stage.Name)

	// Every non-terminal application appears exactly once, terminal ones
	// not at all.
	seen := make(map[uuid.UUID]int)
	total := 0
	for _, col := range boardView.Columns {
		assert.Equal(t, len(col.Applications), col.Count)
		for _, app := range col.Applications {
			seen[app.ID]++
			total++
		}
	}
	assert.Equal(t, 3, total)
	for id, n := range seen {
		assert.Equal(t, 1, n, "application %s duplicated", id)
	}
	assert.NotContains(t, seen, rejected.ID)
	assert.NotContains(t, seen, hired.ID)

	// Cards within a column sort by application time.
	assert.Equal(t, b.ID, boardView.Columns[0].Applications[0].ID)
	assert.Equal(t, a.ID, boardView.Columns[0].Applications[1].ID)
}

func TestProjectEmpty(t *testing.T) {
	req := domain.Requisition{ID: uuid.New(), PipelineID: uuid.New()}
	stage := domain.Stage{ID: uuid.New(), PipelineID: req.PipelineID, Name: "Applied", Order: 0, StageType: domain.StageApplied}

	boardView := Project(req, []domain.Stage{stage}, nil)
	require.Len(t, boardView.Columns, 1)
	assert.Zero(t, boardView.Columns[0].Count)
	assert.Empty(t, boardView.Columns[0].Applications)
}
