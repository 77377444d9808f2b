package domain

import (
	"time"

	"github.com/google/uuid"
)

// Core domain models for the hiring pipeline. API request/response shapes
// live in the HTTP adapter; keep these decoupled where helpful.

// Requisition is an open hiring need. It owns an ordered pipeline of stages
// and the applications filed against it.
type Requisition struct {
	ID         uuid.UUID
	PipelineID uuid.UUID
	Title      string
	Headcount  int
	Filled     int
	Status     string // open|closed
	Criteria   []Criterion
	CreatedAt  time.Time
}

// Closed reports whether the requisition no longer accepts pipeline
// movement: either explicitly closed or fully staffed.
func (r Requisition) Closed() bool {
	return r.Status == "closed" || (r.Headcount > 0 && r.Filled >= r.Headcount)
}

// Criterion is one weighted scoring dimension of a requisition.
type Criterion struct {
	Name     string   `json:"name"`
	Weight   float64  `json:"weight"`
	Keywords []string `json:"keywords"`
}

// Stage is one named step in a requisition's pipeline. Stages are
// configuration: created and edited by recruiters elsewhere, read-only here.
type Stage struct {
	ID         uuid.UUID
	PipelineID uuid.UUID
	Name       string
	Order      int // unique within a pipeline, defines left-to-right position
	StageType  StageType
}

// Application is a candidate's submission against a requisition, the one
// mutable entity this core manages. Version is bumped on every write and
// checked on update (optimistic locking).
type Application struct {
	ID               uuid.UUID
	RequisitionID    uuid.UUID
	PipelineID       uuid.UUID
	RequisitionTitle string
	CandidateName    string
	CandidateSummary string
	CandidateSkills  []string
	Status           Status
	CurrentStageID   *uuid.UUID
	IsStarred        bool
	RejectionReason  *string
	RejectedAt       *time.Time
	HiredAt          *time.Time
	WithdrawnAt      *time.Time
	AppliedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
}

// EventType enumerates the persisted ledger entry kinds.
type EventType string

const (
	EventStageChanged EventType = "stage_changed"
	EventRejected     EventType = "rejected"
	EventWithdrawn    EventType = "withdrawn"
	EventHired        EventType = "hired"
	EventStarred      EventType = "starred"
	EventUnstarred    EventType = "unstarred"
	EventNoteAdded    EventType = "note_added"
	EventScored       EventType = "scored"
)

// ApplicationEvent is a single append-only audit entry. Entries are created
// exactly once per mutation and never edited or deleted; stage history is
// reconstructable only from this ledger.
type ApplicationEvent struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	Type          EventType
	Actor         string
	FromStageID   *uuid.UUID
	ToStageID     *uuid.UUID
	Metadata      map[string]string
	OccurredAt    time.Time
}

// CandidateScore is the latest computed fit of an application against its
// requisition's criteria. Each rescore replaces the previous value; absence
// means "not yet computed", not zero.
type CandidateScore struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	Overall       float64 // 0-100
	Breakdown     []CriterionScore
	ComputedAt    time.Time
}

// CriterionScore is the per-criterion portion of a candidate score.
type CriterionScore struct {
	Criterion string   `json:"criterion"`
	Weight    float64  `json:"weight"`
	Score     float64  `json:"score"` // 0-100 before weighting
	Matched   []string `json:"matched,omitempty"`
}

// BoardColumn is one stage column of the board projection.
type BoardColumn struct {
	Stage        Stage
	Applications []Application
	Count        int
}

// Board is the derived kanban view of one requisition: its non-terminal
// applications grouped by current stage. Never persisted; always
// recomputable from applications plus stages.
type Board struct {
	RequisitionID uuid.UUID
	Requisition   Requisition
	Columns       []BoardColumn
}

// RescoreJobStatus enumerates batch rescore job states.
const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// RescoreJob is a queued batch rescore of every open application in a
// requisition.
type RescoreJob struct {
	ID            uuid.UUID
	RequisitionID uuid.UUID
	Status        string
	Attempts      int
	Total         int
	Completed     int
	ErrorMessage  *string
	QueuedAt      time.Time
	StartedAt     *time.Time
	FinishedAt    *time.Time
}
