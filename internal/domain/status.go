package domain

// StageType classifies a stage within the fixed catalog of stage kinds.
// hired and rejected mark terminal columns.
type StageType string

const (
	StageSourced   StageType = "sourced"
	StageApplied   StageType = "applied"
	StageScreening StageType = "screening"
	StageInterview StageType = "interview"
	StageOffer     StageType = "offer"
	StageHired     StageType = "hired"
	StageRejected  StageType = "rejected"
)

// Status is the lifecycle status of an application. Correlated with, but
// distinct from, the current stage: an application can hold a status with
// no assigned stage (e.g. right after rejection).
type Status string

const (
	StatusApplied   Status = "applied"
	StatusScreening Status = "screening"
	StatusInterview Status = "interview"
	StatusOffer     Status = "offer"
	StatusHired     Status = "hired"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// DeriveStatus maps a stage type to the application status it implies.
// Single source of truth: every call site that moves an application into a
// stage derives the new status through here.
func DeriveStatus(t StageType) Status {
	switch t {
	case StageSourced, StageApplied:
		return StatusApplied
	case StageScreening:
		return StatusScreening
	case StageInterview:
		return StatusInterview
	case StageOffer:
		return StatusOffer
	case StageHired:
		return StatusHired
	case StageRejected:
		return StatusRejected
	default:
		return StatusApplied
	}
}

// Terminal reports whether s permits no further stage or status transition.
func (s Status) Terminal() bool {
	return s == StatusHired || s == StatusRejected || s == StatusWithdrawn
}
