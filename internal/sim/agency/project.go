package agency

type ProjectType string

const (
	TypeConstruction ProjectType = "Construction"
	TypeMaintenance  ProjectType = "Maintenance"
	TypeUpgrade      ProjectType = "Upgrade"
)

func ParseProjectType(s string) (ProjectType, bool) {
	switch ProjectType(s) {
	case TypeConstruction, TypeMaintenance, TypeUpgrade:
		return ProjectType(s), true
	}
	return "", false
}

type ProjectStatus string

const (
	StatusProposed   ProjectStatus = "Proposed"
	StatusApproved   ProjectStatus = "Approved"
	StatusInProgress ProjectStatus = "InProgress"
	StatusCompleted  ProjectStatus = "Completed"
	StatusCancelled  ProjectStatus = "Cancelled"
)

// validTransitions is the project lifecycle: no transition skips a state
// and Completed/Cancelled are terminal.
var validTransitions = map[ProjectStatus]map[ProjectStatus]bool{
	StatusProposed:   {StatusApproved: true, StatusCancelled: true},
	StatusApproved:   {StatusInProgress: true, StatusCancelled: true},
	StatusInProgress: {StatusCompleted: true},
}

func (s ProjectStatus) canTransition(to ProjectStatus) bool {
	return validTransitions[s][to]
}

func (s ProjectStatus) terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Project is a budgeted, contracted unit of work against one or more
// assets. Asset and contractor links are by identifier, resolved through
// the engine's registries.
type Project struct {
	ID            uint64
	Name          string
	Type          ProjectType
	AssetIDs      []int
	EstimatedCost float64

	AllocatedBudget float64
	StartDay        uint64
	EndDay          uint64
	Status          ProjectStatus
	Progress        float64 // clamped [0,100]

	ContractorID   int // 0 = unassigned
	BidAmount      float64
	CompletionDays int // contractor-quoted
}

// UpdateProgress recomputes schedule-based completion for the given
// day, so progress never drifts from float accumulation and a project
// completes exactly on its EndDay. A degenerate schedule
// (EndDay <= StartDay) completes on the first update. Returns true on
// the transition to Completed.
func (p *Project) UpdateProgress(day uint64) bool {
	if p.Status != StatusInProgress {
		return false
	}
	if p.EndDay <= p.StartDay || day >= p.EndDay {
		p.Progress = 100
		p.Status = StatusCompleted
		return true
	}
	if day <= p.StartDay {
		return false
	}
	p.Progress = float64(day-p.StartDay) / float64(p.EndDay-p.StartDay) * 100
	return false
}
