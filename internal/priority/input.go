package priority

import (
	"time"

	"github.com/soloflow/crm-api/internal/models"
)

// Input is the common factor record both scorable kinds map into. Scoring
// operates on this shape only; kind-specific rules (terminal statuses for
// tasks, stage rank for projects) live in the adapters below.
type Input struct {
	Due       *time.Time
	Priority  models.PriorityLevel
	Terminal  bool
	VIP       bool
	StageRank int
}

// TaskInput maps a task into the scoring input. Completed and cancelled
// tasks are terminal.
func TaskInput(t *models.Task) Input {
	return Input{
		Due:      t.DueDate,
		Priority: t.Priority,
		Terminal: t.Status.IsTerminal(),
		VIP:      t.ClientVIP,
	}
}

// ProjectInput maps a project into the scoring input. Projects have no
// terminal floor; later stages rank higher.
func ProjectInput(p *models.Project) Input {
	return Input{
		Due:       p.Deadline,
		Priority:  p.Priority,
		VIP:       p.ClientVIP,
		StageRank: stageRank(p.Stage),
	}
}

func stageRank(stage models.ProjectStage) int {
	switch stage {
	case models.ProjectStageDelivery:
		return 4
	case models.ProjectStageReview:
		return 3
	case models.ProjectStageTesting:
		return 2
	case models.ProjectStageDevelopment:
		return 1
	default:
		return 0
	}
}
