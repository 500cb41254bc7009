package models

// PriorityLevel is the ordinal priority tag set by the user. The same set of
// values is reused as the display bucket derived from the numeric priority
// score (the stored score is the source of truth for ranking, the label is a
// presentation derivative).
type PriorityLevel string

const (
	PriorityLow    PriorityLevel = "low"
	PriorityMedium PriorityLevel = "medium"
	PriorityHigh   PriorityLevel = "high"
	PriorityUrgent PriorityLevel = "urgent"
)
