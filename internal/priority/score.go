package priority

import (
	"fmt"
	"os"
	"time"

	"github.com/soloflow/crm-api/internal/models"
	"gopkg.in/yaml.v3"
)

// Weights holds the tunable constants of the priority scoring algorithm.
// The defaults satisfy the required orderings (overdue dominance, priority
// tag ordering, terminal floor, VIP additivity); deployments can override
// them with a YAML file.
type Weights struct {
	// Time urgency, stepped by days remaining until the due date/deadline.
	// Each step must be >= the next for the score to stay monotonic with
	// date proximity.
	Overdue     float64 `yaml:"overdue"`       // due date already passed
	DueToday    float64 `yaml:"due_today"`     // due within 1 day
	DueSoon     float64 `yaml:"due_soon"`      // due within 3 days
	DueThisWeek float64 `yaml:"due_this_week"` // due within 7 days
	DueLater    float64 `yaml:"due_later"`     // dated, more than 7 days out
	NoDueDate   float64 `yaml:"no_due_date"`   // baseline for undated items

	// Priority tag contribution, urgent > high > medium > low.
	PriorityLow    float64 `yaml:"priority_low"`
	PriorityMedium float64 `yaml:"priority_medium"`
	PriorityHigh   float64 `yaml:"priority_high"`
	PriorityUrgent float64 `yaml:"priority_urgent"`

	// VIPBonus is added when the linked client is flagged VIP.
	VIPBonus float64 `yaml:"vip_bonus"`

	// StageStep is multiplied by the project stage rank (planning=0 through
	// delivery=4). Tasks always contribute rank 0.
	StageStep float64 `yaml:"stage_step"`

	// Label thresholds on the combined score.
	UrgentThreshold float64 `yaml:"urgent_threshold"`
	HighThreshold   float64 `yaml:"high_threshold"`
	MediumThreshold float64 `yaml:"medium_threshold"`
}

// DefaultWeights returns the stock scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Overdue:     100,
		DueToday:    80,
		DueSoon:     60,
		DueThisWeek: 40,
		DueLater:    15,
		NoDueDate:   0,

		PriorityLow:    10,
		PriorityMedium: 20,
		PriorityHigh:   30,
		PriorityUrgent: 40,

		VIPBonus:  15,
		StageStep: 5,

		UrgentThreshold: 120,
		HighThreshold:   80,
		MediumThreshold: 40,
	}
}

// LoadWeightsFile reads a YAML weights file and merges it over the defaults.
// Fields absent from the file keep their default values.
func LoadWeightsFile(path string) (Weights, error) {
	w := DefaultWeights()
	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("failed to read weights file: %w", err)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("failed to parse weights file: %w", err)
	}
	return w, nil
}

// Score computes the priority score and display label for one scorable item.
// It is a pure function of the input snapshot and the supplied reference
// time: identical inputs always produce identical output.
//
// Terminal items (completed/cancelled tasks) are forced to the floor
// regardless of due date, priority tag, or VIP flag.
func (w Weights) Score(in Input, now time.Time) (float64, models.PriorityLevel) {
	if in.Terminal {
		return 0, models.PriorityLow
	}

	score := w.timeUrgency(in.Due, now)

	switch in.Priority {
	case models.PriorityUrgent:
		score += w.PriorityUrgent
	case models.PriorityHigh:
		score += w.PriorityHigh
	case models.PriorityMedium:
		score += w.PriorityMedium
	case models.PriorityLow:
		score += w.PriorityLow
	}

	if in.VIP {
		score += w.VIPBonus
	}

	score += w.StageStep * float64(in.StageRank)

	return score, w.Label(score)
}

// timeUrgency maps due-date proximity to a stepped weight. Undated items get
// the baseline; past-due items get the maximum.
func (w Weights) timeUrgency(due *time.Time, now time.Time) float64 {
	if due == nil {
		return w.NoDueDate
	}
	days := due.Sub(now).Hours() / 24
	switch {
	case days < 0:
		return w.Overdue
	case days <= 1:
		return w.DueToday
	case days <= 3:
		return w.DueSoon
	case days <= 7:
		return w.DueThisWeek
	default:
		return w.DueLater
	}
}

// Label maps a numeric score to its display bucket.
func (w Weights) Label(score float64) models.PriorityLevel {
	switch {
	case score >= w.UrgentThreshold:
		return models.PriorityUrgent
	case score >= w.HighThreshold:
		return models.PriorityHigh
	case score >= w.MediumThreshold:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}
