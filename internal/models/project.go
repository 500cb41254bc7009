package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStage represents the delivery stage of a project
type ProjectStage string

const (
	ProjectStagePlanning    ProjectStage = "planning"
	ProjectStageDevelopment ProjectStage = "development"
	ProjectStageTesting     ProjectStage = "testing"
	ProjectStageReview      ProjectStage = "review"
	ProjectStageDelivery    ProjectStage = "delivery"
)

// Project represents a CRM project
type Project struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	ClientID      *uuid.UUID    `json:"client_id,omitempty"`
	Name          string        `json:"name"`
	Deadline      *time.Time    `json:"deadline,omitempty"`
	Stage         ProjectStage  `json:"stage"`
	Priority      PriorityLevel `json:"priority"`
	Budget        *float64      `json:"budget,omitempty"`
	PriorityScore float64       `json:"priority_score"`
	PriorityLabel PriorityLevel `json:"priority_label"`
	// ClientVIP is derived from the linked client row on read.
	ClientVIP bool      `json:"client_is_vip"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
