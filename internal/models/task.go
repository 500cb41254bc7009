package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the workflow status of a task
type TaskStatus string

const (
	TaskStatusTodo            TaskStatus = "todo"
	TaskStatusInProgress      TaskStatus = "in_progress"
	TaskStatusWaitingApproval TaskStatus = "waiting_approval"
	TaskStatusCompleted       TaskStatus = "completed"
	TaskStatusCancelled       TaskStatus = "cancelled"
)

// IsTerminal reports whether the status forces the lowest priority bucket.
// A completed or cancelled task is never urgent.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// Task represents a CRM task
type Task struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	ClientID      *uuid.UUID    `json:"client_id,omitempty"`
	ProjectID     *uuid.UUID    `json:"project_id,omitempty"`
	Title         string        `json:"title"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	Status        TaskStatus    `json:"status"`
	Priority      PriorityLevel `json:"priority"`
	PriorityScore float64       `json:"priority_score"`
	PriorityLabel PriorityLevel `json:"priority_label"`
	// ClientVIP is derived from the linked client row on read; it is not a
	// column of the tasks table.
	ClientVIP   bool       `json:"client_is_vip"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
