package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soloflow/crm-api/internal/models"
)

// TaskRepository handles task database operations
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, client_id, project_id, title, due_date, status, priority, priority_score, priority_label, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.UserID,
		uuidOrNil(task.ClientID),
		uuidOrNil(task.ProjectID),
		task.Title,
		timeOrNil(task.DueDate),
		task.Status,
		task.Priority,
		task.PriorityScore,
		task.PriorityLabel,
		now,
		now,
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

const taskSelect = `
	SELECT t.id, t.user_id, t.client_id, t.project_id, t.title, t.due_date,
	       t.status, t.priority, t.priority_score, t.priority_label,
	       COALESCE(c.is_vip, false), t.created_at, t.updated_at, t.completed_at
	FROM tasks t
	LEFT JOIN clients c ON t.client_id = c.id
`

// GetByID retrieves a task by ID, including the linked client's VIP flag
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, taskSelect+" WHERE t.id = $1", id)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// GetByUserID retrieves all tasks for a user regardless of status, so
// recalculation can demote items that became terminal since the last run.
func (r *TaskRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, taskSelect+" WHERE t.user_id = $1 ORDER BY t.created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// UpdateScore persists a recomputed priority score and label. Each write is
// independently committed so an aborted batch leaves prior writes valid.
func (r *TaskRepository) UpdateScore(ctx context.Context, id uuid.UUID, score float64, label models.PriorityLevel) error {
	query := `
		UPDATE tasks
		SET priority_score = $2, priority_label = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, score, label, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update task score: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task not found")
	}

	return nil
}

// Update updates the mutable fields of an existing task
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, due_date = $3, status = $4, priority = $5, completed_at = $6, updated_at = $7
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.Title,
		timeOrNil(task.DueDate),
		task.Status,
		task.Priority,
		timeOrNil(task.CompletedAt),
		time.Now(),
	).Scan(&task.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("task not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var clientID, projectID uuid.NullUUID
	var dueDate, completedAt sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&clientID,
		&projectID,
		&task.Title,
		&dueDate,
		&task.Status,
		&task.Priority,
		&task.PriorityScore,
		&task.PriorityLabel,
		&task.ClientVIP,
		&task.CreatedAt,
		&task.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if clientID.Valid {
		task.ClientID = &clientID.UUID
	}
	if projectID.Valid {
		task.ProjectID = &projectID.UUID
	}
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}

	return task, nil
}

func uuidOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
