package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soloflow/crm-api/internal/models"
)

// ProjectRepository handles project database operations. Project CRUD is
// owned by the main CRM surface; this service reads projects for scoring and
// writes scores back.
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectSelect = `
	SELECT p.id, p.user_id, p.client_id, p.name, p.deadline, p.stage,
	       p.priority, p.budget, p.priority_score, p.priority_label,
	       COALESCE(c.is_vip, false), p.created_at, p.updated_at
	FROM projects p
	LEFT JOIN clients c ON p.client_id = c.id
`

// GetByUserID retrieves all projects for a user regardless of stage
func (r *ProjectRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, projectSelect+" WHERE p.user_id = $1 ORDER BY p.created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project := &models.Project{}
		var clientID uuid.NullUUID
		var deadline sql.NullTime
		var budget sql.NullFloat64

		err := rows.Scan(
			&project.ID,
			&project.UserID,
			&clientID,
			&project.Name,
			&deadline,
			&project.Stage,
			&project.Priority,
			&budget,
			&project.PriorityScore,
			&project.PriorityLabel,
			&project.ClientVIP,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}

		if clientID.Valid {
			project.ClientID = &clientID.UUID
		}
		if deadline.Valid {
			t := deadline.Time
			project.Deadline = &t
		}
		if budget.Valid {
			b := budget.Float64
			project.Budget = &b
		}

		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// UpdateScore persists a recomputed priority score and label
func (r *ProjectRepository) UpdateScore(ctx context.Context, id uuid.UUID, score float64, label models.PriorityLevel) error {
	query := `
		UPDATE projects
		SET priority_score = $2, priority_label = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, score, label, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update project score: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("project not found")
	}

	return nil
}
