package priority

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/soloflow/crm-api/internal/database"
	"github.com/soloflow/crm-api/internal/logger"
	"github.com/soloflow/crm-api/internal/models"
	"go.uber.org/zap"
)

const (
	// MaxTopItems is the largest allowed limit for the top-items query
	MaxTopItems = 50
	// DefaultTopItems is the limit used when the caller does not specify one
	DefaultTopItems = 10
)

// ErrInvalidLimit is returned when a top-items limit is outside 1..MaxTopItems.
var ErrInvalidLimit = errors.New("limit must be between 1 and 50")

// Service recalculates and ranks priority scores for tasks and projects.
// It takes its repositories as explicit dependencies so tests can substitute
// fakes.
type Service struct {
	tasks    database.TaskRepositoryInterface
	projects database.ProjectRepositoryInterface
	users    database.UserRepositoryInterface
	weights  Weights
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new priority service
func NewService(
	tasks database.TaskRepositoryInterface,
	projects database.ProjectRepositoryInterface,
	users database.UserRepositoryInterface,
	weights Weights,
	logger *zap.Logger,
) *Service {
	return &Service{
		tasks:    tasks,
		projects: projects,
		users:    users,
		weights:  weights,
		logger:   logger,
		now:      time.Now,
	}
}

// UserResult reports one user's recalculation run
type UserResult struct {
	TasksUpdated    int `json:"tasks_updated"`
	ProjectsUpdated int `json:"projects_updated"`
	TasksFailed     int `json:"tasks_failed"`
	ProjectsFailed  int `json:"projects_failed"`
}

// UserOutcome is one entry of a batch run: either a result or an error
type UserOutcome struct {
	UserID uuid.UUID   `json:"user_id"`
	Result *UserResult `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// BatchResult aggregates a recalculation run over all users
type BatchResult struct {
	TotalUsers           int           `json:"total_users"`
	SuccessfulUsers      int           `json:"successful_users"`
	FailedUsers          int           `json:"failed_users"`
	TotalTasksUpdated    int           `json:"total_tasks_updated"`
	TotalProjectsUpdated int           `json:"total_projects_updated"`
	PerUser              []UserOutcome `json:"per_user"`
}

// ItemKind tags entries of the merged top-items list
type ItemKind string

const (
	ItemKindTask    ItemKind = "task"
	ItemKindProject ItemKind = "project"
)

// RankedItem is one entry of the merged top-items list
type RankedItem struct {
	ID        uuid.UUID            `json:"id"`
	Kind      ItemKind             `json:"kind"`
	Title     string               `json:"title"`
	Score     float64              `json:"score"`
	Label     models.PriorityLevel `json:"label"`
	Due       *time.Time           `json:"due,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// ScoreTask computes (but does not persist) the score and label for a task
// snapshot. Used by the task creation flow for best-effort initial scoring.
func (s *Service) ScoreTask(task *models.Task) (float64, models.PriorityLevel) {
	return s.weights.Score(TaskInput(task), s.now())
}

// RecalculateUser recomputes and persists scores for every task and project
// owned by userID, regardless of status, so items that became terminal since
// the last run are demoted.
//
// A failure scoring or persisting one entity is logged, counted as failed,
// and does not abort the batch. The call itself fails only when the user or
// entity fetch fails.
func (s *Service) RecalculateUser(ctx context.Context, userID uuid.UUID) (*UserResult, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	tasks, err := s.tasks.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	projects, err := s.projects.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	now := s.now()
	result := &UserResult{}

	for _, task := range tasks {
		score, label := s.weights.Score(TaskInput(task), now)
		if err := s.tasks.UpdateScore(ctx, task.ID, score, label); err != nil {
			s.logger.Warn("failed_to_update_task_score",
				zap.String("task_id", task.ID.String()),
				zap.String("user_id", userID.String()),
				zap.String("error", logger.SanitizeError(err)),
			)
			result.TasksFailed++
			continue
		}
		result.TasksUpdated++
	}

	for _, project := range projects {
		score, label := s.weights.Score(ProjectInput(project), now)
		if err := s.projects.UpdateScore(ctx, project.ID, score, label); err != nil {
			s.logger.Warn("failed_to_update_project_score",
				zap.String("project_id", project.ID.String()),
				zap.String("user_id", userID.String()),
				zap.String("error", logger.SanitizeError(err)),
			)
			result.ProjectsFailed++
			continue
		}
		result.ProjectsUpdated++
	}

	s.logger.Info("recalculated_user_scores",
		zap.String("user_id", userID.String()),
		zap.Int("tasks_updated", result.TasksUpdated),
		zap.Int("projects_updated", result.ProjectsUpdated),
		zap.Int("tasks_failed", result.TasksFailed),
		zap.Int("projects_failed", result.ProjectsFailed),
	)

	return result, nil
}

// RecalculateAll runs RecalculateUser for every known user. One user's
// failure is recorded in the per-user outcomes and does not stop the batch.
// The call fails only when the user list itself cannot be fetched.
func (s *Service) RecalculateAll(ctx context.Context) (*BatchResult, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	batch := &BatchResult{
		TotalUsers: len(users),
		PerUser:    make([]UserOutcome, 0, len(users)),
	}

	for _, user := range users {
		result, err := s.RecalculateUser(ctx, user.ID)
		if err != nil {
			s.logger.Error("user_recalculation_failed",
				zap.String("user_id", user.ID.String()),
				zap.String("error", logger.SanitizeError(err)),
			)
			batch.FailedUsers++
			batch.PerUser = append(batch.PerUser, UserOutcome{
				UserID: user.ID,
				Error:  logger.SanitizeErrorString(err.Error()),
			})
			continue
		}

		batch.SuccessfulUsers++
		batch.TotalTasksUpdated += result.TasksUpdated
		batch.TotalProjectsUpdated += result.ProjectsUpdated
		batch.PerUser = append(batch.PerUser, UserOutcome{
			UserID: user.ID,
			Result: result,
		})
	}

	s.logger.Info("recalculated_all_users",
		zap.Int("total_users", batch.TotalUsers),
		zap.Int("successful_users", batch.SuccessfulUsers),
		zap.Int("failed_users", batch.FailedUsers),
		zap.Int("total_tasks_updated", batch.TotalTasksUpdated),
		zap.Int("total_projects_updated", batch.TotalProjectsUpdated),
	)

	return batch, nil
}

// TopItems returns the limit highest-scored items for a user, tasks and
// projects merged into one list. Scores are read as stored; staleness
// between recalculation runs is acceptable by design.
//
// Ordering: score descending; ties broken by nearer due/deadline (dated
// items rank above undated ones), then by creation recency (newer first),
// then by id so the order is total and stable.
func (s *Service) TopItems(ctx context.Context, userID uuid.UUID, limit int) ([]RankedItem, error) {
	if limit < 1 || limit > MaxTopItems {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}

	tasks, err := s.tasks.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	projects, err := s.projects.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	items := make([]RankedItem, 0, len(tasks)+len(projects))
	for _, t := range tasks {
		items = append(items, RankedItem{
			ID:        t.ID,
			Kind:      ItemKindTask,
			Title:     t.Title,
			Score:     t.PriorityScore,
			Label:     t.PriorityLabel,
			Due:       t.DueDate,
			CreatedAt: t.CreatedAt,
		})
	}
	for _, p := range projects {
		items = append(items, RankedItem{
			ID:        p.ID,
			Kind:      ItemKindProject,
			Title:     p.Name,
			Score:     p.PriorityScore,
			Label:     p.PriorityLabel,
			Due:       p.Deadline,
			CreatedAt: p.CreatedAt,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return rankLess(items[i], items[j])
	})

	if len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

// rankLess reports whether a should rank above b in the top-items list.
func rankLess(a, b RankedItem) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	switch {
	case a.Due != nil && b.Due != nil:
		if !a.Due.Equal(*b.Due) {
			return a.Due.Before(*b.Due)
		}
	case a.Due != nil:
		return true
	case b.Due != nil:
		return false
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}
