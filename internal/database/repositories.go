package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/soloflow/crm-api/internal/models"
)

// TaskRepositoryInterface defines the interface for task repository operations
// This interface enables better testability by allowing mock implementations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Task, error)
	UpdateScore(ctx context.Context, id uuid.UUID, score float64, label models.PriorityLevel) error
	Update(ctx context.Context, task *models.Task) error
}

// ProjectRepositoryInterface defines the interface for project repository operations
type ProjectRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Project, error)
	UpdateScore(ctx context.Context, id uuid.UUID, score float64, label models.PriorityLevel) error
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByProviderID(ctx context.Context, providerID string) (*models.User, error)
	ListAll(ctx context.Context) ([]*models.User, error)
}

// ClientRepositoryInterface defines the interface for client repository operations
type ClientRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

// Ensure concrete types implement the interfaces
var (
	_ TaskRepositoryInterface    = (*TaskRepository)(nil)
	_ ProjectRepositoryInterface = (*ProjectRepository)(nil)
	_ UserRepositoryInterface    = (*UserRepository)(nil)
	_ ClientRepositoryInterface  = (*ClientRepository)(nil)
)
