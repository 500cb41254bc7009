package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/soloflow/crm-api/internal/middleware"
	"github.com/soloflow/crm-api/internal/models"
	"github.com/soloflow/crm-api/internal/validation"
	"go.uber.org/zap"
)

const (
	// MaxTaskTitleLength is the maximum length for task titles
	MaxTaskTitleLength = 500
)

// TaskRepo is the slice of the task repository the handler uses
type TaskRepo interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
}

// ClientRepo is the slice of the client repository the handler uses
type ClientRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

// TaskScorer computes a score and label for a task snapshot
type TaskScorer interface {
	ScoreTask(task *models.Task) (float64, models.PriorityLevel)
}

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskRepo   TaskRepo
	clientRepo ClientRepo
	scorer     TaskScorer
	logger     *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskRepo TaskRepo, clientRepo ClientRepo, scorer TaskScorer, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{taskRepo: taskRepo, clientRepo: clientRepo, scorer: scorer, logger: logger}
}

// RegisterRoutes registers task routes on the given router
// The router should already have the /tasks prefix (e.g., from apiRouter.PathPrefix("/tasks"))
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}/complete", h.CompleteTask).Methods("POST")
}

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Title     string     `json:"title" validate:"required,min=1,max=500"`
	ClientID  *uuid.UUID `json:"client_id,omitempty"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Priority  string     `json:"priority,omitempty"`
}

// CreateTask creates a new task. The initial priority score is computed
// best-effort from the request snapshot; a recalculation run will refresh it
// with client and project context.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateTaskRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	if req.Title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required and cannot be empty after sanitization")
		return
	}
	if len(req.Title) > MaxTaskTitleLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Title exceeds maximum length of %d characters", MaxTaskTitleLength))
		return
	}

	priority := models.PriorityMedium
	if req.Priority != "" {
		if err := validation.ValidatePriorityLevel(req.Priority); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		priority = models.PriorityLevel(req.Priority)
	}

	ctx := r.Context()

	task := &models.Task{
		ID:        uuid.New(),
		UserID:    user.ID,
		ClientID:  req.ClientID,
		ProjectID: req.ProjectID,
		Title:     req.Title,
		DueDate:   req.DueDate,
		Status:    models.TaskStatusTodo,
		Priority:  priority,
	}

	if req.ClientID != nil {
		client, err := h.clientRepo.GetByID(ctx, *req.ClientID)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Unknown client")
			return
		}
		if client.UserID != user.ID {
			respondJSONError(w, http.StatusForbidden, "Forbidden", "Client does not belong to user")
			return
		}
		task.ClientVIP = client.IsVIP
	}

	// Initial score from the creation snapshot. Project stage context is
	// unknown here; the nightly run fills it in.
	task.PriorityScore, task.PriorityLabel = h.scorer.ScoreTask(task)

	if err := h.taskRepo.Create(ctx, task); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create task")
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// ListTasks lists tasks for the authenticated user
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	ctx := r.Context()
	tasks, err := h.taskRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}

	respondJSON(w, http.StatusOK, tasks)
}

// GetTask retrieves a task by ID
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	ctx := r.Context()
	task, err := h.taskRepo.GetByID(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}

	if task.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Task does not belong to user")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// CompleteTask marks a task as completed. The stored score is left as-is;
// the next recalculation run demotes completed work to the floor.
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	ctx := r.Context()
	task, err := h.taskRepo.GetByID(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}

	if task.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Task does not belong to user")
		return
	}

	if task.Status.IsTerminal() {
		respondJSONError(w, http.StatusConflict, "Conflict", "Task is already completed or cancelled")
		return
	}

	now := time.Now()
	task.Status = models.TaskStatusCompleted
	task.CompletedAt = &now

	if err := h.taskRepo.Update(ctx, task); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to complete task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}
