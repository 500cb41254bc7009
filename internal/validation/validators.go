package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/soloflow/crm-api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("task_status", validateTaskStatus); err != nil {
		panic(fmt.Sprintf("failed to register task_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("priority_level", validatePriorityLevel); err != nil {
		panic(fmt.Sprintf("failed to register priority_level validator: %v", err))
	}
	if err := Validate.RegisterValidation("project_stage", validateProjectStage); err != nil {
		panic(fmt.Sprintf("failed to register project_stage validator: %v", err))
	}
}

// validateTaskStatus validates that a string is a valid TaskStatus enum value
func validateTaskStatus(fl validator.FieldLevel) bool {
	return ValidateTaskStatus(fl.Field().String()) == nil
}

// validatePriorityLevel validates that a string is a valid PriorityLevel enum value
func validatePriorityLevel(fl validator.FieldLevel) bool {
	return ValidatePriorityLevel(fl.Field().String()) == nil
}

// validateProjectStage validates that a string is a valid ProjectStage enum value
func validateProjectStage(fl validator.FieldLevel) bool {
	return ValidateProjectStage(fl.Field().String()) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateTaskStatus validates a TaskStatus string value
func ValidateTaskStatus(value string) error {
	status := models.TaskStatus(value)
	switch status {
	case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusWaitingApproval,
		models.TaskStatusCompleted, models.TaskStatusCancelled:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'todo', 'in_progress', 'waiting_approval', 'completed', or 'cancelled')", value)
	}
}

// ValidatePriorityLevel validates a PriorityLevel string value
func ValidatePriorityLevel(value string) error {
	level := models.PriorityLevel(value)
	switch level {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return nil
	default:
		return fmt.Errorf("invalid priority: %s (must be 'low', 'medium', 'high', or 'urgent')", value)
	}
}

// ValidateProjectStage validates a ProjectStage string value
func ValidateProjectStage(value string) error {
	stage := models.ProjectStage(value)
	switch stage {
	case models.ProjectStagePlanning, models.ProjectStageDevelopment, models.ProjectStageTesting,
		models.ProjectStageReview, models.ProjectStageDelivery:
		return nil
	default:
		return fmt.Errorf("invalid stage: %s (must be 'planning', 'development', 'testing', 'review', or 'delivery')", value)
	}
}
