package workers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/soloflow/crm-api/internal/logger"
	"github.com/soloflow/crm-api/internal/priority"
	"github.com/soloflow/crm-api/internal/queue"
	"go.uber.org/zap"
)

// RecalcService is the slice of the priority service the worker invokes.
type RecalcService interface {
	RecalculateUser(ctx context.Context, userID uuid.UUID) (*priority.UserResult, error)
	RecalculateAll(ctx context.Context) (*priority.BatchResult, error)
}

// Recalculator processes priority recalculation jobs from the queue
type Recalculator struct {
	service RecalcService
	logger  *zap.Logger
}

// NewRecalculator creates a new recalculator worker
func NewRecalculator(service RecalcService, logger *zap.Logger) *Recalculator {
	return &Recalculator{
		service: service,
		logger:  logger,
	}
}

// ProcessJob processes a job based on its type. Job-level failures are
// requeued while retries remain, then dead-lettered.
func (r *Recalculator) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	switch job.Type {
	case queue.JobTypeRecalculateUser:
		result, err := r.service.RecalculateUser(ctx, job.UserID)
		if err != nil {
			return r.handleJobError(msg, job, err)
		}
		r.logger.Info("processed_recalculate_user_job",
			zap.String("job_id", job.ID.String()),
			zap.String("user_id", job.UserID.String()),
			zap.Int("tasks_updated", result.TasksUpdated),
			zap.Int("projects_updated", result.ProjectsUpdated),
			zap.Int("tasks_failed", result.TasksFailed),
			zap.Int("projects_failed", result.ProjectsFailed),
		)
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	case queue.JobTypeRecalculateAll:
		batch, err := r.service.RecalculateAll(ctx)
		if err != nil {
			return r.handleJobError(msg, job, err)
		}
		r.logger.Info("processed_recalculate_all_job",
			zap.String("job_id", job.ID.String()),
			zap.Int("total_users", batch.TotalUsers),
			zap.Int("successful_users", batch.SuccessfulUsers),
			zap.Int("failed_users", batch.FailedUsers),
		)
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // unknown job type, send to DLQ
			r.logger.Warn("failed_to_nack_unknown_job", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError requeues the job while retries remain, then dead-letters it.
func (r *Recalculator) handleJobError(msg queue.MessageInterface, job *queue.Job, err error) error {
	if job.CanRetry() {
		job.IncrementRetry()
		r.logger.Warn("recalculation_job_failed_will_retry",
			zap.String("job_id", job.ID.String()),
			zap.Int("attempt", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.String("error", logger.SanitizeError(err)),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			r.logger.Warn("failed_to_nack_job", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	r.logger.Error("recalculation_job_failed_sending_to_dlq",
		zap.String("job_id", job.ID.String()),
		zap.Int("max_retries", job.MaxRetries),
		zap.String("error", logger.SanitizeError(err)),
	)
	if nackErr := msg.Nack(false); nackErr != nil {
		r.logger.Warn("failed_to_nack_job_to_dlq", zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}
