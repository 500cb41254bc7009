package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/soloflow/crm-api/internal/database"
	"github.com/soloflow/crm-api/internal/queue"
	"go.uber.org/zap"
)

// DefaultCronSpec runs the nightly recalculation at 03:00.
const DefaultCronSpec = "0 3 * * *"

// Scheduler enqueues recalculation jobs on a cron schedule. The engine never
// sees the schedule; it only receives per-user jobs from the queue.
type Scheduler struct {
	users    database.UserRepositoryInterface
	jobQueue queue.JobQueue
	spec     string
	cron     *cron.Cron
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler. spec is a standard 5-field cron
// expression; empty means DefaultCronSpec.
func NewScheduler(users database.UserRepositoryInterface, jobQueue queue.JobQueue, spec string, logger *zap.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultCronSpec
	}
	return &Scheduler{
		users:    users,
		jobQueue: jobQueue,
		spec:     spec,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start registers the cron entry and starts the scheduler.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.EnqueueRecalculations(ctx); err != nil {
			s.logger.Error("failed_to_enqueue_scheduled_recalculations", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule recalculation: %w", err)
	}

	s.cron.Start()
	s.logger.Info("recalculation_scheduler_started", zap.String("cron_spec", s.spec))
	return nil
}

// Stop stops the scheduler and waits for a running enqueue pass to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// EnqueueRecalculations enqueues one recalculate_user job per known user.
// A single user's enqueue failure is logged and does not stop the pass; the
// pass fails only when the user list cannot be fetched.
func (s *Scheduler) EnqueueRecalculations(ctx context.Context) error {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	enqueued := 0
	for _, user := range users {
		job := queue.NewJob(queue.JobTypeRecalculateUser, user.ID)
		// Drop jobs that sit unprocessed past the next scheduled run
		notAfter := time.Now().Add(24 * time.Hour)
		job.NotAfter = &notAfter

		if err := s.jobQueue.Enqueue(ctx, job); err != nil {
			s.logger.Warn("failed_to_enqueue_recalculation_job",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
			continue
		}
		enqueued++
	}

	s.logger.Info("enqueued_recalculation_jobs",
		zap.Int("user_count", len(users)),
		zap.Int("enqueued", enqueued),
	)

	return nil
}
