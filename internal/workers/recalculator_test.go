package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/soloflow/crm-api/internal/priority"
	"github.com/soloflow/crm-api/internal/queue"
	"go.uber.org/zap"
)

// mockRecalcService is a mock implementation of RecalcService
type mockRecalcService struct {
	recalculateUserFunc func(ctx context.Context, userID uuid.UUID) (*priority.UserResult, error)
	recalculateAllFunc  func(ctx context.Context) (*priority.BatchResult, error)
}

func (m *mockRecalcService) RecalculateUser(ctx context.Context, userID uuid.UUID) (*priority.UserResult, error) {
	if m.recalculateUserFunc != nil {
		return m.recalculateUserFunc(ctx, userID)
	}
	return &priority.UserResult{}, nil
}

func (m *mockRecalcService) RecalculateAll(ctx context.Context) (*priority.BatchResult, error) {
	if m.recalculateAllFunc != nil {
		return m.recalculateAllFunc(ctx)
	}
	return &priority.BatchResult{}, nil
}

// mockMessage is a mock implementation of queue.MessageInterface
type mockMessage struct {
	job *queue.Job

	acked       bool
	nacked      bool
	nackRequeue bool
}

func (m *mockMessage) Ack() error {
	m.acked = true
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.nackRequeue = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

func TestProcessJobRecalculateUser(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var gotUserID uuid.UUID

	service := &mockRecalcService{
		recalculateUserFunc: func(ctx context.Context, id uuid.UUID) (*priority.UserResult, error) {
			gotUserID = id
			return &priority.UserResult{TasksUpdated: 2, ProjectsUpdated: 1}, nil
		},
	}
	r := NewRecalculator(service, zap.NewNop())

	msg := &mockMessage{job: queue.NewJob(queue.JobTypeRecalculateUser, userID)}
	if err := r.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}

	if gotUserID != userID {
		t.Errorf("service received user %v, want %v", gotUserID, userID)
	}
	if !msg.acked {
		t.Error("expected message to be acked")
	}
	if msg.nacked {
		t.Error("expected message not to be nacked")
	}
}

func TestProcessJobRecalculateAll(t *testing.T) {
	t.Parallel()

	called := false
	service := &mockRecalcService{
		recalculateAllFunc: func(ctx context.Context) (*priority.BatchResult, error) {
			called = true
			return &priority.BatchResult{TotalUsers: 2, SuccessfulUsers: 2}, nil
		},
	}
	r := NewRecalculator(service, zap.NewNop())

	msg := &mockMessage{job: queue.NewJob(queue.JobTypeRecalculateAll, uuid.Nil)}
	if err := r.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}

	if !called {
		t.Error("expected RecalculateAll to be invoked")
	}
	if !msg.acked {
		t.Error("expected message to be acked")
	}
}

func TestProcessJobRetriesOnFailure(t *testing.T) {
	t.Parallel()

	service := &mockRecalcService{
		recalculateUserFunc: func(ctx context.Context, id uuid.UUID) (*priority.UserResult, error) {
			return nil, errors.New("db timeout")
		},
	}
	r := NewRecalculator(service, zap.NewNop())

	job := queue.NewJob(queue.JobTypeRecalculateUser, uuid.New())
	msg := &mockMessage{job: job}

	if err := r.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("ProcessJob() error = nil, want error")
	}

	if !msg.nacked || !msg.nackRequeue {
		t.Error("expected message to be nacked with requeue")
	}
	if job.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", job.RetryCount)
	}
}

func TestProcessJobDeadLettersAfterMaxRetries(t *testing.T) {
	t.Parallel()

	service := &mockRecalcService{
		recalculateUserFunc: func(ctx context.Context, id uuid.UUID) (*priority.UserResult, error) {
			return nil, errors.New("db timeout")
		},
	}
	r := NewRecalculator(service, zap.NewNop())

	job := queue.NewJob(queue.JobTypeRecalculateUser, uuid.New())
	job.RetryCount = job.MaxRetries
	msg := &mockMessage{job: job}

	if err := r.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("ProcessJob() error = nil, want error")
	}

	if !msg.nacked || msg.nackRequeue {
		t.Error("expected message to be nacked without requeue")
	}
}

func TestProcessJobUnknownType(t *testing.T) {
	t.Parallel()

	r := NewRecalculator(&mockRecalcService{}, zap.NewNop())

	job := queue.NewJob(queue.JobType("mystery"), uuid.New())
	msg := &mockMessage{job: job}

	if err := r.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("ProcessJob() error = nil, want error")
	}

	if !msg.nacked || msg.nackRequeue {
		t.Error("expected message to be dead-lettered")
	}
}
