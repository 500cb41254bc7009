package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewJob(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	job := NewJob(JobTypeRecalculateUser, userID)

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != JobTypeRecalculateUser {
		t.Errorf("Type = %v, want recalculate_user", job.Type)
	}
	if job.UserID != userID {
		t.Errorf("UserID = %v, want %v", job.UserID, userID)
	}
	if job.RetryCount != 0 {
		t.Errorf("RetryCount = %d, want 0", job.RetryCount)
	}
	if job.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", job.MaxRetries)
	}
	if job.NotBefore != nil || job.NotAfter != nil {
		t.Error("Expected no scheduling constraints by default")
	}
}

func TestJobShouldProcess(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		notBefore *time.Time
		notAfter  *time.Time
		want      bool
	}{
		{"no constraints", nil, nil, true},
		{"not before in past", &past, nil, true},
		{"not before in future", &future, nil, false},
		{"not after in future", nil, &future, true},
		{"not after in past", nil, &past, false},
		{"within window", &past, &future, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			job := NewJob(JobTypeRecalculateUser, uuid.New())
			job.NotBefore = tt.notBefore
			job.NotAfter = tt.notAfter

			if got := job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJobIsExpired(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeRecalculateAll, uuid.Nil)
	if job.IsExpired() {
		t.Error("job without NotAfter should not be expired")
	}

	past := time.Now().Add(-time.Minute)
	job.NotAfter = &past
	if !job.IsExpired() {
		t.Error("job with NotAfter in the past should be expired")
	}

	future := time.Now().Add(time.Minute)
	job.NotAfter = &future
	if job.IsExpired() {
		t.Error("job with NotAfter in the future should not be expired")
	}
}

func TestJobRetry(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeRecalculateUser, uuid.New())

	for i := 0; i < job.MaxRetries; i++ {
		if !job.CanRetry() {
			t.Fatalf("CanRetry() = false at retry %d, want true", i)
		}
		job.IncrementRetry()
	}

	if job.CanRetry() {
		t.Errorf("CanRetry() = true after %d retries, want false", job.RetryCount)
	}
	if job.RetryCount != job.MaxRetries {
		t.Errorf("RetryCount = %d, want %d", job.RetryCount, job.MaxRetries)
	}
}
