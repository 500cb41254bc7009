package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// mockPurger is a mock implementation of DLQPurger
type mockPurger struct {
	mu        sync.Mutex
	calls     int
	retention time.Duration
	purgeFunc func(ctx context.Context, retention time.Duration) (int, error)
}

func (m *mockPurger) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	m.mu.Lock()
	m.calls++
	m.retention = retention
	m.mu.Unlock()
	if m.purgeFunc != nil {
		return m.purgeFunc(ctx, retention)
	}
	return 0, nil
}

func (m *mockPurger) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestGarbageCollectorPurges(t *testing.T) {
	t.Parallel()

	purger := &mockPurger{
		purgeFunc: func(ctx context.Context, retention time.Duration) (int, error) {
			return 3, nil
		},
	}
	gc := NewGarbageCollector(purger, 10*time.Millisecond, 24*time.Hour, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := gc.Start(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Start() error = %v, want deadline exceeded", err)
	}

	if purger.callCount() == 0 {
		t.Error("expected at least one purge call")
	}
	if purger.retention != 24*time.Hour {
		t.Errorf("retention = %v, want 24h", purger.retention)
	}
}

func TestGarbageCollectorSurvivesPurgeErrors(t *testing.T) {
	t.Parallel()

	purger := &mockPurger{
		purgeFunc: func(ctx context.Context, retention time.Duration) (int, error) {
			return 0, errors.New("channel closed")
		},
	}
	gc := NewGarbageCollector(purger, 10*time.Millisecond, time.Hour, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	_ = gc.Start(ctx)

	// The loop keeps running past the first failure
	if purger.callCount() < 2 {
		t.Errorf("purge calls = %d, want at least 2", purger.callCount())
	}
}

func TestGarbageCollectorStopsOnCancel(t *testing.T) {
	t.Parallel()

	gc := NewGarbageCollector(&mockPurger{}, time.Hour, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := gc.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Start() error = %v, want context.Canceled", err)
	}
}

func TestGarbageCollectorNilPurger(t *testing.T) {
	t.Parallel()

	gc := NewGarbageCollector(nil, 10*time.Millisecond, time.Hour, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := gc.Start(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Start() error = %v, want deadline exceeded", err)
	}
}
