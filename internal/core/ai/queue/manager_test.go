package queue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAcquireLimitsWorkers(t *testing.T) {
	m := NewManager(1, 10)

	release, err := m.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if s := m.GetQueueStatus(); s.InFlight != 1 {
		t.Errorf("in flight = %d, want 1", s.InFlight)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := m.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("second Acquire() = %v, want deadline exceeded", err)
	}

	release()
	release()
	if s := m.GetQueueStatus(); s.InFlight != 0 || s.ProcessedCount != 1 {
		t.Errorf("status = %+v, want idle with one processed", s)
	}
}

func TestAcquireRejectsWhenQueueFull(t *testing.T) {
	m := NewManager(1, 1)
	release, err := m.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer release()

	started := make(chan struct{})
	go func() {
		close(started)
		_, _ = m.Acquire(context.Background())
	}()
	<-started

	// 等待第二個請求排入隊列
	deadline := time.Now().Add(time.Second)
	for m.GetQueueStatus().Waiting == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if _, err := m.Acquire(context.Background()); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Acquire() = %v, want ErrQueueFull", err)
	}
	m.Close()
}

func TestAcquireAfterClose(t *testing.T) {
	m := NewManager(2, 0)
	m.Close()
	m.Close()
	if _, err := m.Acquire(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Acquire() = %v, want ErrClosed", err)
	}
}
