package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestIntervalSchedulerKeepsFiring(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(10 * time.Millisecond)
	fired := make(chan time.Time, 8)

	err := s.Start(context.Background(), func(trigger time.Time) {
		fired <- trigger
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer func() { _ = s.Stop(context.Background()) }()

	for i := 0; i < 2; i++ {
		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatalf("job did not fire (attempt %d)", i+1)
		}
	}
}

func TestIntervalSchedulerStop(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(5 * time.Millisecond)
	fired := make(chan struct{}, 64)

	if err := s.Start(context.Background(), func(time.Time) { fired <- struct{}{} }); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("job never fired")
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	// A second Stop must be a no-op.
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("second Stop returned error: %v", err)
	}
}

func TestIntervalSchedulerNilJob(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(time.Millisecond)
	if err := s.Start(context.Background(), nil); err != nil {
		t.Fatalf("Start with nil job returned error: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
}
