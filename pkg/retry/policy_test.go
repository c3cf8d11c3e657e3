package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoReturnsOnFirstSuccess(t *testing.T) {
	policy := NewPolicy(3, time.Millisecond, 2)

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	policy := NewPolicy(5, time.Millisecond, 2)

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do returned error after eventual success: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoReturnsLastErrorOnExhaustion(t *testing.T) {
	policy := NewPolicy(3, time.Millisecond, 2)
	errBoom := errors.New("provider down")

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return errBoom
	})

	if !errors.Is(err, errBoom) {
		t.Fatalf("Do returned %v, want %v", err, errBoom)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	// Long backoff so cancellation, not exhaustion, ends the loop.
	policy := NewPolicy(5, time.Minute, 2)

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- policy.Do(ctx, func() error {
			calls++
			return errors.New("still failing")
		})
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Do returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after context cancellation")
	}

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestNewPolicyAppliesFloors(t *testing.T) {
	p := NewPolicy(0, time.Millisecond, 0)

	if p.MaxAttempts != 1 {
		t.Errorf("MaxAttempts = %d, want floor of 1", p.MaxAttempts)
	}
	if p.Multiplier != 2 {
		t.Errorf("Multiplier = %v, want default of 2", p.Multiplier)
	}
}
